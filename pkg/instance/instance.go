package instance

import "os"

// GetID identifies this process in logs. Deployments set
// STOREFRONT_INSTANCE_ID per replica; local runs get a stable default.
func GetID() string {
	if id := os.Getenv("STOREFRONT_INSTANCE_ID"); id != "" {
		return id
	}
	return "storefront-0"
}
