package catalog

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// listCursor pins a listing position to the full sort key of the product
// listing (available, sale_count, created_at, id). Anything short of the
// full key would skip rows that sort after the cursor but were created
// later.
type listCursor struct {
	Available bool
	SaleCount int
	CreatedAt time.Time
	ID        uuid.UUID
}

func encodeListCursor(c listCursor) string {
	payload := strings.Join([]string{
		strconv.FormatBool(c.Available),
		strconv.Itoa(c.SaleCount),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.ID.String(),
	}, "|")
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// parseListCursor reverses encodeListCursor. A blank token means "first
// page" and yields a nil cursor with no error.
func parseListCursor(value string) (*listCursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.Split(string(decoded), "|")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	available, err := strconv.ParseBool(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor availability: %w", err)
	}
	saleCount, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor sale count: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &listCursor{Available: available, SaleCount: saleCount, CreatedAt: createdAt, ID: id}, nil
}
