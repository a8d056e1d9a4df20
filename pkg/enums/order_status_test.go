package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusNew, OrderStatusProcessing, true},
		{OrderStatusNew, OrderStatusCanceled, true},
		{OrderStatusNew, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCanceled, true},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCanceled, false},
		{OrderStatusCompleted, OrderStatusNew, false},
		{OrderStatusCanceled, OrderStatusProcessing, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected allowed=%v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusCompleted.IsTerminal() || !OrderStatusCanceled.IsTerminal() {
		t.Fatal("expected completed and canceled to be terminal")
	}
	if OrderStatusNew.IsTerminal() {
		t.Fatal("new must not be terminal")
	}
	if OrderStatus("bogus").IsTerminal() {
		t.Fatal("unknown status must not report terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("processing")
	if err != nil || status != OrderStatusProcessing {
		t.Fatalf("expected processing, got %v (%v)", status, err)
	}
	if _, err := ParseOrderStatus("unknown"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
