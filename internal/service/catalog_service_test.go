package service

import (
	"testing"

	"storefront/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Garden Tools", "garden-tools"},
		{"  Mixed CASE  Name ", "mixed-case-name"},
		{"50% Off! Sale", "50-off-sale"},
		{"déjà vu", "d-j-vu"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusPaid},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusPaid, models.OrderStatusShipped},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusPaid, models.OrderStatusPending},
		{models.OrderStatusPaid, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusShipped},
		{models.OrderStatusCancelled, models.OrderStatusPaid},
	}
	for _, tc := range denied {
		if canTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}
