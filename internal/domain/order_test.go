package domain

import (
	"testing"
	"time"
)

func TestOrderStatusCancellable(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusProcessing, true},
		{StatusConfirmed, true},
		{StatusShipped, true},
		{StatusDelivered, false},
		{StatusCancelled, false},
		{OrderStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Cancellable(); got != tt.want {
				t.Errorf("Cancellable(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if StatusDelivered.Terminal() != true {
		t.Error("delivered should be terminal")
	}
	if StatusCancelled.Terminal() != true {
		t.Error("cancelled should be terminal")
	}
	if StatusProcessing.Terminal() {
		t.Error("processing should not be terminal")
	}
	if StatusShipped.Terminal() {
		t.Error("shipped should not be terminal")
	}
}

func TestOrderReference(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"64b1f0aa9f23a1", "ORD-9F23A1"},
		{"abc", "ORD-ABC"},
		{"", "ORD-"},
	}

	for _, tt := range tests {
		if got := OrderReference(tt.id); got != tt.want {
			t.Errorf("OrderReference(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestOrderEstimatedDelivery(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{CreatedAt: created}

	want := created.Add(7 * 24 * time.Hour)
	if got := o.EstimatedDelivery(); !got.Equal(want) {
		t.Errorf("EstimatedDelivery() = %v, want %v", got, want)
	}
}

func TestCartLineLookup(t *testing.T) {
	cart := &Cart{
		Lines: []CartLine{
			{ProductID: "p1", Quantity: 2, UnitPriceCents: 1000},
			{ProductID: "p2", Quantity: 1, UnitPriceCents: 2500},
		},
	}

	if line := cart.Line("p2"); line == nil || line.Quantity != 1 {
		t.Errorf("Line(p2) = %+v, want quantity 1", line)
	}
	if line := cart.Line("p9"); line != nil {
		t.Errorf("Line(p9) = %+v, want nil", line)
	}
	if got := cart.SubtotalCents(); got != 4500 {
		t.Errorf("SubtotalCents() = %d, want 4500", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Errorf("ItemCount() = %d, want 3", got)
	}
}
