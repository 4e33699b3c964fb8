package status

import (
	"errors"
	"testing"
)

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"pending to confirmed", OrderPending, OrderConfirmed, nil},
		{"confirmed to processing", OrderConfirmed, OrderProcessing, nil},
		{"processing to ready_for_pickup", OrderProcessing, OrderReadyForPickup, nil},
		{"ready_for_pickup to pickup", OrderReadyForPickup, OrderPickup, nil},
		{"pickup to shipped", OrderPickup, OrderShipped, nil},
		{"shipped to out_for_delivery", OrderShipped, OrderOutForDelivery, nil},
		{"out_for_delivery to delivered", OrderOutForDelivery, OrderDelivered, nil},
		{"delivered to returned", OrderDelivered, OrderReturned, nil},
		{"pending to cancelled", OrderPending, OrderCancelled, nil},
		{"pickup to cancelled", OrderPickup, OrderCancelled, nil},

		{"no skipping to delivered", OrderPending, OrderDelivered, ErrIllegalTransition},
		{"no shipping before pickup", OrderProcessing, OrderShipped, ErrIllegalTransition},
		{"no cancel after handover", OrderShipped, OrderCancelled, ErrIllegalTransition},
		{"no backwards move", OrderDelivered, OrderPending, ErrIllegalTransition},
		{"cancelled absorbs", OrderCancelled, OrderConfirmed, ErrIllegalTransition},
		{"returned absorbs", OrderReturned, OrderPending, ErrIllegalTransition},
		{"unknown source", "teleported", OrderPending, ErrUnknownStatus},
		{"unknown target", OrderPending, "teleported", ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransitionOrder(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanTransitionOrder(%q, %q) = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestCanTransitionReturn(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"requested to approved", ReturnRequested, ReturnApproved, nil},
		{"requested to rejected", ReturnRequested, ReturnRejected, nil},
		{"approved to received", ReturnApproved, ReturnReceived, nil},
		{"received to quality_passed", ReturnReceived, ReturnQualityPassed, nil},
		{"received to quality_failed", ReturnReceived, ReturnQualityFailed, nil},
		{"quality_passed to refunded", ReturnQualityPassed, ReturnRefunded, nil},
		{"quality_failed to refunded", ReturnQualityFailed, ReturnRefunded, nil},

		// The gap the old API left open: jumping straight to refunded.
		{"no requested to refunded", ReturnRequested, ReturnRefunded, ErrIllegalTransition},
		{"no approved to refunded", ReturnApproved, ReturnRefunded, ErrIllegalTransition},
		{"no reject after approval", ReturnApproved, ReturnRejected, ErrIllegalTransition},
		{"refunded absorbs", ReturnRefunded, ReturnRequested, ErrIllegalTransition},
		{"rejected absorbs", ReturnRejected, ReturnApproved, ErrIllegalTransition},
		{"unknown status", ReturnRequested, "limbo", ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransitionReturn(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanTransitionReturn(%q, %q) = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestValidateShipment(t *testing.T) {
	if err := ValidateShipment("AWB123", "Delhivery"); err != nil {
		t.Errorf("valid shipment data rejected: %v", err)
	}
	if err := ValidateShipment("", "Delhivery"); !errors.Is(err, ErrShipmentDataNeeded) {
		t.Errorf("missing tracking id: got %v", err)
	}
	if err := ValidateShipment("AWB123", ""); !errors.Is(err, ErrShipmentDataNeeded) {
		t.Errorf("missing carrier: got %v", err)
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []string{OrderCancelled, OrderReturned} {
		if !IsTerminalOrder(s) {
			t.Errorf("IsTerminalOrder(%q) = false, want true", s)
		}
	}
	for _, s := range []string{OrderPending, OrderShipped, OrderDelivered} {
		if IsTerminalOrder(s) {
			t.Errorf("IsTerminalOrder(%q) = true, want false", s)
		}
	}
	if !IsTerminalReturn(ReturnRefunded) || !IsTerminalReturn(ReturnRejected) {
		t.Error("refunded and rejected should be terminal return states")
	}
	if IsTerminalReturn(ReturnQualityFailed) {
		t.Error("quality_failed still has a refund step ahead")
	}
}
