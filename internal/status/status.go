// Package status holds the order and returns state machines. Every status
// mutation in the API goes through these tables, so transition legality is
// enforced at the service boundary rather than trusted from the client.
package status

import "errors"

var (
	ErrUnknownStatus      = errors.New("unknown status")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrShipmentDataNeeded = errors.New("shipped status requires tracking id and carrier")
)

// Order statuses
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderProcessing     = "processing"
	OrderReadyForPickup = "ready_for_pickup"
	OrderPickup         = "pickup"
	OrderShipped        = "shipped"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
	OrderReturned       = "returned"
)

// orderTransitions is the adjacency table for the order machine.
// 'cancelled' is reachable up to the carrier pickup; after handover the
// only way back is the returns flow. 'cancelled' and 'returned' absorb.
var orderTransitions = map[string][]string{
	OrderPending:        {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderProcessing, OrderCancelled},
	OrderProcessing:     {OrderReadyForPickup, OrderCancelled},
	OrderReadyForPickup: {OrderPickup, OrderCancelled},
	OrderPickup:         {OrderShipped, OrderCancelled},
	OrderShipped:        {OrderOutForDelivery},
	OrderOutForDelivery: {OrderDelivered},
	OrderDelivered:      {OrderReturned},
	OrderCancelled:      {},
	OrderReturned:       {},
}

// Return statuses
const (
	ReturnRequested     = "requested"
	ReturnApproved      = "approved"
	ReturnReceived      = "received"
	ReturnQualityPassed = "quality_passed"
	ReturnQualityFailed = "quality_failed"
	ReturnRefunded      = "refunded"
	ReturnRejected      = "rejected"
)

var returnTransitions = map[string][]string{
	ReturnRequested:     {ReturnApproved, ReturnRejected},
	ReturnApproved:      {ReturnReceived},
	ReturnReceived:      {ReturnQualityPassed, ReturnQualityFailed},
	ReturnQualityPassed: {ReturnRefunded},
	ReturnQualityFailed: {ReturnRefunded},
	ReturnRefunded:      {},
	ReturnRejected:      {},
}

func canTransition(table map[string][]string, from, to string) error {
	next, ok := table[from]
	if !ok {
		return ErrUnknownStatus
	}
	if _, ok := table[to]; !ok {
		return ErrUnknownStatus
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return ErrIllegalTransition
}

// CanTransitionOrder reports whether an order may move from one status to
// another. For 'shipped' the caller must already hold a tracking id and
// carrier name; ValidateShipment checks those.
func CanTransitionOrder(from, to string) error {
	return canTransition(orderTransitions, from, to)
}

// CanTransitionReturn reports whether a return request may move from one
// status to another.
func CanTransitionReturn(from, to string) error {
	return canTransition(returnTransitions, from, to)
}

// ValidateShipment enforces the shipped-transition data contract.
func ValidateShipment(trackingID, carrier string) error {
	if trackingID == "" || carrier == "" {
		return ErrShipmentDataNeeded
	}
	return nil
}

// IsTerminalOrder reports whether no further order transitions exist.
func IsTerminalOrder(s string) bool {
	return len(orderTransitions[s]) == 0 && s != ""
}

// IsTerminalReturn reports whether a return status is final.
func IsTerminalReturn(s string) bool {
	return s == ReturnRefunded || s == ReturnRejected
}

// OrderStatuses lists the full order vocabulary, in lifecycle order.
var OrderStatuses = []string{
	OrderPending, OrderConfirmed, OrderProcessing, OrderReadyForPickup,
	OrderPickup, OrderShipped, OrderOutForDelivery, OrderDelivered,
	OrderCancelled, OrderReturned,
}

// ReturnStatuses lists the full returns vocabulary.
var ReturnStatuses = []string{
	ReturnRequested, ReturnApproved, ReturnReceived,
	ReturnQualityPassed, ReturnQualityFailed, ReturnRefunded, ReturnRejected,
}
