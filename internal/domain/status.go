package domain

import (
	"fmt"
	"strings"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// transitions lists the statuses reachable from each known status.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// IsKnown reports whether s belongs to the closed status set
func (s OrderStatus) IsKnown() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// StatusPolicy decides whether a status change is allowed.
// With Strict unset any non-empty status is accepted.
type StatusPolicy struct {
	Strict bool
}

// Next validates the change from -> raw and returns the status to store.
func (p StatusPolicy) Next(from OrderStatus, raw string) (OrderStatus, error) {
	to := OrderStatus(strings.TrimSpace(raw))
	if to == "" {
		return "", NewValidationError("orderStatus", "is required")
	}

	if !p.Strict || to == from {
		return to, nil
	}

	if !to.IsKnown() {
		return "", NewValidationError("orderStatus",
			fmt.Sprintf("unknown status %q: must be one of Pending, Confirmed, Completed, Cancelled", to))
	}

	for _, allowed := range transitions[from] {
		if allowed == to {
			return to, nil
		}
	}

	return "", NewValidationError("orderStatus", fmt.Sprintf("cannot change status from %s to %s", from, to))
}
