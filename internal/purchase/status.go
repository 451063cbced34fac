package purchase

import (
	"errors"
	"fmt"

	"barkeep/models"
)

// Per-supplier fulfillment states. These are stored as strings on the
// request's supplier-status map, so additions here must stay backward
// compatible with persisted values.
const (
	StatusPendingApproval = "Pending Manager Approval"
	StatusPending         = "Pending"
	StatusOrderPlaced     = "Order Placed"
	StatusOrderReceived   = "Order Received"
	StatusOrderCancelled  = "Order Cancelled"
)

// Derived display-only statuses, never valid as a per-supplier state.
const (
	StatusPartiallyReceived         = "Partially Received"
	StatusPartiallyOrdered          = "Partially Ordered"
	StatusReceivedWithCancellations = "Order Received, Order Cancelled"
)

var (
	ErrUnknownStatus        = errors.New("unknown purchase status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrRoleNotPermitted     = errors.New("role not permitted for transition")
)

var supplierStatuses = map[string]bool{
	StatusPendingApproval: true,
	StatusPending:         true,
	StatusOrderPlaced:     true,
	StatusOrderReceived:   true,
	StatusOrderCancelled:  true,
}

type edge struct {
	from string
	to   string
}

// transitions maps each permitted edge to the roles allowed to take it.
// Cancellation is reachable from Pending and Order Placed only; a received
// order cannot be cancelled, and only a Manager may revert a received order
// back to placed.
var transitions = map[edge][]string{
	{StatusPendingApproval, StatusPending}:    {models.RoleManager},
	{StatusPending, StatusOrderPlaced}:        {models.RolePurchaseManager, models.RoleManager},
	{StatusOrderPlaced, StatusOrderReceived}:  {models.RolePurchaseManager, models.RoleManager},
	{StatusPending, StatusOrderCancelled}:     {models.RolePurchaseManager, models.RoleManager},
	{StatusOrderPlaced, StatusOrderCancelled}: {models.RolePurchaseManager, models.RoleManager},
	{StatusOrderReceived, StatusOrderPlaced}:  {models.RoleManager},
}

// KnownStatus reports whether s is a valid per-supplier state.
func KnownStatus(s string) bool {
	return supplierStatuses[s]
}

// Transition validates that role may move a supplier's state from current to
// next. Violations are rejected with a wrapped sentinel error, never applied
// silently.
func Transition(current, next, role string) error {
	if !KnownStatus(current) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	if !KnownStatus(next) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	roles, ok := transitions[edge{from: current, to: next}]
	if !ok {
		return fmt.Errorf("%w: %q -> %q", ErrTransitionNotAllowed, current, next)
	}
	for _, allowed := range roles {
		if allowed == role {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot move %q to %q", ErrRoleNotPermitted, role, current, next)
}

// CreationStatus returns the initial status for a request created by role.
// Managers skip the approval step.
func CreationStatus(role string) string {
	if role == models.RoleManager {
		return StatusPending
	}
	return StatusPendingApproval
}
