// Package approval holds the decision rules shared by every record type
// that moves through the pending/approved/rejected lifecycle.
package approval

import (
	"errors"

	"alphagrid-backend/internal/domain"
)

var (
	// ErrForbidden is returned when the actor's role may not approve records.
	ErrForbidden = errors.New("only co-founders can approve records")
	// ErrAlreadyApproved is returned when the record has already been approved.
	ErrAlreadyApproved = errors.New("record is already approved")
	// ErrSelfApproval is returned when the actor created the record. A record
	// must always be approved by someone other than its creator.
	ErrSelfApproval = errors.New("cannot approve your own record")
)

// Actor is the identity attempting an approval.
type Actor struct {
	ID   string
	Role domain.UserRole
}

// CanApprove decides whether actor may approve a record in the given state.
// Self-approval is rejected regardless of role; a record that is already
// approved stays approved no matter who asks.
func CanApprove(status domain.ApprovalStatus, createdBy string, actor Actor) error {
	if status == domain.ApprovalApproved {
		return ErrAlreadyApproved
	}
	if createdBy == actor.ID {
		return ErrSelfApproval
	}
	if actor.Role != domain.RoleCoFounder {
		return ErrForbidden
	}
	return nil
}
