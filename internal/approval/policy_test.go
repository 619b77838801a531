package approval

import (
	"testing"

	"alphagrid-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanApprove(t *testing.T) {
	founder := Actor{ID: "u2", Role: domain.RoleCoFounder}

	tests := []struct {
		name      string
		status    domain.ApprovalStatus
		createdBy string
		actor     Actor
		wantErr   error
	}{
		{
			name:      "co-founder approves someone else's pending record",
			status:    domain.ApprovalPending,
			createdBy: "u1",
			actor:     founder,
			wantErr:   nil,
		},
		{
			name:      "co-founder approves a rejected record",
			status:    domain.ApprovalRejected,
			createdBy: "u1",
			actor:     founder,
			wantErr:   nil,
		},
		{
			name:      "creator cannot approve own record",
			status:    domain.ApprovalPending,
			createdBy: "u2",
			actor:     founder,
			wantErr:   ErrSelfApproval,
		},
		{
			name:      "self-approval denied even for non-founders",
			status:    domain.ApprovalPending,
			createdBy: "u3",
			actor:     Actor{ID: "u3", Role: domain.RolePermanentPartner},
			wantErr:   ErrSelfApproval,
		},
		{
			name:      "permanent partner cannot approve",
			status:    domain.ApprovalPending,
			createdBy: "u1",
			actor:     Actor{ID: "u3", Role: domain.RolePermanentPartner},
			wantErr:   ErrForbidden,
		},
		{
			name:      "temporary worker cannot approve",
			status:    domain.ApprovalPending,
			createdBy: "u1",
			actor:     Actor{ID: "u4", Role: domain.RoleTemporaryWorker},
			wantErr:   ErrForbidden,
		},
		{
			name:      "already approved record stays approved",
			status:    domain.ApprovalApproved,
			createdBy: "u1",
			actor:     founder,
			wantErr:   ErrAlreadyApproved,
		},
		{
			name:      "already approved wins over self-approval",
			status:    domain.ApprovalApproved,
			createdBy: "u2",
			actor:     founder,
			wantErr:   ErrAlreadyApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanApprove(tt.status, tt.createdBy, tt.actor)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
