package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTimecard(t *testing.T) {
	tests := []struct {
		from, to TimecardStatus
		want     bool
	}{
		{TimecardStatusDraft, TimecardStatusSubmitted, true},
		{TimecardStatusEditedDraft, TimecardStatusSubmitted, true},
		{TimecardStatusSubmitted, TimecardStatusApproved, true},
		{TimecardStatusSubmitted, TimecardStatusRejected, true},
		{TimecardStatusSubmitted, TimecardStatusEditedDraft, true},
		{TimecardStatusRejected, TimecardStatusSubmitted, true},
		{TimecardStatusRejected, TimecardStatusDraft, true},

		{TimecardStatusDraft, TimecardStatusApproved, false},
		{TimecardStatusDraft, TimecardStatusRejected, false},
		{TimecardStatusApproved, TimecardStatusSubmitted, false},
		{TimecardStatusApproved, TimecardStatusDraft, false},
		{TimecardStatusSubmitted, TimecardStatusDraft, false},
		{TimecardStatusRejected, TimecardStatusApproved, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransitionTimecard(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestClassifyEditAction(t *testing.T) {
	assert.Equal(t, AuditActionRejectionEdit, ClassifyEditAction("a", "a", true, true))
	assert.Equal(t, AuditActionUserEdit, ClassifyEditAction("a", "a", false, false))
	assert.Equal(t, AuditActionAdminEdit, ClassifyEditAction("b", "a", true, false))
	assert.Equal(t, AuditActionUserEdit, ClassifyEditAction("b", "a", false, false))
}

func TestRoleCanApprove(t *testing.T) {
	assert.True(t, RoleCanApprove(RoleAdmin))
	assert.True(t, RoleCanApprove(RoleSupervisor))
	assert.False(t, RoleCanApprove(RoleTalentEscort))
	assert.False(t, RoleCanApprove(RoleCoordinator))
}

func TestBreakClassForRole(t *testing.T) {
	assert.Equal(t, BreakClassEscort, BreakClassForRole(RoleTalentEscort))
	assert.Equal(t, BreakClassStaff, BreakClassForRole(RoleCoordinator))
	assert.Equal(t, BreakClassStaff, BreakClassForRole(RoleSupervisor))
}
