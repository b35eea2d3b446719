package visibility

import (
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
)

// GroupAccessInput drives the shared read-side checks for group projections.
// Membership is the actor's row for Group, or nil when there is none.
type GroupAccessInput struct {
	Group      *models.Group
	Membership *models.GroupMember
}

// EnsureMemberVisible lets approved members of the group through. A missing
// group is NotFound; anyone else is Forbidden.
func EnsureMemberVisible(input GroupAccessInput) error {
	if input.Group == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
	}
	if input.Membership == nil || input.Membership.GroupID != input.Group.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")
	}
	if input.Membership.Status != enums.MembershipStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden, "membership is still pending")
	}
	return nil
}

// EnsureLeaderVisible narrows EnsureMemberVisible to the approved leader.
func EnsureLeaderVisible(input GroupAccessInput) error {
	if err := EnsureMemberVisible(input); err != nil {
		return err
	}
	if input.Membership.Role != enums.GroupRoleLeader {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the group leader can view this")
	}
	return nil
}

// SeesPendingCount reports whether a membership row may see the number of
// pending requests for its group.
func SeesPendingCount(m *models.GroupMember) bool {
	return m != nil && m.IsApprovedLeader()
}
