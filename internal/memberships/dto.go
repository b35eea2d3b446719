package memberships

import (
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	"github.com/squadlog/squadlog-backend/pkg/types"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID       uuid.UUID              `json:"id"`
	GroupID  uuid.UUID              `json:"group_id"`
	UserID   uuid.UUID              `json:"user_id"`
	Role     enums.GroupRole        `json:"role"`
	Status   enums.MembershipStatus `json:"status"`
	JoinedAt time.Time              `json:"joined_at"`
}

// CreateGroupInput carries the founding leader and the group name.
type CreateGroupInput struct {
	ActorID uuid.UUID
	Name    string
}

// CreateGroupResult is the new group plus the founding leader row.
type CreateGroupResult struct {
	Group  groups.GroupDTO `json:"group"`
	Leader MembershipDTO   `json:"membership"`
}

// JoinTarget names the group to join, either by id or by invite code.
// GroupID wins when both are set.
type JoinTarget struct {
	GroupID    uuid.UUID
	InviteCode string
}

// JoinRequestResult confirms a pending request.
type JoinRequestResult struct {
	GroupID   uuid.UUID     `json:"group_id"`
	GroupName string        `json:"group_name"`
	Request   MembershipDTO `json:"request"`
}

// MemberActionInput identifies a leader acting on another user's row.
type MemberActionInput struct {
	ActorID      uuid.UUID
	GroupID      uuid.UUID
	TargetUserID uuid.UUID
}

// UpdateSettingsInput is a partial settings update issued by the leader.
type UpdateSettingsInput struct {
	ActorID      uuid.UUID
	GroupID      uuid.UUID
	IsPublic     *bool
	WhatsappLink types.NullableString
}

// LeaveResult reports whether leaving also removed the group.
type LeaveResult struct {
	GroupID      uuid.UUID `json:"group_id"`
	GroupDeleted bool      `json:"group_deleted"`
}
