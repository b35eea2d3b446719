package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/squadlog/squadlog-backend/pkg/enums"
)

// GroupMember links a user with a group and tracks the join workflow state.
type GroupMember struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID              `gorm:"column:group_id;type:uuid;not null"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Role      enums.GroupRole        `gorm:"column:role;type:group_role;not null"`
	Status    enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	JoinedAt  time.Time              `gorm:"column:joined_at;not null"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (GroupMember) TableName() string { return "group_members" }

// IsApprovedLeader reports whether the row grants leader authority.
func (m GroupMember) IsApprovedLeader() bool {
	return m.Role == enums.GroupRoleLeader && m.Status == enums.MembershipStatusApproved
}
