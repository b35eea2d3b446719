package visibility

import (
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
)

// MyGroupDTO is one entry of the actor's own group list.
type MyGroupDTO struct {
	Group               groups.GroupDTO `json:"group"`
	Role                enums.GroupRole `json:"role"`
	JoinedAt            time.Time       `json:"joined_at"`
	MemberCount         int64           `json:"member_count"`
	PendingRequestCount *int64          `json:"pending_request_count,omitempty"`
}

// PublicGroupDTO is a directory entry. Invite codes and chat links stay
// private to members.
type PublicGroupDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	CreatorID         uuid.UUID `json:"creator_id"`
	CreatedAt         time.Time `json:"created_at"`
	MemberCount       int64     `json:"member_count"`
	IsMember          bool      `json:"is_member"`
	HasPendingRequest bool      `json:"has_pending_request"`
}

// GroupDetailDTO is what an approved member sees of a group.
type GroupDetailDTO struct {
	Group               groups.GroupDTO             `json:"group"`
	Role                enums.GroupRole             `json:"role"`
	Members             []memberships.MembershipDTO `json:"members"`
	PendingRequestCount *int64                      `json:"pending_request_count,omitempty"`
}

// PendingRequestDTO identifies a requester awaiting the leader's decision.
type PendingRequestDTO struct {
	RequestID   uuid.UUID `json:"request_id"`
	GroupID     uuid.UUID `json:"group_id"`
	UserID      uuid.UUID `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func pendingFromModel(m models.GroupMember) PendingRequestDTO {
	return PendingRequestDTO{
		RequestID:   m.ID,
		GroupID:     m.GroupID,
		UserID:      m.UserID,
		RequestedAt: m.JoinedAt,
	}
}

func publicFromModel(g models.Group, memberCount int64) PublicGroupDTO {
	return PublicGroupDTO{
		ID:          g.ID,
		Name:        g.Name,
		CreatorID:   g.CreatorID,
		CreatedAt:   g.CreatedAt,
		MemberCount: memberCount,
	}
}
