package visibility

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
	access "github.com/squadlog/squadlog-backend/pkg/visibility"
	"gorm.io/gorm"
)

// Service projects groups as a given actor may see them.
type Service interface {
	ListMyGroups(ctx context.Context, actorID uuid.UUID) ([]MyGroupDTO, error)
	ExplorePublicGroups(ctx context.Context, actorID uuid.UUID) ([]PublicGroupDTO, error)
	GetGroupDetail(ctx context.Context, actorID, groupID uuid.UUID) (*GroupDetailDTO, error)
	ListPendingRequests(ctx context.Context, actorID, groupID uuid.UUID) ([]PendingRequestDTO, error)
}

type service struct {
	groups      groups.Repository
	memberships memberships.Repository
}

// NewService wires the read-side repositories.
func NewService(groupRepo groups.Repository, memberRepo memberships.Repository) (Service, error) {
	if groupRepo == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if memberRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{groups: groupRepo, memberships: memberRepo}, nil
}

func (s *service) ListMyGroups(ctx context.Context, actorID uuid.UUID) ([]MyGroupDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.memberships.ListUserMemberships(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}

	byGroup := make(map[uuid.UUID]models.GroupMember, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	var leaderOf []uuid.UUID
	for _, row := range rows {
		if row.Status != enums.MembershipStatusApproved {
			continue
		}
		byGroup[row.GroupID] = row
		ids = append(ids, row.GroupID)
		if access.SeesPendingCount(&row) {
			leaderOf = append(leaderOf, row.GroupID)
		}
	}
	if len(ids) == 0 {
		return []MyGroupDTO{}, nil
	}

	found, err := s.groups.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load groups")
	}
	memberCounts, err := s.memberships.CountByGroups(ctx, ids, enums.MembershipStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}
	pendingCounts, err := s.memberships.CountByGroups(ctx, leaderOf, enums.MembershipStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending requests")
	}

	out := make([]MyGroupDTO, 0, len(found))
	for _, g := range found {
		membership := byGroup[g.ID]
		item := MyGroupDTO{
			Group:       groups.FromModel(g),
			Role:        membership.Role,
			JoinedAt:    membership.JoinedAt,
			MemberCount: memberCounts[g.ID],
		}
		if access.SeesPendingCount(&membership) {
			pending := pendingCounts[g.ID]
			item.PendingRequestCount = &pending
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) ExplorePublicGroups(ctx context.Context, actorID uuid.UUID) ([]PublicGroupDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	public, err := s.groups.ListPublic(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public groups")
	}
	if len(public) == 0 {
		return []PublicGroupDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(public))
	for _, g := range public {
		ids = append(ids, g.ID)
	}
	memberCounts, err := s.memberships.CountByGroups(ctx, ids, enums.MembershipStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}
	mine, err := s.memberships.ListUserMemberships(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	status := make(map[uuid.UUID]enums.MembershipStatus, len(mine))
	for _, row := range mine {
		status[row.GroupID] = row.Status
	}

	out := make([]PublicGroupDTO, 0, len(public))
	for _, g := range public {
		item := publicFromModel(g, memberCounts[g.ID])
		switch status[g.ID] {
		case enums.MembershipStatusApproved:
			item.IsMember = true
		case enums.MembershipStatusPending:
			item.HasPendingRequest = true
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) GetGroupDetail(ctx context.Context, actorID, groupID uuid.UUID) (*GroupDetailDTO, error) {
	group, membership, err := s.loadAccess(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	input := access.GroupAccessInput{Group: group, Membership: membership}
	if err := access.EnsureMemberVisible(input); err != nil {
		return nil, err
	}

	members, err := s.memberships.ListGroupMembers(ctx, group.ID, enums.MembershipStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	detail := &GroupDetailDTO{
		Group:   groups.FromModel(*group),
		Role:    membership.Role,
		Members: memberships.ToDTOs(members),
	}
	if access.SeesPendingCount(membership) {
		counts, err := s.memberships.CountByGroups(ctx, []uuid.UUID{group.ID}, enums.MembershipStatusPending)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending requests")
		}
		pending := counts[group.ID]
		detail.PendingRequestCount = &pending
	}
	return detail, nil
}

func (s *service) ListPendingRequests(ctx context.Context, actorID, groupID uuid.UUID) ([]PendingRequestDTO, error) {
	group, membership, err := s.loadAccess(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if err := access.EnsureLeaderVisible(access.GroupAccessInput{Group: group, Membership: membership}); err != nil {
		return nil, err
	}

	rows, err := s.memberships.ListGroupMembers(ctx, group.ID, enums.MembershipStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending requests")
	}
	out := make([]PendingRequestDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, pendingFromModel(row))
	}
	return out, nil
}

// loadAccess fetches the group and the actor's row in it. Either may come
// back nil when absent.
func (s *service) loadAccess(ctx context.Context, actorID, groupID uuid.UUID) (*models.Group, *models.GroupMember, error) {
	if actorID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if groupID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	membership, err := s.memberships.GetMembership(ctx, groupID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	return group, membership, nil
}
