package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	"gorm.io/gorm"
)

// Unique index guarding one row per (group, user), in its Postgres and
// SQLite spellings.
const (
	GroupUserConstraint       = "ux_group_members_group_user"
	GroupUserConstraintSQLite = "group_members.group_id, group_members.user_id"
)

// Repository exposes membership persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error)
	FindLeader(ctx context.Context, groupID uuid.UUID) (*models.GroupMember, error)
	CreateMembership(ctx context.Context, membership *models.GroupMember) error
	ApproveMembership(ctx context.Context, id uuid.UUID) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.GroupRole) error
	DeleteMembership(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteGroupMemberships(ctx context.Context, groupID uuid.UUID) (int64, error)
	CountApprovedForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountOtherApproved(ctx context.Context, groupID, userID uuid.UUID) (int64, error)
	ListUserMemberships(ctx context.Context, userID uuid.UUID) ([]models.GroupMember, error)
	ListGroupMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus) ([]models.GroupMember, error)
	CountByGroups(ctx context.Context, groupIDs []uuid.UUID, status enums.MembershipStatus) (map[uuid.UUID]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetMembership retrieves the single row for the (group, user) pair.
func (r *repository) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	var membership models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindLeader returns the group's approved leader row.
func (r *repository) FindLeader(ctx context.Context, groupID uuid.UUID) (*models.GroupMember, error) {
	var leader models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND role = ? AND status = ?", groupID, enums.GroupRoleLeader, enums.MembershipStatusApproved).
		First(&leader).Error
	if err != nil {
		return nil, err
	}
	return &leader, nil
}

// CreateMembership persists a new membership record.
func (r *repository) CreateMembership(ctx context.Context, membership *models.GroupMember) error {
	if !membership.Role.IsValid() {
		return fmt.Errorf("invalid group role %q", membership.Role)
	}
	if !membership.Status.IsValid() {
		return fmt.Errorf("invalid membership status %q", membership.Status)
	}
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	now := time.Now().UTC()
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = now
	}
	membership.UpdatedAt = now
	return r.db.WithContext(ctx).Create(membership).Error
}

// ApproveMembership moves a pending row to approved. Only pending rows are
// touched; zero affected rows surfaces as gorm.ErrRecordNotFound.
func (r *repository) ApproveMembership(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("id = ? AND status = ?", id, enums.MembershipStatusPending).
		Updates(map[string]any{
			"status":     enums.MembershipStatusApproved,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.GroupRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid group role %q", role)
	}
	result := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":       role,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteMembership(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GroupMember{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteGroupMemberships removes every row of the group, pending and approved.
func (r *repository) DeleteGroupMemberships(ctx context.Context, groupID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.GroupMember{})
	return result.RowsAffected, result.Error
}

func (r *repository) CountApprovedForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusApproved).
		Count(&count).Error
	return count, err
}

// CountOtherApproved counts approved members of the group other than userID.
func (r *repository) CountOtherApproved(ctx context.Context, groupID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ? AND user_id <> ?", groupID, enums.MembershipStatusApproved, userID).
		Count(&count).Error
	return count, err
}

// ListUserMemberships returns every row held by the user, pending included.
func (r *repository) ListUserMemberships(ctx context.Context, userID uuid.UUID) ([]models.GroupMember, error) {
	var rows []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// ListGroupMembers returns the group's rows in one status. Approved members
// come oldest first, pending requests newest first.
func (r *repository) ListGroupMembers(ctx context.Context, groupID uuid.UUID, status enums.MembershipStatus) ([]models.GroupMember, error) {
	order := "joined_at ASC, id ASC"
	if status == enums.MembershipStatusPending {
		order = "joined_at DESC, id DESC"
	}
	var rows []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, status).
		Order(order).
		Find(&rows).Error
	return rows, err
}

type groupCountRow struct {
	GroupID uuid.UUID `gorm:"column:group_id"`
	Total   int64     `gorm:"column:total"`
}

// CountByGroups returns per-group row counts in one status. Groups without
// rows are absent from the map.
func (r *repository) CountByGroups(ctx context.Context, groupIDs []uuid.UUID, status enums.MembershipStatus) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}
	var rows []groupCountRow
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IN ? AND status = ?", groupIDs, status).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}
