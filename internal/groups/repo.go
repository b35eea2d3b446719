package groups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unique index names, plus the SQLite "table.column" form of the same
// constraint, used to classify insert failures.
const (
	InviteCodeConstraint       = "ux_groups_invite_code"
	InviteCodeConstraintSQLite = "groups.invite_code"
)

// Repository exposes persistence helpers for groups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Group, error)
	ApplySettings(ctx context.Context, id uuid.UUID, patch SettingsPatch) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListPublic(ctx context.Context) ([]models.Group, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a groups repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// LockByID reads the group with SELECT ... FOR UPDATE so that every
// membership mutation on the same group serialises behind it.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) ApplySettings(ctx context.Context, id uuid.UUID, patch SettingsPatch) error {
	updates := patch.columns()
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Group{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListPublic(ctx context.Context) ([]models.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
