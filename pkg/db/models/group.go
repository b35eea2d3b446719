package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named collection of users discoverable by invite code and,
// when public, through the explore directory.
type Group struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;type:text;not null"`
	InviteCode   string    `gorm:"column:invite_code;type:varchar(8);not null"`
	CreatorID    uuid.UUID `gorm:"column:creator_id;type:uuid;not null"`
	IsPublic     bool      `gorm:"column:is_public;not null;default:false"`
	WhatsappLink *string   `gorm:"column:whatsapp_link;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string { return "groups" }
