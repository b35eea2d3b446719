package groups

import (
	"time"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/types"
)

// SettingsPatch carries a partial settings update. A nil IsPublic leaves the
// flag alone; WhatsappLink is applied whenever it was supplied, null included.
type SettingsPatch struct {
	IsPublic     *bool
	WhatsappLink types.NullableString
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.IsPublic == nil && !p.WhatsappLink.Present
}

func (p SettingsPatch) columns() map[string]any {
	updates := map[string]any{}
	if p.IsPublic != nil {
		updates["is_public"] = *p.IsPublic
	}
	if p.WhatsappLink.Present {
		if p.WhatsappLink.Value == nil {
			updates["whatsapp_link"] = nil
		} else {
			updates["whatsapp_link"] = *p.WhatsappLink.Value
		}
	}
	return updates
}

// GroupDTO is the API shape of a group, invite code included.
type GroupDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	InviteCode   string    `json:"invite_code"`
	CreatorID    uuid.UUID `json:"creator_id"`
	IsPublic     bool      `json:"is_public"`
	WhatsappLink *string   `json:"whatsapp_link"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromModel maps a stored group onto its DTO.
func FromModel(g models.Group) GroupDTO {
	return GroupDTO{
		ID:           g.ID,
		Name:         g.Name,
		InviteCode:   g.InviteCode,
		CreatorID:    g.CreatorID,
		IsPublic:     g.IsPublic,
		WhatsappLink: g.WhatsappLink,
		CreatedAt:    g.CreatedAt,
	}
}
