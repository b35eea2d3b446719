package memberships

import (
	"github.com/squadlog/squadlog-backend/pkg/db/models"
)

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.GroupMember) MembershipDTO {
	if m == nil {
		return MembershipDTO{}
	}
	return MembershipDTO{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

// ToDTOs converts a slice of rows, preserving order.
func ToDTOs(rows []models.GroupMember) []MembershipDTO {
	out := make([]MembershipDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToDTO(&rows[i]))
	}
	return out
}
