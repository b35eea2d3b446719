package controllers

import (
	"net/http"

	"github.com/squadlog/squadlog-backend/api/responses"
	"github.com/squadlog/squadlog-backend/api/validators"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/internal/visibility"
	"github.com/squadlog/squadlog-backend/pkg/logger"
	"github.com/squadlog/squadlog-backend/pkg/types"
)

type createGroupRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type updateGroupRequest struct {
	IsPublic     *bool                `json:"is_public"`
	WhatsappLink types.NullableString `json:"whatsapp_link"`
}

// ListMyGroups returns the groups where the caller is an approved member.
func ListMyGroups(svc visibility.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.ListMyGroups(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ExplorePublicGroups lists discoverable groups annotated for the caller.
func ExplorePublicGroups(svc visibility.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.ExplorePublicGroups(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CreateGroup creates a private group led by the caller.
func CreateGroup(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body createGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := engine.CreateGroup(r.Context(), memberships.CreateGroupInput{
			ActorID: actorID,
			Name:    body.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// GetGroupDetail returns the member-only view of a group.
func GetGroupDetail(svc visibility.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetGroupDetail(r.Context(), actorID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateGroupSettings applies a partial settings patch as the group leader.
func UpdateGroupSettings(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		group, err := engine.UpdateGroupSettings(r.Context(), memberships.UpdateSettingsInput{
			ActorID:      actorID,
			GroupID:      groupID,
			IsPublic:     body.IsPublic,
			WhatsappLink: body.WhatsappLink,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, group)
	}
}

// DeleteGroup removes a group and every membership in it.
func DeleteGroup(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.DeleteGroup(r.Context(), actorID, groupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
