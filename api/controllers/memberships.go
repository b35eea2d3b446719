package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/squadlog/squadlog-backend/api/responses"
	"github.com/squadlog/squadlog-backend/api/validators"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/internal/visibility"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

type joinGroupRequest struct {
	GroupID    *uuid.UUID `json:"group_id"`
	InviteCode string     `json:"invite_code" validate:"omitempty,invitecode"`
}

type cancelJoinRequest struct {
	GroupID uuid.UUID `json:"group_id" validate:"required"`
}

type transferLeadershipRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// RequestJoin files a pending join request by group id or invite code.
func RequestJoin(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body joinGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target := memberships.JoinTarget{InviteCode: body.InviteCode}
		if body.GroupID != nil {
			target.GroupID = *body.GroupID
		}
		result, err := engine.RequestJoin(r.Context(), actorID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CancelJoinRequest withdraws the caller's pending request.
func CancelJoinRequest(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body cancelJoinRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.CancelJoinRequest(r.Context(), actorID, body.GroupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// LeaveGroup removes the caller from a group; a sole leader leaving deletes it.
func LeaveGroup(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
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
		result, err := engine.LeaveGroup(r.Context(), actorID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// KickMember removes an approved member as the group leader.
func KickMember(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return memberAction(logg, func(r *http.Request, input memberships.MemberActionInput) (any, error) {
		return nil, engine.KickMember(r.Context(), input)
	})
}

// TransferLeadership hands the leader role to another approved member.
func TransferLeadership(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
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
		var body transferLeadershipRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := memberships.MemberActionInput{ActorID: actorID, GroupID: groupID, TargetUserID: body.UserID}
		if err := engine.TransferLeadership(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ListPendingRequests returns the leader's queue of pending join requests.
func ListPendingRequests(svc visibility.Service, logg *logger.Logger) http.HandlerFunc {
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
		items, err := svc.ListPendingRequests(r.Context(), actorID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ApproveRequest promotes a pending request to an approved membership.
func ApproveRequest(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return memberAction(logg, func(r *http.Request, input memberships.MemberActionInput) (any, error) {
		return engine.ApproveRequest(r.Context(), input)
	})
}

// RejectRequest deletes a pending request.
func RejectRequest(engine memberships.Engine, logg *logger.Logger) http.HandlerFunc {
	return memberAction(logg, func(r *http.Request, input memberships.MemberActionInput) (any, error) {
		return nil, engine.RejectRequest(r.Context(), input)
	})
}

// memberAction resolves {groupId} and {userId} and runs fn. A nil result is
// written as 204.
func memberAction(logg *logger.Logger, fn func(r *http.Request, input memberships.MemberActionInput) (any, error)) http.HandlerFunc {
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
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := fn(r, memberships.MemberActionInput{ActorID: actorID, GroupID: groupID, TargetUserID: userID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result == nil {
			responses.WriteNoContent(w)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
