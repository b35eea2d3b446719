package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/squadlog/squadlog-backend/api/middleware"
	"github.com/squadlog/squadlog-backend/api/responses"
	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	actorID := middleware.ActorIDFromContext(r.Context())
	if actorID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	return actorID, true
}
