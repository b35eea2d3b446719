package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/squadlog/squadlog-backend/api/controllers"
	"github.com/squadlog/squadlog-backend/api/middleware"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/internal/notifications"
	"github.com/squadlog/squadlog-backend/internal/visibility"
	"github.com/squadlog/squadlog-backend/pkg/config"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	rateStore middleware.RateLimiterStore,
	metricsHandler http.Handler,
	engine memberships.Engine,
	visibilityService visibility.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	joinPolicy := middleware.NewRateLimitPolicy("join", cfg.RateLimit.JoinWindow, cfg.RateLimit.JoinLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisP,
		}))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", controllers.ListMyGroups(visibilityService, logg))
			r.Post("/", controllers.CreateGroup(engine, logg))
			r.Get("/explore", controllers.ExplorePublicGroups(visibilityService, logg))
			r.With(middleware.RateLimit(joinPolicy, rateStore, logg)).Post("/join", controllers.RequestJoin(engine, logg))
			r.Post("/join/cancel", controllers.CancelJoinRequest(engine, logg))

			r.Route("/{groupId}", func(r chi.Router) {
				r.Get("/", controllers.GetGroupDetail(visibilityService, logg))
				r.Patch("/", controllers.UpdateGroupSettings(engine, logg))
				r.Delete("/", controllers.DeleteGroup(engine, logg))
				r.Post("/leave", controllers.LeaveGroup(engine, logg))
				r.Post("/leader", controllers.TransferLeadership(engine, logg))
				r.Delete("/members/{userId}", controllers.KickMember(engine, logg))
				r.Get("/requests", controllers.ListPendingRequests(visibilityService, logg))
				r.Post("/requests/{userId}/approve", controllers.ApproveRequest(engine, logg))
				r.Post("/requests/{userId}/reject", controllers.RejectRequest(engine, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(notificationsService, logg))
		})
	})

	return r
}
