package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"opsboard/internal/config"
	"opsboard/internal/transport/httpserver/handler"
	"opsboard/internal/transport/httpserver/middleware"
	"opsboard/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, units middleware.MembershipChecker, profiles middleware.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSOrigins))
	r.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := middleware.NewAuth(cfg.Auth, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/units", handlers.ListUnits)
			r.Post("/units", handlers.CreateUnit)
			r.Post("/units/join", handlers.JoinUnit)

			r.Route("/units/{unit_id}", func(r chi.Router) {
				r.Use(middleware.RequireUnitMember(units, log))

				r.Get("/members", handlers.ListUnitMembers)

				r.Get("/transactions", handlers.ListTransactions)
				r.Post("/transactions", handlers.CreateTransaction)
				r.Get("/transactions/{id}", handlers.GetTransaction)
				r.Put("/transactions/{id}", handlers.UpdateTransaction)
				r.Delete("/transactions/{id}", handlers.DeleteTransaction)

				r.Get("/seminars", handlers.ListSeminars)
				r.Post("/seminars", handlers.CreateSeminar)
				r.Get("/seminars/{id}", handlers.GetSeminar)
				r.Put("/seminars/{id}", handlers.UpdateSeminar)
				r.Delete("/seminars/{id}", handlers.DeleteSeminar)

				r.Get("/dashboard", handlers.Dashboard)
				r.Get("/analytics/summary", handlers.AnalyticsSummary)
				r.Get("/analytics/expense-breakdown", handlers.AnalyticsExpenseBreakdown)
				r.Get("/analytics/revenue-categories", handlers.AnalyticsRevenueCategories)
				r.Get("/analytics/cumulative", handlers.AnalyticsCumulative)
				r.Get("/analytics/timeseries", handlers.AnalyticsTimeseries)
				r.Get("/analytics/seminar-profitability", handlers.AnalyticsSeminarProfitability)
			})
		})
	})

	return r
}
