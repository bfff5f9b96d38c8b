package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codecraftlabs/site-server/internal/api/handlers"
	"github.com/codecraftlabs/site-server/internal/api/middleware"
	"github.com/codecraftlabs/site-server/internal/auth"
	"github.com/codecraftlabs/site-server/internal/service"
	"github.com/codecraftlabs/site-server/internal/store"
)

// Deps is everything the router needs wired in.
type Deps struct {
	Store      store.Store
	Auth       *auth.Authenticator
	Log        *zap.Logger
	UploadsDir string
}

// NewRouter builds the HTTP router for the site server.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.CORS)

	referralSvc := service.NewReferralService(deps.Store.Referrals(), deps.Log)

	authHandler := handlers.NewAuthHandler(deps.Auth)
	referralHandler := handlers.NewReferralHandler(referralSvc)
	purchaseHandler := handlers.NewPurchaseHandler(deps.Store.Purchases())
	applicationHandler := handlers.NewApplicationHandler(
		deps.Store.Applications(), deps.Store.Purchases(), deps.UploadsDir, deps.Log)

	requireAdmin := middleware.RequireAdmin(deps.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok":true}`))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/verify", authHandler.Verify)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", purchaseHandler.Create)
			r.With(requireAdmin).Get("/", purchaseHandler.List)
		})

		referralRoutes := func(r chi.Router) {
			r.Post("/validate", referralHandler.Validate)
			r.With(requireAdmin).Get("/", referralHandler.List)
			r.With(requireAdmin).Post("/", referralHandler.Create)
			r.With(requireAdmin).Delete("/{code}", referralHandler.Delete)
		}
		r.Route("/referrals", referralRoutes)
		// Older frontend builds call /referral-codes; same handlers.
		r.Route("/referral-codes", referralRoutes)

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", applicationHandler.Create)
			r.With(requireAdmin).Get("/", applicationHandler.List)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Uploaded resumes are served as plain static files.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir))))

	return r
}
