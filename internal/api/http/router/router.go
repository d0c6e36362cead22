package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/accounts-server/internal/api/http/handler"
	"github.com/dtroode/accounts-server/internal/api/http/middleware"
	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// maxRequestBodySize is the maximum allowed request body size (1 MB).
const maxRequestBodySize = 1 << 20

// Services groups everything the router dispatches to.
type Services struct {
	Auth    handler.AuthService
	Profile handler.ProfileService
	Admin   handler.AdminService
	Tokens  middleware.TokenService
	Users   middleware.UserGetter
	Health  handler.Pinger
}

// Router builds the HTTP routing tree with its gate chains.
type Router struct {
	services       Services
	cookie         handler.CookieConfig
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	services Services,
	cookie handler.CookieConfig,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		cookie:         cookie,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register wires middleware and routes.
//
// Gate order on protected routes is Authenticate, RequireActive, then
// RequireRole for admin routes.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	recovery := middleware.NewRecovery(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Tokens, r.contextManager, r.logger)
	authorize := middleware.NewAuthorize(r.services.Users, r.contextManager, r.logger)

	authHandler := handler.NewAuth(r.services.Auth, r.cookie, r.logger)
	profileHandler := handler.NewProfile(r.services.Profile, r.contextManager, r.logger)
	adminHandler := handler.NewAdmin(r.services.Admin, r.logger)
	healthHandler := handler.NewHealth(r.services.Health, r.logger)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(logging.Handle)
	mux.Use(recovery.Handle)
	mux.Use(chimw.RequestSize(maxRequestBodySize))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Text(w, http.StatusNotFound, "Not Found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Text(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	mux.Get("/healthz", healthHandler.Check)

	mux.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)

			auth.Group(func(g chi.Router) {
				g.Use(authenticate.Handle)
				g.Post("/logout", authHandler.Logout)
				g.With(authorize.RequireActive).Get("/me", authHandler.Me)
			})
		})

		api.Route("/user", func(user chi.Router) {
			user.Use(authenticate.Handle, authorize.RequireActive)
			user.Get("/profile", profileHandler.Get)
			user.Patch("/profile", profileHandler.Update)
			user.Patch("/changepassword", profileHandler.ChangePassword)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authenticate.Handle, authorize.RequireActive, authorize.RequireRole(model.RoleAdmin))
			admin.Get("/getAllusers", adminHandler.ListUsers)
			admin.Patch("/users/{id}/activate", adminHandler.Activate)
			admin.Patch("/users/{id}/deactivate", adminHandler.Deactivate)
		})
	})

	return mux
}
