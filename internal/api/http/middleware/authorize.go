package middleware

import (
	"context"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// UserGetter loads accounts for the gate.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Authorize holds the gate stages that run after Authenticate.
type Authorize struct {
	users          UserGetter
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthorize(users UserGetter, contextManager model.ContextManager, logger *logger.Logger) *Authorize {
	return &Authorize{users: users, contextManager: contextManager, logger: logger}
}

// RequireActive rejects requests whose account is gone or deactivated. The
// loaded account is stored in the context for later stages.
func (m *Authorize) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.loadPrincipal(w, r)
		if !ok {
			return
		}
		if !user.IsActive {
			m.logger.Info("Authorize middleware: deactivated account rejected",
				"user_id", user.ID,
				"request_id", chimw.GetReqID(r.Context()))
			response.Unauthorized(w)
			return
		}

		ctx := m.contextManager.SetPrincipalToContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose account does not hold role.
func (m *Authorize) RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, cached := m.contextManager.GetPrincipalFromContext(r.Context())
			if !cached {
				var ok bool
				if user, ok = m.loadPrincipal(w, r); !ok {
					return
				}
			}
			if user.Role != role {
				m.logger.Info("Authorize middleware: role check failed",
					"user_id", user.ID,
					"role", user.Role,
					"required", role,
					"request_id", chimw.GetReqID(r.Context()))
				response.Unauthorized(w)
				return
			}

			ctx := m.contextManager.SetPrincipalToContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loadPrincipal writes the rejection itself and reports false when the
// request must stop.
func (m *Authorize) loadPrincipal(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	userID, ok := m.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w)
		return model.User{}, false
	}

	user, err := m.users.GetByID(r.Context(), userID)
	if errors.Is(err, model.ErrNotFound) {
		response.Unauthorized(w)
		return model.User{}, false
	}
	if err != nil {
		m.logger.Error("Authorize middleware: failed to load user",
			"user_id", userID,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err.Error())
		response.InternalError(w)
		return model.User{}, false
	}

	return user, true
}
