package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/model"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	principalKey contextKey = "principal"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated identity in request contexts.
type Manager struct{}

// NewManager creates a new HTTP context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext attaches the subject of a verified session token.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the attached subject. The boolean is false
// when the request was not authenticated.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// SetPrincipalToContext caches the loaded account so later gate stages and
// handlers do not repeat the lookup.
func (m *Manager) SetPrincipalToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

func (m *Manager) GetPrincipalFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(principalKey).(model.User)
	return user, ok
}
