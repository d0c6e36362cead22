package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// TokenService issues session tokens and resolves them back to user IDs.
// Sessions are stateless: validity depends only on signature and expiry.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

func (s *TokenService) Issue(_ context.Context, userID uuid.UUID) (string, error) {
	token, err := s.manager.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return token, nil
}

// GetUserID verifies token and returns its subject. It does not check that
// the user still exists or is active.
func (s *TokenService) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	userID, err := s.manager.Verify(token)
	if err != nil {
		s.logger.Debug("Token service: rejected session token", "error", err.Error())
		return uuid.Nil, err
	}
	return userID, nil
}
