package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Admin serves account administration. Callers must already have passed
// the admin gate.
type Admin struct {
	userStore    model.UserStore
	maxPageLimit int
	logger       *logger.Logger
}

func NewAdmin(userStore model.UserStore, maxPageLimit int, logger *logger.Logger) *Admin {
	return &Admin{
		userStore:    userStore,
		maxPageLimit: maxPageLimit,
		logger:       logger,
	}
}

// ListUsers returns non-admin accounts, newest first. Non-positive page and
// limit fall back to the defaults; limit is capped at the configured maximum.
func (a *Admin) ListUsers(ctx context.Context, page, limit int) (model.UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if a.maxPageLimit > 0 && limit > a.maxPageLimit {
		limit = a.maxPageLimit
	}

	total, err := a.userStore.CountNonAdmin(ctx)
	if err != nil {
		a.logger.Error("Admin service: failed to count users",
			"error", err.Error())
		return model.UserPage{}, fmt.Errorf("failed to count users: %w", err)
	}

	result := model.UserPage{
		Users:       []model.PublicUser{},
		TotalUsers:  total,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
	}

	// pages past the end are empty, and (page-1)*limit must not overflow
	if page-1 > math.MaxInt/limit || (page-1)*limit >= total {
		return result, nil
	}

	users, err := a.userStore.ListNonAdmin(ctx, (page-1)*limit, limit)
	if err != nil {
		a.logger.Error("Admin service: failed to list users",
			"page", page,
			"limit", limit,
			"error", err.Error())
		return model.UserPage{}, fmt.Errorf("failed to list users: %w", err)
	}

	for _, u := range users {
		result.Users = append(result.Users, u.Public())
	}

	return result, nil
}

func (a *Admin) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	user.IsActive = active
	if _, err := a.userStore.Save(ctx, user); err != nil {
		a.logger.Error("Admin service: failed to save user",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	a.logger.Info("Admin service: user activation changed",
		"user_id", userID,
		"active", active)

	return nil
}
