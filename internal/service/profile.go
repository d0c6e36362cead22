package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/password"
)

// Profile serves self-service operations of an authenticated account.
type Profile struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	logger    *logger.Logger
}

func NewProfile(userStore model.UserStore, hasher model.PasswordHasher, logger *logger.Logger) *Profile {
	return &Profile{
		userStore: userStore,
		hasher:    hasher,
		logger:    logger,
	}
}

func (p *Profile) GetOwnProfile(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	user, err := p.getUser(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (p *Profile) UpdateOwnProfile(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) error {
	if params.Password == "" {
		return apperrors.NewErrValidation("Password is required")
	}

	user, err := p.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := p.confirmPassword(params.Password, user); err != nil {
		return err
	}

	if fullName := strings.TrimSpace(params.FullName); fullName != "" {
		user.FullName = fullName
	}

	if email := model.NormalizeEmail(params.Email); email != "" && email != user.Email {
		if err := validateEmail(email); err != nil {
			return err
		}

		other, err := p.userStore.GetByEmail(ctx, email)
		if err == nil && other.ID != user.ID {
			return apperrors.NewErrEmailIsTaken(email)
		}
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("failed to get user by email: %w", err)
		}
		user.Email = email
	}

	if _, err := p.userStore.Save(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return apperrors.NewErrEmailIsTaken(user.Email)
		}
		p.logger.Error("Profile service: failed to save user",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	p.logger.Info("Profile service: profile updated",
		"user_id", userID)

	return nil
}

func (p *Profile) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperrors.NewErrValidation("All fields are required")
	}

	user, err := p.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := p.confirmPassword(oldPassword, user); err != nil {
		return err
	}

	same, err := p.hasher.Verify(newPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if same {
		return apperrors.NewErrSamePassword()
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return apperrors.NewErrValidation("Password is too long")
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if _, err := p.userStore.Save(ctx, user); err != nil {
		p.logger.Error("Profile service: failed to save password",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	p.logger.Info("Profile service: password changed",
		"user_id", userID)

	return nil
}

func (p *Profile) getUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := p.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// confirmPassword is the step-up check every profile mutation requires.
func (p *Profile) confirmPassword(plain string, user model.User) error {
	ok, err := p.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return apperrors.NewErrInvalidCredentials()
	}
	return nil
}
