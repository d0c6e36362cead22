package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/password"
)

// AuthPolicy contains registration rules.
type AuthPolicy struct {
	// AllowRoleSelect lets registrants choose their own role. When false,
	// every self-registered account gets model.RoleUser.
	AllowRoleSelect bool
}

type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	policy       AuthPolicy
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	policy AuthPolicy,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: NewTokenService(tokenManager, logger),
		policy:       policy,
		logger:       logger,
		now:          time.Now,
	}
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.SessionResult, error) {
	email := model.NormalizeEmail(params.Email)
	fullName := strings.TrimSpace(params.FullName)

	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	role := params.Role
	if !a.policy.AllowRoleSelect {
		if role != "" && role != model.RoleUser {
			a.logger.Warn("Auth service: requested role ignored, self-registration is limited to user",
				"email", email,
				"role", role)
		}
		role = model.RoleUser
	}

	if fullName == "" || email == "" || params.Password == "" || role == "" {
		return model.SessionResult{}, apperrors.NewErrValidation("All fields are required")
	}
	if err := validateEmail(email); err != nil {
		return model.SessionResult{}, err
	}
	if !role.Valid() {
		return model.SessionResult{}, apperrors.NewErrValidation("Invalid role")
	}

	user, err := a.createUser(ctx, fullName, email, params.Password, role)
	if err != nil {
		return model.SessionResult{}, err
	}

	token, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"user_id", user.ID,
		"role", user.Role)

	return model.SessionResult{User: user.Public(), Token: token}, nil
}

func (a *Auth) Login(ctx context.Context, email, plain string) (model.SessionResult, error) {
	email = model.NormalizeEmail(email)

	a.logger.Debug("Auth service: starting user login",
		"email", email)

	if email == "" || plain == "" {
		return model.SessionResult{}, apperrors.NewErrInvalidCredentials()
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionResult{}, apperrors.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.SessionResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.IsActive {
		a.logger.Info("Auth service: login rejected for deactivated user",
			"user_id", user.ID)
		return model.SessionResult{}, apperrors.NewErrAccountDeactivated()
	}

	ok, err := a.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.SessionResult{}, apperrors.NewErrInvalidCredentials()
	}

	token, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return model.SessionResult{User: user.Public(), Token: token}, nil
}

// Logout acknowledges a logout. Sessions are not stored server-side, so
// the caller only has to drop its token.
func (a *Auth) Logout(ctx context.Context) error {
	return nil
}

func (a *Auth) CurrentUser(ctx context.Context, token string) (model.PublicUser, error) {
	if token == "" {
		return model.PublicUser{}, apperrors.NewErrUnauthorized()
	}

	userID, err := a.tokenService.GetUserID(ctx, token)
	if err != nil {
		return model.PublicUser{}, apperrors.NewErrUnauthorized()
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, apperrors.NewErrUserNotFound()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.PublicUser{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user.Public(), nil
}

// CreateAdmin provisions an admin account. It is not reachable over HTTP.
func (a *Auth) CreateAdmin(ctx context.Context, fullName, email, plain string) (model.PublicUser, error) {
	email = model.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	if fullName == "" || email == "" || plain == "" {
		return model.PublicUser{}, apperrors.NewErrValidation("All fields are required")
	}
	if err := validateEmail(email); err != nil {
		return model.PublicUser{}, err
	}

	user, err := a.createUser(ctx, fullName, email, plain, model.RoleAdmin)
	if err != nil {
		return model.PublicUser{}, err
	}

	a.logger.Info("Auth service: admin provisioned",
		"user_id", user.ID)

	return user.Public(), nil
}

// createUser enforces email uniqueness, hashes the password and stores an
// active account.
func (a *Auth) createUser(ctx context.Context, fullName, email, plain string, role model.Role) (model.User, error) {
	_, err := a.userStore.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.User{}, apperrors.NewErrEmailIsTaken(email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return model.User{}, apperrors.NewErrValidation("Password is too long")
		}
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// the unique index decides when two registrations race past the lookup
		if errors.Is(err, model.ErrDuplicateEmail) {
			a.logger.Info("Auth service: user already exists",
				"email", email)
			return model.User{}, apperrors.NewErrEmailIsTaken(email)
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
