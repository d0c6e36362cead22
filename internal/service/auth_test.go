package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/accounts-server/internal/apperrors"
	servermocks "github.com/dtroode/accounts-server/internal/mocks"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/password"
	"github.com/dtroode/accounts-server/internal/testutil"
)

type authDeps struct {
	userStore *servermocks.UserStore
	hasher    *servermocks.PasswordHasher
	tokens    *servermocks.TokenManager
}

func newAuthWithMocks(t *testing.T, policy AuthPolicy) (*Auth, authDeps) {
	t.Helper()

	deps := authDeps{
		userStore: servermocks.NewUserStore(t),
		hasher:    servermocks.NewPasswordHasher(t),
		tokens:    servermocks.NewTokenManager(t),
	}
	a := NewAuth(deps.userStore, deps.hasher, deps.tokens, policy, testutil.MakeNoopLogger())
	return a, deps
}

func TestAuth_Register_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	deps.userStore.On("GetByEmail", mock.Anything, "alice@example.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "s3cret").Return("$2a$10$hash", nil).Once()
	deps.userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "alice@example.com" &&
			u.FullName == "Alice" &&
			u.PasswordHash == "$2a$10$hash" &&
			u.Role == model.RoleUser &&
			u.IsActive &&
			u.CreatedAt.Equal(fixed) &&
			u.ID != uuid.Nil
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()
	deps.tokens.On("Issue", mock.AnythingOfType("uuid.UUID")).Return("tok", nil).Once()

	res, err := a.Register(ctx, model.RegisterParams{
		FullName: " Alice ",
		Email:    "Alice@Example.com",
		Password: "s3cret",
		Role:     model.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, "Alice", res.User.FullName)
	assert.True(t, res.User.IsActive)
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  model.RegisterParams
		message string
	}{
		{
			name:    "missing name",
			params:  model.RegisterParams{Email: "a@b.co", Password: "p", Role: model.RoleUser},
			message: "All fields are required",
		},
		{
			name:    "missing email",
			params:  model.RegisterParams{FullName: "A", Password: "p", Role: model.RoleUser},
			message: "All fields are required",
		},
		{
			name:    "missing password",
			params:  model.RegisterParams{FullName: "A", Email: "a@b.co", Role: model.RoleUser},
			message: "All fields are required",
		},
		{
			name:    "missing role",
			params:  model.RegisterParams{FullName: "A", Email: "a@b.co", Password: "p"},
			message: "All fields are required",
		},
		{
			name:    "malformed email",
			params:  model.RegisterParams{FullName: "A", Email: "not-an-email", Password: "p", Role: model.RoleUser},
			message: "Invalid email",
		},
		{
			name:    "unknown role",
			params:  model.RegisterParams{FullName: "A", Email: "a@b.co", Password: "p", Role: "root"},
			message: "Invalid role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})

			_, err := a.Register(context.Background(), tt.params)
			require.Error(t, err)
			apiErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestAuth_Register_ExistingEmail(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
	deps.userStore.On("GetByEmail", mock.Anything, "taken@example.com").Return(model.User{ID: uuid.New()}, nil).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{
		FullName: "Bob",
		Email:    "taken@example.com",
		Password: "pw",
		Role:     model.RoleUser,
	})
	require.Error(t, err)
	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, apiErr.Kind)
	assert.Equal(t, "User Already Exists", apiErr.Message)
	deps.userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Register_UniqueConstraintRace(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
	deps.userStore.On("GetByEmail", mock.Anything, "race@example.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "pw").Return("hash", nil).Once()
	deps.userStore.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrDuplicateEmail).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{
		FullName: "Racer",
		Email:    "race@example.com",
		Password: "pw",
		Role:     model.RoleUser,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestAuth_Register_RoleForcedWhenSelectionDisabled(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: false})
	deps.userStore.On("GetByEmail", mock.Anything, "mallory@example.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "pw").Return("hash", nil).Once()
	deps.userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Role == model.RoleUser
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()
	deps.tokens.On("Issue", mock.Anything).Return("tok", nil).Once()

	res, err := a.Register(context.Background(), model.RegisterParams{
		FullName: "Mallory",
		Email:    "mallory@example.com",
		Password: "pw",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, res.User.Role)
}

func TestAuth_Register_PasswordTooLong(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
	deps.userStore.On("GetByEmail", mock.Anything, "long@example.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "pw").Return("", password.ErrTooLong).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{
		FullName: "Long",
		Email:    "long@example.com",
		Password: "pw",
		Role:     model.RoleUser,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAuth_Register_StoreError(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
	deps.userStore.On("GetByEmail", mock.Anything, "x@example.com").Return(model.User{}, assert.AnError).Once()

	_, err := a.Register(context.Background(), model.RegisterParams{
		FullName: "X",
		Email:    "x@example.com",
		Password: "pw",
		Role:     model.RoleUser,
	})
	require.ErrorIs(t, err, assert.AnError)
	_, isAPIError := apperrors.As(err)
	assert.False(t, isAPIError)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	active := model.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hash", Role: model.RoleUser, IsActive: true}
	blocked := active
	blocked.IsActive = false

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(d authDeps)
		wantKind apperrors.Kind
		wantMsg  string
		wantTok  string
	}{
		{
			name:     "success",
			email:    "A@example.com",
			password: "right",
			setup: func(d authDeps) {
				d.userStore.On("GetByEmail", mock.Anything, "a@example.com").Return(active, nil).Once()
				d.hasher.On("Verify", "right", "hash").Return(true, nil).Once()
				d.tokens.On("Issue", active.ID).Return("tok", nil).Once()
			},
			wantTok: "tok",
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "right",
			setup: func(d authDeps) {
				d.userStore.On("GetByEmail", mock.Anything, "nobody@example.com").Return(model.User{}, model.ErrNotFound).Once()
			},
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "wrong password",
			email:    "a@example.com",
			password: "wrong",
			setup: func(d authDeps) {
				d.userStore.On("GetByEmail", mock.Anything, "a@example.com").Return(active, nil).Once()
				d.hasher.On("Verify", "wrong", "hash").Return(false, nil).Once()
			},
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "deactivated account checked before password",
			email:    "a@example.com",
			password: "wrong",
			setup: func(d authDeps) {
				d.userStore.On("GetByEmail", mock.Anything, "a@example.com").Return(blocked, nil).Once()
			},
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "User is Blocked by admin",
		},
		{
			name:     "empty credentials",
			email:    "",
			password: "",
			setup:    func(authDeps) {},
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: true})
			tt.setup(deps)

			res, err := a.Login(context.Background(), tt.email, tt.password)
			if tt.wantMsg != "" {
				require.Error(t, err)
				apiErr, ok := apperrors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantKind, apiErr.Kind)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTok, res.Token)
			assert.Equal(t, active.ID, res.User.ID)
		})
	}
}

func TestAuth_Login_StoreError(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{})
	deps.userStore.On("GetByEmail", mock.Anything, "a@example.com").Return(model.User{}, assert.AnError).Once()

	_, err := a.Login(context.Background(), "a@example.com", "pw")
	require.ErrorIs(t, err, assert.AnError)
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	a, _ := newAuthWithMocks(t, AuthPolicy{})
	assert.NoError(t, a.Logout(context.Background()))
}

func TestAuth_CurrentUser(t *testing.T) {
	t.Parallel()

	user := model.User{ID: uuid.New(), FullName: "Alice", Email: "a@example.com", PasswordHash: "hash", Role: model.RoleUser, IsActive: true}

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()

		a, deps := newAuthWithMocks(t, AuthPolicy{})
		deps.tokens.On("Verify", "tok").Return(user.ID, nil).Once()
		deps.userStore.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()

		got, err := a.CurrentUser(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, user.Public(), got)
	})

	t.Run("absent token", func(t *testing.T) {
		t.Parallel()

		a, _ := newAuthWithMocks(t, AuthPolicy{})

		_, err := a.CurrentUser(context.Background(), "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()

		a, deps := newAuthWithMocks(t, AuthPolicy{})
		deps.tokens.On("Verify", "forged").Return(uuid.Nil, model.ErrTokenInvalid).Once()

		_, err := a.CurrentUser(context.Background(), "forged")
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})

	t.Run("user removed", func(t *testing.T) {
		t.Parallel()

		a, deps := newAuthWithMocks(t, AuthPolicy{})
		deps.tokens.On("Verify", "tok").Return(user.ID, nil).Once()
		deps.userStore.On("GetByID", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.CurrentUser(context.Background(), "tok")
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestAuth_CreateAdmin(t *testing.T) {
	t.Parallel()

	a, deps := newAuthWithMocks(t, AuthPolicy{AllowRoleSelect: false})
	deps.userStore.On("GetByEmail", mock.Anything, "root@example.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.hasher.On("Hash", "pw").Return("hash", nil).Once()
	deps.userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Role == model.RoleAdmin && u.IsActive
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()

	got, err := a.CreateAdmin(context.Background(), "Root", "root@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
}
