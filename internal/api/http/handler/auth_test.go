package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/mocks"
	"github.com/dtroode/accounts-server/internal/model"
	"github.com/dtroode/accounts-server/internal/testutil"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	user := model.PublicUser{ID: uuid.New(), FullName: "Ann", Email: "ann@x.com", Role: model.RoleUser, IsActive: true}

	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, model.RegisterParams{
		FullName: "Ann",
		Email:    "ann@x.com",
		Password: "Secret123!",
		Role:     model.RoleUser,
	}).Return(model.SessionResult{User: user, Token: "tok"}, nil).Once()

	h := NewAuth(svc, CookieConfig{Secure: true}, testutil.MakeNoopLogger())

	body := `{"Fullname":"Ann","email":"ann@x.com","password":"Secret123!","role":"user"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"User registered successfully"`)
	assert.Contains(t, rec.Body.String(), `"token":"tok"`)
	assert.NotContains(t, rec.Body.String(), "password")

	c := sessionCookie(t, rec)
	require.NotNil(t, c)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
}

func TestAuth_Register_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		svcErr     error
		callSvc    bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed body",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Invalid request body"}`,
		},
		{
			name:       "duplicate email",
			body:       `{"Fullname":"Ann","email":"ann@x.com","password":"p","role":"user"}`,
			callSvc:    true,
			svcErr:     apperrors.NewErrEmailIsTaken("ann@x.com"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"User Already Exists"}`,
		},
		{
			name:       "internal failure",
			body:       `{"Fullname":"Ann","email":"ann@x.com","password":"p","role":"user"}`,
			callSvc:    true,
			svcErr:     assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Internal Server Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			if tt.callSvc {
				svc.On("Register", mock.Anything, mock.Anything).Return(model.SessionResult{}, tt.svcErr).Once()
			}

			h := NewAuth(svc, CookieConfig{}, testutil.MakeNoopLogger())
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Nil(t, sessionCookie(t, rec))
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		user := model.PublicUser{ID: uuid.New(), Email: "ann@x.com", Role: model.RoleUser, IsActive: true}
		svc := mocks.NewAuthService(t)
		svc.On("Login", mock.Anything, "ann@x.com", "Secret123!").Return(model.SessionResult{User: user, Token: "tok"}, nil).Once()

		h := NewAuth(svc, CookieConfig{}, testutil.MakeNoopLogger())
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ann@x.com","password":"Secret123!"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"Login successful"`)
		c := sessionCookie(t, rec)
		require.NotNil(t, c)
		assert.False(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("blocked", func(t *testing.T) {
		t.Parallel()

		svc := mocks.NewAuthService(t)
		svc.On("Login", mock.Anything, "ann@x.com", "Secret123!").Return(model.SessionResult{}, apperrors.NewErrAccountDeactivated()).Once()

		h := NewAuth(svc, CookieConfig{}, testutil.MakeNoopLogger())
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ann@x.com","password":"Secret123!"}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"User is Blocked by admin"}`, rec.Body.String())
	})
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Logout", mock.Anything).Return(nil).Once()

	h := NewAuth(svc, CookieConfig{Secure: true}, testutil.MakeNoopLogger())
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, rec.Body.String())
	c := sessionCookie(t, rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestAuth_Me(t *testing.T) {
	t.Parallel()

	user := model.PublicUser{ID: uuid.New(), Email: "ann@x.com"}

	svc := mocks.NewAuthService(t)
	svc.On("CurrentUser", mock.Anything, "tok").Return(user, nil).Once()

	h := NewAuth(svc, CookieConfig{}, testutil.MakeNoopLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"User found"`)
	assert.Contains(t, rec.Body.String(), user.ID.String())
}
