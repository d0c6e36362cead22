package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dtroode/accounts-server/internal/api/http/middleware"
	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// AuthService defines registration, login and session lookup.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.SessionResult, error)
	Login(ctx context.Context, email, password string) (model.SessionResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context, token string) (model.PublicUser, error)
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
}

type registerRequest struct {
	FullName string `json:"Fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
	Token   string           `json:"token"`
}

type userResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	cookie      CookieConfig
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, cookie CookieConfig, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := response.Decode(r, &req); err != nil {
		handleError(w, r, h.logger, apperrors.NewErrValidation("Invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	result, err := h.authService.Register(r.Context(), model.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	response.JSON(w, http.StatusCreated, sessionResponse{
		Message: "User registered successfully",
		User:    result.User,
		Token:   result.Token,
	})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.Decode(r, &req); err != nil {
		handleError(w, r, h.logger, apperrors.NewErrValidation("Invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	response.JSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    result.User,
		Token:   result.Token,
	})
}

func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.clearSessionCookie(w)
	response.Text(w, http.StatusOK, "Logout successful")
}

func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.CurrentUser(r.Context(), middleware.TokenFromRequest(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, userResponse{
		Message: "User found",
		User:    user,
	})
}

func (h *Auth) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, h.sessionCookie(token, int(model.SessionTTL.Seconds())))
}

func (h *Auth) clearSessionCookie(w http.ResponseWriter) {
	cookie := h.sessionCookie("", -1)
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (h *Auth) sessionCookie(value string, maxAge int) *http.Cookie {
	// browsers drop SameSite=None cookies that are not Secure
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: sameSite,
	}
}
