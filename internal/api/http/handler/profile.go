package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// ProfileService defines self-service operations on the caller's account.
type ProfileService interface {
	GetOwnProfile(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	UpdateOwnProfile(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

type updateProfileRequest struct {
	FullName string `json:"Fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldpassword"`
	NewPassword string `json:"newpassword"`
}

// Profile handles the /api/user endpoints.
type Profile struct {
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewProfile(profileService ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Profile) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := h.profileService.GetOwnProfile(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, userResponse{
		Message: "User found",
		User:    user,
	})
}

func (h *Profile) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := response.Decode(r, &req); err != nil {
		handleError(w, r, h.logger, apperrors.NewErrValidation("Invalid request body"))
		return
	}

	err := h.profileService.UpdateOwnProfile(r.Context(), userID, model.UpdateProfileParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.Text(w, http.StatusOK, "User updated successfully")
}

func (h *Profile) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var req changePasswordRequest
	if err := response.Decode(r, &req); err != nil {
		handleError(w, r, h.logger, apperrors.NewErrValidation("Invalid request body"))
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.Text(w, http.StatusOK, "Password changed successfully")
}
