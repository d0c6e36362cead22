package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/apperrors"
	"github.com/dtroode/accounts-server/internal/logger"
	"github.com/dtroode/accounts-server/internal/model"
)

// AdminService defines account administration.
type AdminService interface {
	ListUsers(ctx context.Context, page, limit int) (model.UserPage, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
}

type listUsersResponse struct {
	Message     string             `json:"message"`
	Users       []model.PublicUser `json:"users"`
	TotalUsers  int                `json:"totalUsers"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
}

// Admin handles the /api/admin endpoints.
type Admin struct {
	adminService AdminService
	logger       *logger.Logger
}

func NewAdmin(adminService AdminService, logger *logger.Logger) *Admin {
	return &Admin{
		adminService: adminService,
		logger:       logger,
	}
}

// ListUsers reads page and limit from the query. Missing or non-numeric
// values are passed as zero so the service applies its defaults.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")

	result, err := h.adminService.ListUsers(r.Context(), page, limit)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, listUsersResponse{
		Message:     "Users fetched successfully",
		Users:       result.Users,
		TotalUsers:  result.TotalUsers,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
	})
}

func (h *Admin) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "User activated successfully")
}

func (h *Admin) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "User deactivated successfully")
}

func (h *Admin) setActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.logger, apperrors.NewErrUserNotFound())
		return
	}

	if err := h.adminService.SetActive(r.Context(), userID, active); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	response.Text(w, http.StatusOK, message)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
