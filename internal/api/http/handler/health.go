package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dtroode/accounts-server/internal/api/http/response"
	"github.com/dtroode/accounts-server/internal/logger"
)

const healthTimeout = 2 * time.Second

// Pinger checks that the account store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

type Health struct {
	store  Pinger
	logger *logger.Logger
}

func NewHealth(store Pinger, logger *logger.Logger) *Health {
	return &Health{store: store, logger: logger}
}

func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: store ping failed",
			"error", err.Error())
		response.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	response.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
