package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler exposes the reconciliation scan endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a reconciliation HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reconciliation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients/{clientID}/reconciliation", h.scan)
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || clientID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid client id")
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "period required")
		return
	}
	report, err := h.service.Scan(r.Context(), clientID, period)
	if err != nil {
		h.logger.Warn("reconciliation scan", slog.Any("error", err), slog.Int64("client_id", clientID), slog.String("period", period))
		switch {
		case errors.Is(err, shared.ErrInvalidPeriodKey), errors.Is(err, shared.ErrClientRequired):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			httpx.RespondError(w, fmt.Errorf("reconcile: %w", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
