package trend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler exposes the trend analysis endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a trend HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers trend routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients/{clientID}/trend", h.analyze)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || clientID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid client id")
		return
	}
	startYear, endYear, err := yearWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	analysis, err := h.service.Analyze(r.Context(), clientID, startYear, endYear)
	if err != nil {
		h.logger.Warn("trend analysis", slog.Any("error", err), slog.Int64("client_id", clientID))
		switch {
		case errors.Is(err, shared.ErrClientRequired):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func yearWindow(r *http.Request) (int, int, error) {
	currentYear := time.Now().Year()
	start, end := currentYear-2, currentYear
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 2200 {
			return 0, 0, fmt.Errorf("invalid year %q", raw)
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 || parsed > 2200 {
			return 0, 0, fmt.Errorf("invalid year %q", raw)
		}
		end = parsed
	}
	return start, end, nil
}
