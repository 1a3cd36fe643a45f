package close

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler exposes the period registry and close/reopen API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a close HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers period routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/periods", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/current", h.current)
		r.Get("/{period}/readiness", h.readiness)
		r.Post("/{period}/close", h.close)
		r.Post("/{period}/reopen", h.reopen)
	})
}

type closeRequest struct {
	ActorID int64 `json:"actor_id" validate:"required,min=1"`
}

type reopenRequest struct {
	ActorID int64  `json:"actor_id" validate:"required,min=1"`
	Reason  string `json:"reason" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	periods, err := h.service.Periods(r.Context(), clientID)
	if err != nil {
		h.respondError(w, "list periods", err)
		return
	}
	httpx.JSON(w, http.StatusOK, periods)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	key, err := h.service.CurrentPeriod(r.Context(), clientID)
	if err != nil {
		h.respondError(w, "current period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"period": key})
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	period := chi.URLParam(r, "period")
	readiness, err := h.service.Readiness(r.Context(), clientID, period)
	if err != nil {
		h.respondError(w, "readiness", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"period":    period,
		"ready":     readiness.Ready(),
		"readiness": readiness,
	})
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req closeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Close(r.Context(), CloseInput{
		ClientID:  clientID,
		PeriodKey: chi.URLParam(r, "period"),
		ActorID:   req.ActorID,
	})
	if err != nil {
		h.respondError(w, "close period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req reopenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err = h.service.Reopen(r.Context(), ReopenInput{
		ClientID:  clientID,
		PeriodKey: chi.URLParam(r, "period"),
		ActorID:   req.ActorID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.respondError(w, "reopen period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(StatusOpen)})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	var notReady *NotReadyError
	switch {
	case errors.As(err, &notReady):
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"title":     "Not Ready",
			"detail":    notReady.Error(),
			"readiness": notReady.Readiness,
		})
	case errors.Is(err, ErrAlreadyClosed), errors.Is(err, ErrNotClosed), errors.Is(err, shared.ErrLockHeld):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrReasonRequired), errors.Is(err, shared.ErrInvalidPeriodKey), errors.Is(err, shared.ErrClientRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func clientIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id")
	}
	return id, nil
}
