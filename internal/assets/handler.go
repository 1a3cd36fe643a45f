package assets

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler exposes the asset register API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs an asset HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers asset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/assets", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{assetID}", h.get)
		r.Post("/depreciation-runs", h.runDepreciation)
	})
}

type createRequest struct {
	Name             string `json:"name" validate:"required"`
	Category         string `json:"category"`
	AcquisitionDate  string `json:"acquisition_date" validate:"required"`
	Cost             string `json:"cost" validate:"required"`
	Salvage          string `json:"salvage"`
	UsefulLifeMonths int    `json:"useful_life_months" validate:"required,min=1"`
}

type assetResponse struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	Category                string `json:"category,omitempty"`
	AcquisitionDate         string `json:"acquisition_date"`
	Cost                    string `json:"cost"`
	Salvage                 string `json:"salvage"`
	UsefulLifeMonths        int    `json:"useful_life_months"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	Status                  string `json:"status"`
}

type runRequest struct {
	Period  string `json:"period" validate:"required"`
	ActorID int64  `json:"actor_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput(clientID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	asset, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Warn("create asset", slog.Any("error", err), slog.Int64("client_id", clientID))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	assets, err := h.service.List(r.Context(), clientID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	assetID, err := strconv.ParseInt(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil || assetID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid asset id")
		return
	}
	asset, err := h.service.Get(r.Context(), clientID, assetID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssetResponse(asset))
}

func (h *Handler) runDepreciation(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req runRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.RunMonthly(r.Context(), clientID, req.Period, req.ActorID)
	if err != nil {
		h.logger.Warn("depreciation run", slog.Any("error", err), slog.Int64("client_id", clientID), slog.String("period", req.Period))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, runPayload(result))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAsset), errors.Is(err, shared.ErrInvalidPeriodKey):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrRunExists), errors.Is(err, ledger.ErrDuplicateBatch):
		httpx.Problem(w, http.StatusConflict, "Already Run", err.Error())
	case errors.Is(err, ErrAlreadyFullyDepreciated), errors.Is(err, ErrNotDepreciable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Not Depreciable", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (req createRequest) toInput(clientID int64) (CreateInput, error) {
	date, err := time.Parse("2006-01-02", req.AcquisitionDate)
	if err != nil {
		return CreateInput{}, fmt.Errorf("invalid acquisition date %q", req.AcquisitionDate)
	}
	cost, err := decimal.NewFromString(req.Cost)
	if err != nil {
		return CreateInput{}, fmt.Errorf("invalid cost %q", req.Cost)
	}
	salvage := decimal.Zero
	if req.Salvage != "" {
		salvage, err = decimal.NewFromString(req.Salvage)
		if err != nil {
			return CreateInput{}, fmt.Errorf("invalid salvage %q", req.Salvage)
		}
	}
	return CreateInput{
		ClientID:         clientID,
		Name:             req.Name,
		Category:         req.Category,
		AcquisitionDate:  date,
		Cost:             cost,
		Salvage:          salvage,
		UsefulLifeMonths: req.UsefulLifeMonths,
	}, nil
}

func toAssetResponse(a FixedAsset) assetResponse {
	return assetResponse{
		ID:                      a.ID,
		Name:                    a.Name,
		Category:                a.Category,
		AcquisitionDate:         a.AcquisitionDate.Format("2006-01-02"),
		Cost:                    a.Cost.StringFixed(2),
		Salvage:                 a.Salvage.StringFixed(2),
		UsefulLifeMonths:        a.UsefulLifeMonths,
		AccumulatedDepreciation: a.AccumulatedDepreciation.StringFixed(2),
		Status:                  string(a.Status),
	}
}

func runPayload(result RunResult) map[string]any {
	byCategory := make(map[string]string, len(result.ByCategory))
	for category, total := range result.ByCategory {
		byCategory[category] = total.StringFixed(2)
	}
	return map[string]any{
		"period":            result.Period,
		"assets_processed":  result.AssetsProcessed,
		"assets_skipped":    result.AssetsSkipped,
		"total_depreciated": result.TotalDepreciated.StringFixed(2),
		"by_category":       byCategory,
		"batch_id":          result.BatchID,
	}
}

func clientIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id")
	}
	return id, nil
}
