package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler exposes the posting API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a ledger HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers posting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}", func(r chi.Router) {
		r.Post("/postings", h.post)
		r.Get("/postings", h.listPeriod)
		r.Get("/accounts/{code}/ledger", h.accountLedger)
	})
}

type postingLineRequest struct {
	AccountCode string `json:"account_code" validate:"required"`
	AccountName string `json:"account_name" validate:"required"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description"`
}

type postingRequest struct {
	Date        string               `json:"date" validate:"required"`
	BatchID     string               `json:"batch_id" validate:"required,uuid4"`
	SourceDocID string               `json:"source_doc_id" validate:"omitempty,uuid4"`
	PostedBy    int64                `json:"posted_by"`
	Lines       []postingLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type entryResponse struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	AccountCode     string `json:"account_code"`
	AccountName     string `json:"account_name"`
	Debit           string `json:"debit"`
	Credit          string `json:"credit"`
	Description     string `json:"description,omitempty"`
	Period          string `json:"period"`
	SystemGenerated bool   `json:"system_generated"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req postingRequest
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
	entries, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Warn("post batch", slog.Any("error", err), slog.Int64("client_id", clientID))
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponses(entries))
}

func (h *Handler) listPeriod(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	summaries, err := h.service.PeriodSummaries(r.Context(), clientID, period)
	if err != nil {
		h.logger.Warn("period summaries", slog.Any("error", err))
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summariesPayload(summaries))
}

func (h *Handler) accountLedger(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	code := chi.URLParam(r, "code")
	from, to, err := dateWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rows, err := h.service.AccountLedger(r.Context(), clientID, code, from, to)
	if err != nil {
		h.logger.Warn("account ledger", slog.Any("error", err))
		respondLedgerError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, map[string]any{
			"entry":   toEntryResponse(row.Entry),
			"balance": row.Balance.StringFixed(2),
		})
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (req postingRequest) toInput(clientID int64) (PostingInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return PostingInput{}, fmt.Errorf("invalid date %q", req.Date)
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return PostingInput{}, fmt.Errorf("invalid batch id")
	}
	input := PostingInput{
		ClientID: clientID,
		Date:     date,
		BatchID:  batchID,
		PostedBy: req.PostedBy,
	}
	if req.SourceDocID != "" {
		docID, err := uuid.Parse(req.SourceDocID)
		if err != nil {
			return PostingInput{}, fmt.Errorf("invalid source doc id")
		}
		input.SourceDocID = &docID
	}
	for idx, line := range req.Lines {
		debit, err := parseAmount(line.Debit)
		if err != nil {
			return PostingInput{}, fmt.Errorf("line %d debit: %w", idx, err)
		}
		credit, err := parseAmount(line.Credit)
		if err != nil {
			return PostingInput{}, fmt.Errorf("line %d credit: %w", idx, err)
		}
		input.Lines = append(input.Lines, PostingLineInput{
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       debit,
			Credit:      credit,
			Description: line.Description,
		})
	}
	return input, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q is negative", raw)
	}
	return amount, nil
}

func clientIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id")
	}
	return id, nil
}

func dateWindow(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", raw)
		}
		to = parsed
	}
	return from, to, nil
}

func summariesPayload(summaries []AccountSummary) []map[string]any {
	out := make([]map[string]any, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, map[string]any{
			"code":          s.Code,
			"name":          s.Name,
			"type":          s.Type,
			"total_debit":   s.TotalDebit.StringFixed(2),
			"total_credit":  s.TotalCredit.StringFixed(2),
			"balance":       s.Balance.StringFixed(2),
			"name_conflict": s.NameConflict,
		})
	}
	return out
}

func toEntryResponses(entries []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:              e.ID,
		Date:            e.Date.Format("2006-01-02"),
		AccountCode:     e.AccountCode,
		AccountName:     e.AccountName,
		Debit:           e.Debit.StringFixed(2),
		Credit:          e.Credit.StringFixed(2),
		Description:     e.Description,
		Period:          e.PeriodKey,
		SystemGenerated: e.SystemGenerated,
	}
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooFewLines), errors.Is(err, ErrUnbalanced):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unbalanced Posting", err.Error())
	case errors.Is(err, ErrDuplicateBatch):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period Closed", err.Error())
	case errors.Is(err, shared.ErrInvalidPeriodKey):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
