// Package http exposes the financial statement endpoints.
package http

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ledgerd/ledgerd/internal/platform/httpx"
	"github.com/ledgerd/ledgerd/internal/reports"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Handler wires statement endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *reports.Service
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the statement handler. Exports are rate limited
// per caller.
func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	limiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{logger: logger, service: service, rateLimit: limiter}
}

// MountRoutes registers statement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients/{clientID}/reports", func(r chi.Router) {
		r.Get("/trial-balance", h.trialBalance)
		r.Get("/income-statement", h.incomeStatement)
		r.Get("/balance-sheet", h.balanceSheet)
		r.Group(func(r chi.Router) {
			r.Use(h.rateLimit)
			r.Get("/trial-balance/export.csv", h.trialBalanceCSV)
		})
	})
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	clientID, period, err := statementParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	key := fmt.Sprintf("tb:%d:%s", clientID, period)
	result, err, _ := singleflightBuild(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		return h.service.TrialBalance(ctx, clientID, period)
	})
	if err != nil {
		h.respondError(w, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	clientID, period, err := statementParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	key := fmt.Sprintf("is:%d:%s", clientID, period)
	result, err, _ := singleflightBuild(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		return h.service.IncomeStatement(ctx, clientID, period)
	})
	if err != nil {
		h.respondError(w, "income statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	asOfRaw := r.URL.Query().Get("as_of")
	var key string
	var build func(context.Context) (interface{}, error)
	switch {
	case period != "":
		key = fmt.Sprintf("bs:%d:%s", clientID, period)
		build = func(ctx context.Context) (interface{}, error) {
			return h.service.PeriodEndBalanceSheet(ctx, clientID, period)
		}
	case asOfRaw != "":
		asOf, parseErr := time.Parse("2006-01-02", asOfRaw)
		if parseErr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fmt.Sprintf("invalid as_of date %q", asOfRaw))
			return
		}
		key = fmt.Sprintf("bs:%d:%s", clientID, asOfRaw)
		build = func(ctx context.Context) (interface{}, error) {
			return h.service.BalanceSheet(ctx, clientID, asOf)
		}
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "period or as_of required")
		return
	}
	result, err, _ := singleflightBuild(r.Context(), key, build)
	if err != nil {
		h.respondError(w, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) trialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	clientID, period, err := statementParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), clientID, period)
	if err != nil {
		h.respondError(w, "trial balance export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trial_balance_%d_%s.csv"`, clientID, period))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"account_code", "account_name", "debit", "credit", "balance"})
	for _, row := range tb.Rows {
		_ = cw.Write([]string{row.Code, row.Name, row.Debit.StringFixed(2), row.Credit.StringFixed(2), row.Balance.StringFixed(2)})
	}
	_ = cw.Write([]string{"TOTAL", "", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2), ""})
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("trial balance csv write", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	switch {
	case errors.Is(err, shared.ErrInvalidPeriodKey), errors.Is(err, shared.ErrClientRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func statementParams(r *http.Request) (int64, string, error) {
	clientID, err := clientIDParam(r)
	if err != nil {
		return 0, "", err
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		return 0, "", fmt.Errorf("period required")
	}
	return clientID, period, nil
}

func clientIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid client id")
	}
	return id, nil
}
