package handlers

import (
	"net/http"
	"time"

	"github.com/bassignana/kruscotto/internal/httpx"
	"github.com/bassignana/kruscotto/internal/services"
)

// CashflowHandler serves the 12-month projection and the anomaly audit.
type CashflowHandler struct {
	Cashflow *services.CashflowService
	Terms    *services.TermsService
}

func NewCashflowHandler(cf *services.CashflowService, terms *services.TermsService) *CashflowHandler {
	return &CashflowHandler{Cashflow: cf, Terms: terms}
}

// Report: GET /cashflow
func (h *CashflowHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.Cashflow.Report(time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "cashflow_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Anomalies: GET /anomalies — the exact-mode congruency sweep over every
// stored document.
func (h *CashflowHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	anomalies, err := h.Terms.ScanAnomalies()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "scan_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"anomalies": anomalies, "total": len(anomalies)})
}
