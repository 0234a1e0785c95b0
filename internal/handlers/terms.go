package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/httpx"
	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/money"
	"github.com/bassignana/kruscotto/internal/schedule"
	"github.com/bassignana/kruscotto/internal/services"
)

// TermsHandler exposes a document's installment schedule.
type TermsHandler struct {
	Svc *services.TermsService
	log zerolog.Logger
}

func NewTermsHandler(svc *services.TermsService) *TermsHandler {
	return &TermsHandler{Svc: svc, log: logger.WithComponent("terms_api")}
}

// List: GET /documents/terms?document_id=
func (h *TermsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("document_id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_document_id", nil)
		return
	}
	terms, err := h.Svc.List(uint(id))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_terms", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": terms, "total": len(terms)})
}

type termReq struct {
	DueDate       string `json:"data_scadenza"`
	Amount        string `json:"importo"`
	PaymentDate   string `json:"data_pagamento,omitempty"`
	PaymentMethod string `json:"modalita_pagamento"`
	CashAccount   string `json:"cassa"`
	Notes         string `json:"notes"`
}

type replaceReq struct {
	DocumentID uint      `json:"document_id"`
	Terms      []termReq `json:"terms"`
}

// Replace: POST /documents/terms. Validates the draft schedule against the
// document total (one-cent tolerance for in-flight edits) and, when it
// passes, swaps the stored batch atomically. Validation problems come back
// as 422 with the full message list; nothing is saved in that case.
func (h *TermsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	terms := make([]models.Installment, 0, len(req.Terms))
	for i, t := range req.Terms {
		term, err := t.toModel()
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_term", map[string]any{"index": i, "detail": err.Error()})
			return
		}
		terms = append(terms, term)
	}

	if err := h.Svc.ReplaceSchedule(req.DocumentID, terms); err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			httpx.JSONError(w, http.StatusUnprocessableEntity, "schedule_not_congruent", verr.Messages)
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "schedule_save_failed", nil)
		}
		return
	}

	saved, err := h.Svc.List(req.DocumentID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_terms", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": saved, "total": len(saved)})
}

type splitReq struct {
	DocumentID   uint `json:"document_id"`
	Count        int  `json:"num_rate"`
	IntervalDays int  `json:"intervallo_giorni"`
	Save         bool `json:"salva"`
}

// Split: POST /documents/terms/split. Computes the equal-split schedule for
// a document; with "salva" it also persists, otherwise it is a preview.
func (h *TermsHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req splitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if req.Save {
		terms, err := h.Svc.AutoSplit(req.DocumentID, req.Count, req.IntervalDays)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoInstallments):
				httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Installment{}, "total": 0})
			case errors.Is(err, gorm.ErrRecordNotFound):
				httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			default:
				httpx.JSONError(w, http.StatusInternalServerError, "schedule_save_failed", nil)
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": terms, "total": len(terms)})
		return
	}

	var doc models.Document
	if err := h.Svc.DB.First(&doc, req.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "document_lookup_failed", nil)
		return
	}
	interval := req.IntervalDays
	if interval <= 0 {
		interval = schedule.DefaultIntervalDays
	}
	terms := schedule.Split(doc.TotalAmount, req.Count, doc.DocumentDate, interval)
	httpx.JSON(w, http.StatusOK, map[string]any{"items": terms, "total": len(terms)})
}

// Pay: POST /installments/pay records a payment date on one installment.
func (h *TermsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          uint   `json:"id"`
		PaymentDate string `json:"data_pagamento"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	paidOn, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payment_date", nil)
		return
	}
	term, err := h.Svc.MarkPaid(req.ID, paidOn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "installment_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "installment_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, term)
}

func (t termReq) toModel() (models.Installment, error) {
	due, err := time.Parse(dateLayout, t.DueDate)
	if err != nil {
		return models.Installment{}, err
	}
	amount, err := money.Parse(t.Amount)
	if err != nil {
		return models.Installment{}, err
	}
	term := models.Installment{
		DueDate:       due,
		Amount:        amount,
		PaymentMethod: t.PaymentMethod,
		CashAccount:   t.CashAccount,
		Notes:         t.Notes,
	}
	if t.PaymentDate != "" {
		paid, err := time.Parse(dateLayout, t.PaymentDate)
		if err != nil {
			return models.Installment{}, err
		}
		term.PaymentDate = &paid
	}
	return term, nil
}
