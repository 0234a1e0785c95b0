package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
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

const dateLayout = "2006-01-02"

// DocumentHandler exposes CRUD over invoices and movements.
type DocumentHandler struct {
	DB  *gorm.DB
	Svc *services.TermsService
	log zerolog.Logger
}

func NewDocumentHandler(db *gorm.DB, svc *services.TermsService) *DocumentHandler {
	return &DocumentHandler{DB: db, Svc: svc, log: logger.WithComponent("documents")}
}

// List: GET /documents?kind=&limit=&page=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}

	dbq := h.DB
	if kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind != "" {
		if !models.ValidKind(kind) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_kind", nil)
			return
		}
		dbq = dbq.Where("kind = ?", kind)
	}

	var total int64
	dbq.Model(&models.Document{}).Count(&total)
	var docs []models.Document
	if err := dbq.Preload("Installments").Order("document_date desc, id desc").Limit(limit).Offset(offset).Find(&docs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_documents", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs, "total": total, "limit": limit, "offset": offset})
}

type documentReq struct {
	ID              uint   `json:"id"`
	Kind            string `json:"kind"`
	Number          string `json:"numero"`
	DocumentDate    string `json:"data_documento"`
	Counterparty    string `json:"controparte"`
	CounterpartyVAT string `json:"partita_iva_controparte"`
	TotalAmount     string `json:"importo_totale"`
	AutoSplit       *struct {
		Count        int `json:"num_rate"`
		IntervalDays int `json:"intervallo_giorni"`
	} `json:"auto_split,omitempty"`
}

// Create: POST /documents. An optional auto_split block generates and
// stores the installment schedule in the same transaction.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req documentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !models.ValidKind(req.Kind) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_kind", nil)
		return
	}
	if strings.TrimSpace(req.Number) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_number", nil)
		return
	}
	docDate, err := time.Parse(dateLayout, req.DocumentDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_document_date", nil)
		return
	}
	total, err := money.Parse(req.TotalAmount)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_total_amount", err.Error())
		return
	}

	doc := models.Document{
		Kind:             req.Kind,
		Number:           req.Number,
		DocumentDate:     docDate,
		CounterpartyName: req.Counterparty,
		CounterpartyVAT:  req.CounterpartyVAT,
		TotalAmount:      total,
	}
	if req.AutoSplit != nil {
		interval := req.AutoSplit.IntervalDays
		if interval <= 0 {
			interval = schedule.DefaultIntervalDays
		}
		doc.Installments = schedule.Split(total, req.AutoSplit.Count, docDate, interval)
	}

	if err := h.DB.Create(&doc).Error; err != nil {
		h.log.Error().Err(err).Str("numero", req.Number).Msg("document create failed")
		httpx.JSONError(w, http.StatusConflict, "document_create_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// Update: POST /documents/update. Changing the total does not touch the
// stored schedule; the response reports whether the two still agree so the
// client can prompt for a regeneration.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req documentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var doc models.Document
	if err := h.DB.Preload("Installments").First(&doc, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "document_lookup_failed", nil)
		return
	}

	if req.Number != "" {
		doc.Number = req.Number
	}
	if req.Counterparty != "" {
		doc.CounterpartyName = req.Counterparty
	}
	if req.CounterpartyVAT != "" {
		doc.CounterpartyVAT = req.CounterpartyVAT
	}
	if req.DocumentDate != "" {
		docDate, err := time.Parse(dateLayout, req.DocumentDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_document_date", nil)
			return
		}
		doc.DocumentDate = docDate
	}
	if req.TotalAmount != "" {
		total, err := money.Parse(req.TotalAmount)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_total_amount", err.Error())
			return
		}
		doc.TotalAmount = total
	}

	if err := h.DB.Omit("Installments").Save(&doc).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "document_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"document":   doc,
		"congruente": schedule.Congruent(doc.TotalAmount, doc.Installments),
	})
}

// Delete: POST /documents/delete. Cascades to the document's installments.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var doc models.Document
	if err := h.DB.First(&doc, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "document_lookup_failed", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "document_delete_failed", nil)
		return
	}
	h.log.Info().Uint("id", doc.ID).Str("numero", doc.Number).Msg("document deleted")
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": doc.ID})
}
