package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/httpx"
	"github.com/bassignana/kruscotto/internal/models"
)

// CompanyHandler manages the single company profile (anagrafica azienda).
type CompanyHandler struct {
	DB *gorm.DB
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler { return &CompanyHandler{DB: db} }

// Get: GET /company
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	var profile models.CompanyProfile
	if err := h.DB.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "company_profile_missing", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "company_lookup_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// Set: POST /company creates or updates the profile. One company per
// installation.
func (h *CompanyHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"ragione_sociale"`
		VATNumber string `json:"partita_iva"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.VATNumber = strings.TrimSpace(req.VATNumber)
	if req.VATNumber == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_vat_number", nil)
		return
	}

	var profile models.CompanyProfile
	err := h.DB.First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.CompanyProfile{Name: req.Name, VATNumber: req.VATNumber}
		if err := h.DB.Create(&profile).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "company_save_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, profile)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "company_lookup_failed", nil)
		return
	}

	if req.Name != "" {
		profile.Name = req.Name
	}
	profile.VATNumber = req.VATNumber
	if err := h.DB.Save(&profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "company_save_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
