package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/httpx"
	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/services"
)

// maxImportMemory bounds the in-memory part of a multipart upload (32 MiB).
const maxImportMemory = 32 << 20

// ImportHandler receives FatturaPA XML uploads.
type ImportHandler struct {
	DB  *gorm.DB
	Svc *services.ImportService
	log zerolog.Logger
}

func NewImportHandler(db *gorm.DB, svc *services.ImportService) *ImportHandler {
	return &ImportHandler{DB: db, Svc: svc, log: logger.WithComponent("import_api")}
}

// Upload: POST /import with multipart field "files". The company profile
// must be configured first, since classification hinges on its VAT number.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var profile models.CompanyProfile
	if err := h.DB.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusPreconditionFailed, "company_profile_missing", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "company_lookup_failed", nil)
		return
	}

	if err := r.ParseMultipartForm(maxImportMemory); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_files", nil)
		return
	}

	files := make([]services.ImportFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "unreadable_file", fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, services.ImportFile{Name: fh.Filename, Content: f})
	}

	batch, results := h.Svc.Import(profile.VATNumber, files)
	httpx.JSON(w, http.StatusOK, map[string]any{"batch": batch, "results": results})
}
