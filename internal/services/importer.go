package services

import (
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/fatturapa"
	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/schedule"
)

// File statuses reported per uploaded XML.
const (
	FileImported = "imported"
	FileSkipped  = "skipped"
	FileRejected = "error"
)

// ImportFile is one uploaded XML document.
type ImportFile struct {
	Name    string
	Content io.Reader
}

// FileResult is the per-file outcome of an import run. A failed file never
// blocks the rest of the batch.
type FileResult struct {
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Kind       string `json:"kind,omitempty"`
	DocumentID uint   `json:"document_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ImportService turns FatturaPA files into documents with schedules.
type ImportService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{DB: db, log: logger.WithComponent("import")}
}

// Import processes a batch of XML files for the company identified by
// companyVAT. Explicit payment terms found in the XML are stored as-is (the
// allocator is not involved); invoices without terms get a single default
// installment due at the end of the following month. Documents already
// present under their natural key are skipped, not overwritten.
func (s *ImportService) Import(companyVAT string, files []ImportFile) (models.ImportBatch, []FileResult) {
	batch := models.ImportBatch{ID: uuid.New(), FileCount: len(files)}
	results := make([]FileResult, 0, len(files))

	for _, f := range files {
		res := s.importOne(companyVAT, f)
		switch res.Status {
		case FileImported:
			batch.Imported++
		case FileSkipped:
			batch.Skipped++
		default:
			batch.Rejected++
		}
		results = append(results, res)
	}

	if err := s.DB.Create(&batch).Error; err != nil {
		s.log.Error().Err(err).Msg("import batch record not saved")
	}
	return batch, results
}

func (s *ImportService) importOne(companyVAT string, f ImportFile) FileResult {
	res := FileResult{Filename: f.Name, Status: FileRejected}

	inv, err := fatturapa.Parse(f.Content)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	kind, err := fatturapa.Classify(inv, companyVAT)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	res.Kind = kind

	counterpartyName, counterpartyVAT := inv.Counterparty(kind)
	var existing int64
	s.DB.Model(&models.Document{}).
		Where("kind = ? AND number = ? AND document_date = ? AND counterparty_vat = ?",
			kind, inv.Number, inv.DocumentDate, counterpartyVAT).
		Count(&existing)
	if existing > 0 {
		res.Status = FileSkipped
		res.Message = "documento già presente"
		return res
	}

	doc := models.Document{
		Kind:             kind,
		Number:           inv.Number,
		DocumentDate:     inv.DocumentDate,
		CounterpartyVAT:  counterpartyVAT,
		CounterpartyName: counterpartyName,
		TotalAmount:      inv.Total,
		Installments:     s.termsFor(inv, kind),
	}
	if err := s.DB.Create(&doc).Error; err != nil {
		res.Message = err.Error()
		return res
	}

	res.Status = FileImported
	res.DocumentID = doc.ID
	if !schedule.Congruent(doc.TotalAmount, doc.Installments) {
		res.Message = schedule.AnomalyMessage(doc.Number, doc.TotalAmount, schedule.ConfiguredTotal(doc.Installments))
	}
	s.log.Info().Str("file", f.Name).Str("kind", kind).Str("numero", inv.Number).Msg("invoice imported")
	return res
}

// termsFor maps the XML payment details onto installments. When the file
// carries none, the whole total falls due at the default date.
func (s *ImportService) termsFor(inv *fatturapa.Invoice, kind string) []models.Installment {
	if len(inv.Terms) == 0 {
		return []models.Installment{{
			DueDate:     fatturapa.DefaultDueDate(inv.DocumentDate),
			Amount:      inv.Total,
			CashAccount: models.CashAccountUnspecified,
			Notes:       "Rata 1 di 1",
		}}
	}

	terms := make([]models.Installment, 0, len(inv.Terms))
	for _, t := range inv.Terms {
		cassa := models.CashAccountUnspecified
		if kind == models.KindInvoiceIssued {
			// Beneficiary account information only makes sense on our side.
			cassa = fatturapa.CashAccountFor(t)
		}
		terms = append(terms, models.Installment{
			DueDate:     t.DueDate,
			Amount:      t.Amount,
			CashAccount: cassa,
		})
	}
	return terms
}
