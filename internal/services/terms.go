package services

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/schedule"
)

// ErrNoInstallments is returned when an auto-split produces nothing to save.
var ErrNoInstallments = errors.New("nessuna rata da salvare")

// ValidationError carries the user-facing messages of a failed pre-save
// congruency gate. It is a validation outcome, not a fault: the caller
// blocks the save and shows the messages.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

// TermsService owns the lifecycle of a document's installment schedule.
type TermsService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewTermsService(db *gorm.DB) *TermsService {
	return &TermsService{DB: db, log: logger.WithComponent("terms")}
}

// ReplaceSchedule swaps the whole installment set of a document in one
// transaction, gated on validation against the document total. There is no
// incremental merge: the prior batch is discarded entirely.
func (s *TermsService) ReplaceSchedule(docID uint, terms []models.Installment) error {
	var doc models.Document
	if err := s.DB.First(&doc, docID).Error; err != nil {
		return err
	}
	if msgs := schedule.Validate(terms, doc.TotalAmount); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		for i := range terms {
			terms[i].ID = 0
			terms[i].DocumentID = docID
		}
		return tx.Create(&terms).Error
	})
	if err == nil {
		s.log.Info().Uint("document_id", docID).Int("terms", len(terms)).Msg("schedule replaced")
	}
	return err
}

// AutoSplit regenerates a document's schedule as count equal installments
// spaced intervalDays apart, anchored on the document date, and persists it.
func (s *TermsService) AutoSplit(docID uint, count, intervalDays int) ([]models.Installment, error) {
	var doc models.Document
	if err := s.DB.First(&doc, docID).Error; err != nil {
		return nil, err
	}
	if intervalDays <= 0 {
		intervalDays = schedule.DefaultIntervalDays
	}
	terms := schedule.Split(doc.TotalAmount, count, doc.DocumentDate, intervalDays)
	if len(terms) == 0 {
		return nil, ErrNoInstallments
	}
	if err := s.ReplaceSchedule(docID, terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// List returns a document's schedule, due-date ascending.
func (s *TermsService) List(docID uint) ([]models.Installment, error) {
	var terms []models.Installment
	err := s.DB.Where("document_id = ?", docID).Order("due_date asc, id asc").Find(&terms).Error
	return terms, err
}

// MarkPaid records the payment date on a single installment.
func (s *TermsService) MarkPaid(installmentID uint, paidOn time.Time) (models.Installment, error) {
	var term models.Installment
	if err := s.DB.First(&term, installmentID).Error; err != nil {
		return term, err
	}
	term.PaymentDate = &paidOn
	if err := s.DB.Save(&term).Error; err != nil {
		return term, err
	}
	return term, nil
}

// ScanAnomalies sweeps every stored document and reports the ones whose
// installments no longer add up exactly to the declared total, keyed by
// document number. Exact decimal equality, no tolerance: this is the audit
// over data already at rest, not the interactive editing check.
func (s *TermsService) ScanAnomalies() (map[string]string, error) {
	var docs []models.Document
	if err := s.DB.Preload("Installments").Find(&docs).Error; err != nil {
		return nil, err
	}
	anomalies := make(map[string]string)
	for _, d := range docs {
		if !schedule.Congruent(d.TotalAmount, d.Installments) {
			anomalies[d.Number] = schedule.AnomalyMessage(d.Number, d.TotalAmount, schedule.ConfiguredTotal(d.Installments))
		}
	}
	return anomalies, nil
}
