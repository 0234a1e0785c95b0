package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.CompanyProfile{}, &models.CashAccount{}, &models.Document{}, &models.Installment{}, &models.ImportBatch{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedDocument(t *testing.T, db *gorm.DB, number, total string) models.Document {
	t.Helper()
	doc := models.Document{
		Kind:             models.KindInvoiceIssued,
		Number:           number,
		DocumentDate:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		CounterpartyVAT:  "09876543210",
		CounterpartyName: "Cliente SpA",
		TotalAmount:      decimal.RequireFromString(total),
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func testTerm(due time.Time, amount string) models.Installment {
	return models.Installment{
		DueDate:       due,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: "Bonifico",
		CashAccount:   "Banca Intesa",
	}
}

func TestReplaceScheduleHappyPath(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-001", "100.00")
	svc := NewTermsService(db)

	due := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	terms := []models.Installment{
		testTerm(due, "40.00"),
		testTerm(due.AddDate(0, 0, 30), "60.00"),
	}
	if err := svc.ReplaceSchedule(doc.ID, terms); err != nil {
		t.Fatalf("replace: %v", err)
	}

	saved, err := svc.List(doc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 terms got %d", len(saved))
	}
	if saved[0].Amount.StringFixed(2) != "40.00" || saved[1].Amount.StringFixed(2) != "60.00" {
		t.Fatalf("unexpected amounts: %s %s", saved[0].Amount, saved[1].Amount)
	}
}

func TestReplaceScheduleDiscardsPriorBatch(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-002", "100.00")
	svc := NewTermsService(db)

	due := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	if err := svc.ReplaceSchedule(doc.ID, []models.Installment{testTerm(due, "100.00")}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := svc.ReplaceSchedule(doc.ID, []models.Installment{
		testTerm(due, "50.00"), testTerm(due.AddDate(0, 0, 30), "50.00"),
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	var count int64
	db.Model(&models.Installment{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 2 {
		t.Fatalf("prior batch not discarded, %d installments in db", count)
	}
}

func TestReplaceScheduleBlocksIncongruentDraft(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-003", "100.00")
	svc := NewTermsService(db)

	due := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	err := svc.ReplaceSchedule(doc.ID, []models.Installment{testTerm(due, "90.00")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if len(verr.Messages) != 1 {
		t.Fatalf("expected 1 message got %v", verr.Messages)
	}

	// Nothing saved: the gate blocks persistence, it does not correct.
	var count int64
	db.Model(&models.Installment{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Fatalf("incongruent draft was persisted")
	}
}

func TestAutoSplitPersistsRemainderOnLast(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-004", "100.00")
	svc := NewTermsService(db)

	terms, err := svc.AutoSplit(doc.ID, 3, 30)
	if err != nil {
		t.Fatalf("autosplit: %v", err)
	}
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms got %d", len(terms))
	}

	saved, err := svc.List(doc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{}
	for _, s := range saved {
		got = append(got, s.Amount.StringFixed(2))
	}
	want := []string{"33.33", "33.33", "33.34"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("amounts %v want %v", got, want)
		}
	}
}

func TestAutoSplitZeroCount(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-005", "100.00")
	svc := NewTermsService(db)

	if _, err := svc.AutoSplit(doc.ID, 0, 30); !errors.Is(err, ErrNoInstallments) {
		t.Fatalf("expected ErrNoInstallments got %v", err)
	}
}

func TestMarkPaid(t *testing.T) {
	db := setupTestDB(t)
	doc := seedDocument(t, db, "2024-006", "50.00")
	svc := NewTermsService(db)

	due := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	if err := svc.ReplaceSchedule(doc.ID, []models.Installment{testTerm(due, "50.00")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	saved, _ := svc.List(doc.ID)

	paidOn := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	term, err := svc.MarkPaid(saved[0].ID, paidOn)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !term.Paid() || !term.PaymentDate.Equal(paidOn) {
		t.Fatalf("payment date not recorded: %+v", term)
	}
}

func TestScanAnomalies(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTermsService(db)
	due := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)

	good := seedDocument(t, db, "OK-1", "100.00")
	if err := svc.ReplaceSchedule(good.ID, []models.Installment{
		testTerm(due, "50.00"), testTerm(due.AddDate(0, 0, 30), "50.00"),
	}); err != nil {
		t.Fatalf("seed good schedule: %v", err)
	}

	// A cent of drift passes the tolerant save gate but must trip the audit.
	bad := seedDocument(t, db, "KO-1", "100.00")
	if err := svc.ReplaceSchedule(bad.ID, []models.Installment{testTerm(due, "99.99")}); err != nil {
		t.Fatalf("seed bad schedule: %v", err)
	}

	anomalies, err := svc.ScanAnomalies()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly got %d: %v", len(anomalies), anomalies)
	}
	msg, ok := anomalies["KO-1"]
	if !ok {
		t.Fatalf("anomaly not keyed by document number: %v", anomalies)
	}
	for _, fragment := range []string{"ANOMALIA", "100.00", "99.99"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("message %q missing %q", msg, fragment)
		}
	}
}
