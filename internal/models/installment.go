package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment metadata choices offered in forms. Free text is still accepted on
// import, where the XML may carry an arbitrary bank name.
var (
	PaymentMethods      = []string{"Bonifico", "Contanti", "Assegno", "Carta di credito", "RID", "Altro"}
	DefaultCashAccounts = []string{"Banca Intesa", "Cassa Contanti", "Cassa Generica", "INTESA SAN PAOLO"}
)

// CashAccountUnspecified marks imported terms whose XML carries no
// beneficiary account information.
const CashAccountUnspecified = "non specificata"

// Installment is one scheduled partial payment (rata) against a document's
// total. Installments only exist as part of a document's schedule; replacing
// a schedule discards and re-creates the whole batch.
type Installment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DocumentID    uint            `gorm:"not null;index" json:"document_id"`
	DueDate       time.Time       `gorm:"not null" json:"data_scadenza"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"importo"`
	PaymentDate   *time.Time      `json:"data_pagamento,omitempty"`
	PaymentMethod string          `json:"modalita_pagamento"`
	CashAccount   string          `json:"cassa"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Paid reports whether a payment date has been recorded.
func (i Installment) Paid() bool { return i.PaymentDate != nil }
