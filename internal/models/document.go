package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document kinds. Fatture are invoices (imported from FatturaPA XML or
// entered by hand); movimenti are free-form ledger movements.
const (
	KindInvoiceIssued   = "fattura_emessa"
	KindInvoiceReceived = "fattura_ricevuta"
	KindMovementIn      = "movimento_attivo"
	KindMovementOut     = "movimento_passivo"
)

// Kinds lists every valid document kind.
var Kinds = []string{KindInvoiceIssued, KindInvoiceReceived, KindMovementIn, KindMovementOut}

// Document is an invoice or ledger movement with a declared total amount.
// The natural key is (kind, number, document date, counterparty VAT): the
// same number can legitimately reappear across years and counterparties.
type Document struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Kind             string          `gorm:"not null;uniqueIndex:idx_documents_natural" json:"kind"`
	Number           string          `gorm:"not null;uniqueIndex:idx_documents_natural" json:"numero"`
	DocumentDate     time.Time       `gorm:"not null;uniqueIndex:idx_documents_natural" json:"data_documento"`
	CounterpartyVAT  string          `gorm:"uniqueIndex:idx_documents_natural" json:"partita_iva_controparte"`
	CounterpartyName string          `json:"controparte"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"importo_totale"`
	Installments     []Installment   `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"scadenze,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ValidKind reports whether kind is one of the supported document kinds.
func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IncomingKind reports whether a document kind represents money flowing in
// (issued invoices and active movements).
func IncomingKind(kind string) bool {
	return kind == KindInvoiceIssued || kind == KindMovementIn
}

// Incoming reports whether the document represents money flowing in.
func (d Document) Incoming() bool { return IncomingKind(d.Kind) }
