package fatturapa

import (
	"errors"
	"fmt"
	"time"

	"github.com/bassignana/kruscotto/internal/models"
)

// ErrNotOurInvoice flags a file whose parties do not include the company.
var ErrNotOurInvoice = errors.New("la fattura non riguarda la partita IVA dell'azienda")

// monthsInAdvance controls the fallback due date for invoices that carry no
// payment terms: end of the month, monthsInAdvance months after the
// document month.
const monthsInAdvance = 1

// Classify decides whether the invoice was issued or received by the
// company identified by companyVAT. The supplier VAT is mandatory on every
// FatturaPA document, so matching it first is reliable; the customer VAT is
// only present when the customer holds one.
func Classify(inv *Invoice, companyVAT string) (string, error) {
	if companyVAT == "" {
		return "", fmt.Errorf("partita IVA dell'azienda non configurata")
	}
	if inv.SupplierVAT == companyVAT {
		return models.KindInvoiceIssued, nil
	}
	if inv.CustomerVAT != "" && inv.CustomerVAT == companyVAT {
		return models.KindInvoiceReceived, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotOurInvoice, companyVAT)
}

// Counterparty returns the name and VAT of the other party, given the
// direction the invoice was classified into.
func (inv *Invoice) Counterparty(kind string) (name, vat string) {
	if kind == models.KindInvoiceIssued {
		vat = inv.CustomerVAT
		if vat == "" {
			vat = inv.CustomerTaxCode
		}
		return inv.CustomerName, vat
	}
	return inv.SupplierName, inv.SupplierVAT
}

// DefaultDueDate is the due date assigned when the XML carries no payment
// terms at all: the last day of the month after the document month.
func DefaultDueDate(docDate time.Time) time.Time {
	firstOfMonth := time.Date(docDate.Year(), docDate.Month(), 1, 0, 0, 0, 0, docDate.Location())
	return firstOfMonth.AddDate(0, monthsInAdvance+1, -1)
}

// CashAccountFor picks the cash account label for an imported term: the
// bank name when present, else the IBAN, else the explicit "unspecified"
// marker so the gap shows up in reports instead of hiding in an empty cell.
func CashAccountFor(t Term) string {
	if t.Bank != "" {
		return t.Bank
	}
	if t.IBAN != "" {
		return t.IBAN
	}
	return models.CashAccountUnspecified
}
