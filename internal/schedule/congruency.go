package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/money"
)

// editTolerance is the slack allowed while a schedule is still being edited:
// one cent covers a user's in-flight keystroke. Stored-data audits use
// Congruent instead, which allows no slack at all.
var editTolerance = decimal.New(1, -2)

// ConfiguredTotal sums the installment amounts, rounding each one.
func ConfiguredTotal(terms []models.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, t := range terms {
		total = total.Add(money.Round(t.Amount))
	}
	return total
}

// Congruent reports whether the installments add up exactly to the document
// total in decimal arithmetic. This is the audit-mode check used on stored
// data; it only reports, it never corrects.
func Congruent(total decimal.Decimal, terms []models.Installment) bool {
	return ConfiguredTotal(terms).Equal(money.Round(total))
}

// Validate checks a draft schedule before it is saved against the document
// total, returning human-readable problems. The sum check tolerates up to
// one cent of difference; everything else is a hard requirement: at least
// one term, a due date, a positive amount, a payment method and a cash
// account on every term. An empty result means the schedule can be saved.
func Validate(terms []models.Installment, total decimal.Decimal) []string {
	if len(terms) == 0 {
		return []string{"Devi configurare almeno una scadenza di pagamento"}
	}

	var errs []string
	configured := ConfiguredTotal(terms)
	want := money.Round(total)
	if configured.Sub(want).Abs().GreaterThan(editTolerance) {
		errs = append(errs, fmt.Sprintf(
			"La somma delle scadenze (€ %s) non corrisponde all'importo totale (€ %s)",
			configured.StringFixed(2), want.StringFixed(2)))
	}

	for i, t := range terms {
		if t.DueDate.IsZero() {
			errs = append(errs, fmt.Sprintf("Data scadenza mancante per la scadenza %d", i+1))
		}
		if !t.Amount.IsPositive() {
			errs = append(errs, fmt.Sprintf("L'importo della scadenza %d deve essere maggiore di zero", i+1))
		}
		if t.PaymentMethod == "" {
			errs = append(errs, fmt.Sprintf("Modalità di pagamento mancante per la scadenza %d", i+1))
		}
		if t.CashAccount == "" {
			errs = append(errs, fmt.Sprintf("Cassa mancante per la scadenza %d", i+1))
		}
	}
	return errs
}

// AnomalyMessage renders the audit-mode discrepancy message for a document
// whose schedule no longer matches its total.
func AnomalyMessage(number string, total, configured decimal.Decimal) string {
	return fmt.Sprintf(
		"ANOMALIA: il documento %s ha un importo totale di %s Euro, mentre le relative scadenze hanno un importo totale di %s Euro. Assicurarsi di far combaciare gli importi",
		number, money.Round(total).StringFixed(2), configured.StringFixed(2))
}
