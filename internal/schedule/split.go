// Package schedule implements payment-term allocation and congruency
// checking: splitting a document total into evenly spaced installments
// without rounding drift, and verifying that a stored schedule still adds
// up to its document's declared total.
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/money"
)

// DefaultIntervalDays is the spacing used when the caller gives none.
const DefaultIntervalDays = 30

// Split divides total into count installments due every intervalDays,
// starting one interval after start. Every installment gets the rounded
// equal share except the last, which takes the exact remainder: that is the
// only way the amounts are guaranteed to add back to the rounded total.
// count <= 0 is a deliberate no-op and yields an empty schedule.
//
// The result is pure data, due-date ascending; nothing is persisted here.
func Split(total decimal.Decimal, count int, start time.Time, intervalDays int) []models.Installment {
	if count <= 0 {
		return []models.Installment{}
	}

	totalRounded := money.Round(total)
	base := money.Round(totalRounded.Div(decimal.NewFromInt(int64(count))))

	terms := make([]models.Installment, 0, count)
	allocated := decimal.Zero
	for i := 0; i < count; i++ {
		var amount decimal.Decimal
		if i == count-1 {
			// Last installment absorbs the rounding remainder.
			amount = totalRounded.Sub(allocated)
		} else {
			amount = base
			allocated = allocated.Add(base)
		}
		terms = append(terms, models.Installment{
			DueDate:       start.AddDate(0, 0, intervalDays*(i+1)),
			Amount:        amount,
			PaymentMethod: "Bonifico",
			CashAccount:   "Banca Intesa",
			Notes:         fmt.Sprintf("Rata %d di %d", i+1, count),
		})
	}
	return terms
}
