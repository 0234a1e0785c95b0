package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassignana/kruscotto/internal/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitSumInvariant(t *testing.T) {
	start := date(2024, time.March, 1)
	totals := []string{"0.01", "0.10", "1.00", "99.99", "100.00", "123.45", "1000.01", "33333.33"}
	for _, ts := range totals {
		total := decimal.RequireFromString(ts)
		for count := 1; count <= 12; count++ {
			t.Run(fmt.Sprintf("total=%s count=%d", ts, count), func(t *testing.T) {
				terms := Split(total, count, start, 30)
				require.Len(t, terms, count)
				sum := decimal.Zero
				for _, term := range terms {
					sum = sum.Add(term.Amount)
				}
				assert.True(t, sum.Equal(money.Round(total)),
					"sum %s != total %s", sum, total)
			})
		}
	}
}

func TestSplitDueDateSpacing(t *testing.T) {
	start := date(2024, time.March, 1)
	terms := Split(decimal.RequireFromString("600.00"), 6, start, 15)
	require.Len(t, terms, 6)
	for i, term := range terms {
		assert.Equal(t, start.AddDate(0, 0, 15*(i+1)), term.DueDate)
		if i > 0 {
			assert.True(t, term.DueDate.After(terms[i-1].DueDate), "due dates must be strictly increasing")
		}
	}
}

func TestSplitZeroOrNegativeCountIsNoOp(t *testing.T) {
	start := date(2024, time.March, 1)
	total := decimal.RequireFromString("100.00")
	assert.Empty(t, Split(total, 0, start, 30))
	assert.Empty(t, Split(total, -3, start, 30))
}

func TestSplitRemainderGoesToLastInstallment(t *testing.T) {
	terms := Split(decimal.RequireFromString("100.00"), 3, date(2024, time.January, 1), 30)
	require.Len(t, terms, 3)
	assert.Equal(t, "33.33", terms[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", terms[1].Amount.StringFixed(2))
	assert.Equal(t, "33.34", terms[2].Amount.StringFixed(2))
}

func TestSplitIsPure(t *testing.T) {
	total := decimal.RequireFromString("777.77")
	start := date(2024, time.June, 10)
	first := Split(total, 5, start, 30)
	second := Split(total, 5, start, 30)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
		assert.Equal(t, first[i].DueDate, second[i].DueDate)
		assert.Equal(t, first[i].Notes, second[i].Notes)
	}
}

func TestSplitQuarterlyScenario(t *testing.T) {
	terms := Split(decimal.RequireFromString("1000.00"), 4, date(2024, time.January, 15), 30)
	require.Len(t, terms, 4)

	wantDates := []time.Time{
		date(2024, time.February, 14),
		date(2024, time.March, 15),
		date(2024, time.April, 14),
		date(2024, time.May, 14),
	}
	for i, term := range terms {
		assert.Equal(t, wantDates[i], term.DueDate, "installment %d", i+1)
		assert.Equal(t, "250.00", term.Amount.StringFixed(2))
	}
}

func TestSplitLabels(t *testing.T) {
	terms := Split(decimal.RequireFromString("90.00"), 3, date(2024, time.May, 2), 30)
	require.Len(t, terms, 3)
	assert.Equal(t, "Rata 1 di 3", terms[0].Notes)
	assert.Equal(t, "Rata 3 di 3", terms[2].Notes)
}
