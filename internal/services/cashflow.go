package services

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/money"
)

// reportMonths is the projection horizon of the cash-flow report.
const reportMonths = 12

// TotalRowLabel names the per-column totals row of each matrix.
const TotalRowLabel = "Totale"

// AccountFlow is one row of the cash-flow matrix: unpaid installment
// amounts for a cash account, bucketed by due month.
type AccountFlow struct {
	CashAccount string            `json:"cassa"`
	ByMonth     []decimal.Decimal `json:"mesi"`
	Beyond      decimal.Decimal   `json:"netto_oltre"`
	Overdue30   decimal.Decimal   `json:"scaduti_30gg"`
	Overdue60   decimal.Decimal   `json:"scaduti_60gg"`
	Overdue90   decimal.Decimal   `json:"scaduti_90gg"`
	OverdueOld  decimal.Decimal   `json:"scaduti_oltre"`
}

// CashflowReport projects unpaid installments over the next 12 months,
// split into incoming (attivi) and outgoing (passivi) flows per cash
// account, with overdue buckets for everything already past due. The last
// row of each matrix is the per-column total; Net is attivi minus passivi.
type CashflowReport struct {
	Months  []string      `json:"mesi"`
	Active  []AccountFlow `json:"attivi"`
	Passive []AccountFlow `json:"passivi"`
	Net     AccountFlow   `json:"saldo"`
}

// CashflowService computes the cash-flow projection.
type CashflowService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewCashflowService(db *gorm.DB) *CashflowService {
	return &CashflowService{DB: db, log: logger.WithComponent("cashflow")}
}

type flowRow struct {
	CashAccount string
	DueDate     time.Time
	Amount      decimal.Decimal
	Kind        string
}

// Report builds the projection as of asOf (normally time.Now). Installments
// due before asOf land in the overdue buckets; everything else is bucketed
// by calendar month, with month 0 being asOf's own month.
func (s *CashflowService) Report(asOf time.Time) (CashflowReport, error) {
	var rows []flowRow
	err := s.DB.Model(&models.Installment{}).
		Select("installments.cash_account, installments.due_date, installments.amount, documents.kind").
		Joins("JOIN documents ON documents.id = installments.document_id").
		Where("installments.payment_date IS NULL").
		Scan(&rows).Error
	if err != nil {
		return CashflowReport{}, err
	}

	report := CashflowReport{Months: monthLabels(asOf)}
	active := make(map[string]*AccountFlow)
	passive := make(map[string]*AccountFlow)

	for _, r := range rows {
		byAccount := passive
		if models.IncomingKind(r.Kind) {
			byAccount = active
		}
		flow, ok := byAccount[r.CashAccount]
		if !ok {
			flow = newAccountFlow(r.CashAccount)
			byAccount[r.CashAccount] = flow
		}
		flow.add(r.DueDate, money.Round(r.Amount), asOf)
	}

	report.Active = flatten(active)
	report.Passive = flatten(passive)
	activeTotals := totals(report.Active)
	passiveTotals := totals(report.Passive)
	report.Active = append(report.Active, activeTotals)
	report.Passive = append(report.Passive, passiveTotals)
	report.Net = net(activeTotals, passiveTotals)
	return report, nil
}

func newAccountFlow(account string) *AccountFlow {
	f := &AccountFlow{CashAccount: account, ByMonth: make([]decimal.Decimal, reportMonths)}
	for i := range f.ByMonth {
		f.ByMonth[i] = decimal.Zero
	}
	f.Beyond, f.Overdue30, f.Overdue60, f.Overdue90, f.OverdueOld =
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	return f
}

// add places one unpaid amount in its bucket.
func (f *AccountFlow) add(due time.Time, amount decimal.Decimal, asOf time.Time) {
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

	if day.Before(today) {
		days := int(today.Sub(day).Hours() / 24)
		switch {
		case days <= 30:
			f.Overdue30 = f.Overdue30.Add(amount)
		case days <= 60:
			f.Overdue60 = f.Overdue60.Add(amount)
		case days <= 90:
			f.Overdue90 = f.Overdue90.Add(amount)
		default:
			f.OverdueOld = f.OverdueOld.Add(amount)
		}
		return
	}

	offset := (due.Year()-asOf.Year())*12 + int(due.Month()) - int(asOf.Month())
	if offset >= reportMonths {
		f.Beyond = f.Beyond.Add(amount)
		return
	}
	f.ByMonth[offset] = f.ByMonth[offset].Add(amount)
}

func monthLabels(asOf time.Time) []string {
	labels := make([]string, reportMonths)
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := range labels {
		labels[i] = first.AddDate(0, i, 0).Format("2006-01")
	}
	return labels
}

func flatten(byAccount map[string]*AccountFlow) []AccountFlow {
	// Stable order: seeded account names first, then whatever else showed up.
	ordered := make([]AccountFlow, 0, len(byAccount))
	seen := make(map[string]bool)
	for _, name := range models.DefaultCashAccounts {
		if f, ok := byAccount[name]; ok {
			ordered = append(ordered, *f)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(byAccount))
	for name := range byAccount {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		ordered = append(ordered, *byAccount[name])
	}
	return ordered
}

func totals(flows []AccountFlow) AccountFlow {
	t := *newAccountFlow(TotalRowLabel)
	for _, f := range flows {
		for i := range t.ByMonth {
			t.ByMonth[i] = t.ByMonth[i].Add(f.ByMonth[i])
		}
		t.Beyond = t.Beyond.Add(f.Beyond)
		t.Overdue30 = t.Overdue30.Add(f.Overdue30)
		t.Overdue60 = t.Overdue60.Add(f.Overdue60)
		t.Overdue90 = t.Overdue90.Add(f.Overdue90)
		t.OverdueOld = t.OverdueOld.Add(f.OverdueOld)
	}
	return t
}

func net(active, passive AccountFlow) AccountFlow {
	n := *newAccountFlow("Saldo")
	for i := range n.ByMonth {
		n.ByMonth[i] = active.ByMonth[i].Sub(passive.ByMonth[i])
	}
	n.Beyond = active.Beyond.Sub(passive.Beyond)
	n.Overdue30 = active.Overdue30.Sub(passive.Overdue30)
	n.Overdue60 = active.Overdue60.Sub(passive.Overdue60)
	n.Overdue90 = active.Overdue90.Sub(passive.Overdue90)
	n.OverdueOld = active.OverdueOld.Sub(passive.OverdueOld)
	return n
}
