package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Filter restricts an expense collection. Zero-value fields mean no
	// restriction; populated fields compose with logical AND. From and To
	// are inclusive calendar dates compared against the date part of each
	// expense's DateTime. Search is a case-insensitive substring match over
	// note, location and space-joined tags.
	Filter struct {
		From     string
		To       string
		Category string
		Payment  string
		Search   string
	}

	// KeyTotal is one bucket of a group-by: a distinct key and its total.
	KeyTotal struct {
		Key   string  `json:"key"`
		Total float64 `json:"total"`
	}

	// DayTotal is one day of the daily spend series.
	DayTotal struct {
		Day   string  `json:"day"`
		Total float64 `json:"total"`
	}

	// Summary is the full aggregation answer for one trip and filter set.
	Summary struct {
		Total           float64    `json:"total"`
		ByCategory      []KeyTotal `json:"byCategory"`
		ByPayment       []KeyTotal `json:"byPayment"`
		Daily           []DayTotal `json:"daily"`
		DaysElapsed     int        `json:"daysElapsed"`
		AveragePerDay   float64    `json:"averagePerDay"`
		BudgetEnabled   bool       `json:"budgetEnabled"`
		BudgetRemaining float64    `json:"budgetRemaining,omitempty"`
	}
)

// Matches reports whether the expense passes every populated filter field.
func (f Filter) Matches(e Expense) bool {
	day := Day(e.DateTime)
	if f.From != "" && day < f.From {
		return false
	}
	if f.To != "" && day > f.To {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Payment != "" && e.Payment != f.Payment {
		return false
	}
	if f.Search != "" {
		haystack := strings.ToLower(e.Note + " " + e.Location + " " + strings.Join(e.Tags, " "))
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// Apply returns the expenses passing the filter, in encounter order.
func Apply(expenses []Expense, f Filter) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums AmountBase over the collection. Summation runs in decimal
// arithmetic so the grand total always equals the sum of any partition of
// the same collection.
func Total(expenses []Expense) float64 {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(decimal.NewFromFloat(e.AmountBase))
	}
	f, _ := sum.Float64()
	return f
}

// ByCategory groups base amounts per category, largest total first.
func ByCategory(expenses []Expense) []KeyTotal {
	return groupTotals(expenses, func(e Expense) string { return e.Category })
}

// ByPayment groups base amounts per payment method, largest total first.
func ByPayment(expenses []Expense) []KeyTotal {
	return groupTotals(expenses, func(e Expense) string { return e.Payment })
}

func groupTotals(expenses []Expense, key func(Expense) string) []KeyTotal {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range expenses {
		k := key(e)
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(decimal.NewFromFloat(e.AmountBase))
	}
	out := make([]KeyTotal, 0, len(order))
	for _, k := range order {
		f, _ := sums[k].Float64()
		out = append(out, KeyTotal{Key: k, Total: f})
	}
	// Stable sort keeps encounter order between equal totals.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// DailySeries sums base amounts per calendar day, ascending by day.
func DailySeries(expenses []Expense) []DayTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		day := Day(e.DateTime)
		sums[day] = sums[day].Add(decimal.NewFromFloat(e.AmountBase))
	}
	days := make([]string, 0, len(sums))
	for day := range sums {
		days = append(days, day)
	}
	sort.Strings(days)
	out := make([]DayTotal, 0, len(days))
	for _, day := range days {
		f, _ := sums[day].Float64()
		out = append(out, DayTotal{Day: day, Total: f})
	}
	return out
}

// DaysElapsed counts the elapsed trip days from the trip start to the
// earlier of now and the trip end, inclusive, never less than one.
func DaysElapsed(t Trip, now time.Time) int {
	start, err := ParseDay(t.StartDate)
	if err != nil {
		return 1
	}
	end, err := ParseDay(t.EndDate)
	if err != nil {
		return 1
	}
	ref := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(ref) {
		ref = end
	}
	days := int(ref.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// AveragePerDay is the burn rate: total divided by elapsed days, rounded to
// the trip's base-currency decimals.
func AveragePerDay(total float64, t Trip, now time.Time) float64 {
	days := DaysElapsed(t, now)
	avg := decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(days)))
	return roundHalfUp(avg, DecimalsFor(t.BaseCurrency))
}

// BudgetRemaining is budget minus total; negative means over budget.
// Only meaningful when the trip's budget is enabled.
func BudgetRemaining(t Trip, total float64) float64 {
	rem := decimal.NewFromFloat(t.BudgetAmountBase).Sub(decimal.NewFromFloat(total))
	f, _ := rem.Float64()
	return f
}

// Summarize computes the full aggregation answer over a materialized
// expense snapshot. The caller supplies now so the burn-rate arithmetic is
// deterministic under test.
func Summarize(t Trip, expenses []Expense, f Filter, now time.Time) Summary {
	filtered := Apply(expenses, f)
	total := Total(filtered)
	s := Summary{
		Total:         total,
		ByCategory:    ByCategory(filtered),
		ByPayment:     ByPayment(filtered),
		Daily:         DailySeries(filtered),
		DaysElapsed:   DaysElapsed(t, now),
		AveragePerDay: AveragePerDay(total, t, now),
		BudgetEnabled: t.BudgetEnabled,
	}
	if t.BudgetEnabled {
		s.BudgetRemaining = BudgetRemaining(t, total)
	}
	return s
}
