package core

import (
	"math"
	"testing"
	"time"
)

func sampleExpenses() []Expense {
	return []Expense{
		{ID: "a", DateTime: "2026-04-01T09:00", AmountBase: 1200, Category: "Food", Payment: "Cash", Note: "Ramen lunch"},
		{ID: "b", DateTime: "2026-04-01T20:00", AmountBase: 8000, Category: "Lodging", Payment: "Card", Location: "Shinjuku"},
		{ID: "c", DateTime: "2026-04-02T10:00", AmountBase: 300, Category: "Transport", Payment: "Card", Tags: []string{"metro", "day-pass"}},
		{ID: "d", DateTime: "2026-04-03T13:00", AmountBase: 1500, Category: "Food", Payment: "Card", Note: "Sushi"},
	}
}

func TestFilterMatches(t *testing.T) {
	expenses := sampleExpenses()

	cases := []struct {
		name   string
		filter Filter
		want   []string // expected IDs in order
	}{
		{"no filter", Filter{}, []string{"a", "b", "c", "d"}},
		{"date range", Filter{From: "2026-04-01", To: "2026-04-02"}, []string{"a", "b", "c"}},
		{"from only", Filter{From: "2026-04-02"}, []string{"c", "d"}},
		{"to only", Filter{To: "2026-04-01"}, []string{"a", "b"}},
		{"category", Filter{Category: "Food"}, []string{"a", "d"}},
		{"payment", Filter{Payment: "Card"}, []string{"b", "c", "d"}},
		{"search note", Filter{Search: "ramen"}, []string{"a"}},
		{"search location", Filter{Search: "shinjuku"}, []string{"b"}},
		{"search tag", Filter{Search: "day-pass"}, []string{"c"}},
		{"and composition", Filter{Payment: "Card", Category: "Food"}, []string{"d"}},
		{"no match", Filter{Category: "Shopping"}, []string{}},
	}
	for _, tc := range cases {
		got := Apply(expenses, tc.filter)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d expenses, want %d", tc.name, len(got), len(tc.want))
		}
		for i, e := range got {
			if e.ID != tc.want[i] {
				t.Fatalf("%s: position %d got %s, want %s", tc.name, i, e.ID, tc.want[i])
			}
		}
	}
}

func TestGroupTotalsPartitionGrandTotal(t *testing.T) {
	expenses := sampleExpenses()
	filters := []Filter{
		{},
		{From: "2026-04-01", To: "2026-04-02"},
		{Payment: "Card"},
		{Search: "s"},
	}
	for _, f := range filters {
		filtered := Apply(expenses, f)
		total := Total(filtered)

		var byCat float64
		for _, kt := range ByCategory(filtered) {
			byCat += kt.Total
		}
		if math.Abs(byCat-total) > 1e-9 {
			t.Fatalf("filter %+v: category totals %v != grand total %v", f, byCat, total)
		}

		var byPay float64
		for _, kt := range ByPayment(filtered) {
			byPay += kt.Total
		}
		if math.Abs(byPay-total) > 1e-9 {
			t.Fatalf("filter %+v: payment totals %v != grand total %v", f, byPay, total)
		}

		var byDay float64
		for _, dt := range DailySeries(filtered) {
			byDay += dt.Total
		}
		if math.Abs(byDay-total) > 1e-9 {
			t.Fatalf("filter %+v: daily totals %v != grand total %v", f, byDay, total)
		}
	}
}

func TestGroupTotalsOrdering(t *testing.T) {
	got := ByCategory(sampleExpenses())
	want := []KeyTotal{
		{Key: "Lodging", Total: 8000},
		{Key: "Food", Total: 2700},
		{Key: "Transport", Total: 300},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGroupTotalsTiesKeepEncounterOrder(t *testing.T) {
	expenses := []Expense{
		{Category: "Food", AmountBase: 10},
		{Category: "Transport", AmountBase: 10},
		{Category: "Lodging", AmountBase: 10},
	}
	got := ByCategory(expenses)
	wantOrder := []string{"Food", "Transport", "Lodging"}
	for i, kt := range got {
		if kt.Key != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, kt.Key, wantOrder[i])
		}
	}
}

func TestDailySeriesAscending(t *testing.T) {
	got := DailySeries(sampleExpenses())
	want := []DayTotal{
		{Day: "2026-04-01", Total: 9200},
		{Day: "2026-04-02", Total: 300},
		{Day: "2026-04-03", Total: 1500},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d days, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDaysElapsed(t *testing.T) {
	trip := Trip{StartDate: "2026-04-01", EndDate: "2026-04-14"}
	day := func(s string) time.Time {
		d, err := ParseDay(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return d
	}

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"first day", day("2026-04-01"), 1},
		{"mid trip", day("2026-04-05"), 5},
		{"last day", day("2026-04-14"), 14},
		{"after trip end clamps to end", day("2026-05-01"), 14},
		{"before trip start floors at one", day("2026-03-01"), 1},
	}
	for _, tc := range cases {
		if got := DaysElapsed(trip, tc.now); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestSummarizeBudgetScenario(t *testing.T) {
	// JPY trip with a 100000 budget; one 50 USD expense at rate 150.
	trip := Trip{
		StartDate:        "2026-04-01",
		EndDate:          "2026-04-14",
		BaseCurrency:     "JPY",
		BudgetEnabled:    true,
		BudgetAmountBase: 100000,
	}
	amountBase := Convert(50, 150, "USD", "JPY")
	if amountBase != 7500 {
		t.Fatalf("expected amountBase 7500, got %v", amountBase)
	}
	expenses := []Expense{{DateTime: "2026-04-01T12:00", AmountBase: amountBase, Category: "Food", Payment: "Cash"}}

	now, _ := time.Parse(DayFormat, "2026-04-05")
	s := Summarize(trip, expenses, Filter{}, now)

	if s.Total != 7500 {
		t.Fatalf("expected total 7500, got %v", s.Total)
	}
	if !s.BudgetEnabled || s.BudgetRemaining != 92500 {
		t.Fatalf("expected budget remaining 92500, got %v", s.BudgetRemaining)
	}
	if s.DaysElapsed != 5 {
		t.Fatalf("expected 5 days elapsed, got %d", s.DaysElapsed)
	}
	if s.AveragePerDay != 1500 {
		t.Fatalf("expected average 1500/day, got %v", s.AveragePerDay)
	}
}

func TestSummarizeDeterministicNow(t *testing.T) {
	trip := Trip{StartDate: "2026-04-01", EndDate: "2026-04-14", BaseCurrency: "EUR"}
	expenses := sampleExpenses()
	now, _ := time.Parse(DayFormat, "2026-04-03")

	first := Summarize(trip, expenses, Filter{}, now)
	second := Summarize(trip, expenses, Filter{}, now)
	if first.Total != second.Total || first.AveragePerDay != second.AveragePerDay {
		t.Fatalf("summaries differ for identical inputs: %+v vs %+v", first, second)
	}
}
