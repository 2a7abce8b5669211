package core

import (
	"errors"
	"strings"
	"testing"
)

func validTrip() Trip {
	return Trip{
		ID:           "t1",
		Name:         "Japan 2026",
		StartDate:    "2026-04-01",
		EndDate:      "2026-04-14",
		BaseCurrency: "JPY",
		Currencies:   []string{"JPY", "EUR", "USD"},
	}
}

func validExpense() Expense {
	return Expense{
		ID:             "e1",
		TripID:         "t1",
		DateTime:       "2026-04-02T12:30",
		AmountOriginal: 50,
		Currency:       "USD",
		FxRateToBase:   150,
		Category:       "Food",
		Payment:        "Card",
	}
}

func TestTripValidate(t *testing.T) {
	if err := validTrip().Validate(); err != nil {
		t.Fatalf("expected valid trip, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Trip)
		want   error
	}{
		{"empty name", func(tr *Trip) { tr.Name = "  " }, ErrEmptyName},
		{"name too long", func(tr *Trip) { tr.Name = strings.Repeat("x", 51) }, ErrNameTooLong},
		{"bad start date", func(tr *Trip) { tr.StartDate = "01/04/2026" }, ErrInvalidDate},
		{"bad end date", func(tr *Trip) { tr.EndDate = "never" }, ErrInvalidDate},
		{"start after end", func(tr *Trip) { tr.StartDate = "2026-05-01" }, ErrInvalidDateRange},
		{"lowercase currency", func(tr *Trip) { tr.BaseCurrency = "jpy" }, ErrInvalidCurrency},
		{"short currency", func(tr *Trip) { tr.BaseCurrency = "JP" }, ErrInvalidCurrency},
		{"no currencies", func(tr *Trip) { tr.Currencies = nil }, ErrInvalidCurrency},
		{"base not in set", func(tr *Trip) { tr.Currencies = []string{"EUR"} }, ErrInvalidCurrency},
		{"negative budget", func(tr *Trip) { tr.BudgetAmountBase = -1 }, ErrInvalidBudget},
		{"enabled zero budget", func(tr *Trip) { tr.BudgetEnabled = true }, ErrInvalidBudget},
	}
	for _, tc := range cases {
		trip := validTrip()
		tc.mutate(&trip)
		if err := trip.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected valid expense, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"no trip", func(e *Expense) { e.TripID = "" }, ErrMissingTrip},
		{"bad date", func(e *Expense) { e.DateTime = "yesterday" }, ErrInvalidDate},
		{"zero amount", func(e *Expense) { e.AmountOriginal = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.AmountOriginal = -5 }, ErrInvalidAmount},
		{"bad currency", func(e *Expense) { e.Currency = "usd" }, ErrInvalidCurrency},
		{"zero rate", func(e *Expense) { e.FxRateToBase = 0 }, ErrInvalidFxRate},
		{"negative rate", func(e *Expense) { e.FxRateToBase = -1 }, ErrInvalidFxRate},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrEmptyCategory},
		{"empty payment", func(e *Expense) { e.Payment = " " }, ErrEmptyPayment},
		{"note too long", func(e *Expense) { e.Note = strings.Repeat("n", 121) }, ErrFieldTooLong},
		{"location too long", func(e *Expense) { e.Location = strings.Repeat("l", 81) }, ErrFieldTooLong},
		{"too many tags", func(e *Expense) { e.Tags = make([]string, 11) }, ErrFieldTooLong},
		{"tag too long", func(e *Expense) { e.Tags = []string{strings.Repeat("t", 25)} }, ErrFieldTooLong},
	}
	for _, tc := range cases {
		e := validExpense()
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestExpenseValidateForTrip(t *testing.T) {
	trip := validTrip()

	e := validExpense()
	if err := e.ValidateForTrip(trip); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	e = validExpense()
	e.Currency = "GBP"
	if err := e.ValidateForTrip(trip); !errors.Is(err, ErrCurrencyNotOnTrip) {
		t.Fatalf("expected ErrCurrencyNotOnTrip, got %v", err)
	}

	// Base-currency expense must carry rate 1
	e = validExpense()
	e.Currency = "JPY"
	e.FxRateToBase = 150
	if err := e.ValidateForTrip(trip); !errors.Is(err, ErrInvalidFxRate) {
		t.Fatalf("expected ErrInvalidFxRate, got %v", err)
	}

	e.FxRateToBase = 1
	if err := e.ValidateForTrip(trip); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	ok := Settings{Categories: []string{"Food"}, PaymentMethods: []string{"Cash"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	for _, s := range []Settings{
		{Categories: nil, PaymentMethods: []string{"Cash"}},
		{Categories: []string{"Food"}, PaymentMethods: []string{}},
	} {
		if err := s.Validate(); !errors.Is(err, ErrEmptySettingsList) {
			t.Fatalf("expected ErrEmptySettingsList, got %v", err)
		}
	}
}

func TestSnapshotValidate(t *testing.T) {
	ok := Snapshot{Trips: []Trip{}, Expenses: []Expense{}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := (Snapshot{Expenses: []Expense{}}).Validate(); !errors.Is(err, ErrBadSnapshot) {
		t.Fatalf("expected ErrBadSnapshot for missing trips")
	}
	if err := (Snapshot{Trips: []Trip{}}).Validate(); !errors.Is(err, ErrBadSnapshot) {
		t.Fatalf("expected ErrBadSnapshot for missing expenses")
	}
	bad := Snapshot{Trips: []Trip{}, Expenses: []Expense{}, Config: &Settings{Categories: []string{"Food"}}}
	if err := bad.Validate(); !errors.Is(err, ErrEmptySettingsList) {
		t.Fatalf("expected ErrEmptySettingsList for empty config list, got %v", err)
	}
}

func TestDay(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2026-04-02T12:30", "2026-04-02"},
		{"2026-04-02", "2026-04-02"},
		{"short", "short"},
	}
	for _, tc := range cases {
		if got := Day(tc.in); got != tc.want {
			t.Fatalf("Day(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
