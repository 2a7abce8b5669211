package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// DayFormat is the calendar-date layout used for trip bounds and the
	// date part of expense timestamps.
	DayFormat = "2006-01-02"

	MaxTripNameLen = 50
	MaxNoteLen     = 120
	MaxLocationLen = 80
	MaxTags        = 10
	MaxTagLen      = 24
)

// SchemaVersion is the current schema marker written at bootstrap.
const SchemaVersion = "1"

type (
	// Trip groups expenses under a date range, a currency context and an
	// optional budget. All derived amounts on a trip are in its base currency.
	Trip struct {
		ID                    string    `json:"id"`
		Name                  string    `json:"name"`
		StartDate             string    `json:"startDate"`
		EndDate               string    `json:"endDate"`
		BaseCurrency          string    `json:"baseCurrency"`
		Currencies            []string  `json:"currencies"`
		BudgetEnabled         bool      `json:"budgetEnabled"`
		BudgetAmountBase      float64   `json:"budgetAmountBase"`
		DailyBudgetAmountBase *float64  `json:"dailyBudgetAmountBase,omitempty"`
		CreatedAt             time.Time `json:"createdAt"`
	}

	// Expense is a single spend record attributed to a trip. AmountBase is
	// derived from AmountOriginal and FxRateToBase and recomputed on every
	// write; a caller-submitted value is never trusted.
	Expense struct {
		ID             string    `json:"id"`
		TripID         string    `json:"tripId"`
		DateTime       string    `json:"dateTime"`
		AmountOriginal float64   `json:"amountOriginal"`
		Currency       string    `json:"currency"`
		FxRateToBase   float64   `json:"fxRateToBase"`
		AmountBase     float64   `json:"amountBase"`
		Category       string    `json:"category"`
		Payment        string    `json:"payment"`
		Note           string    `json:"note,omitempty"`
		Location       string    `json:"location,omitempty"`
		PaidBy         string    `json:"paidBy,omitempty"`
		Tags           []string  `json:"tags,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
		UpdatedAt      time.Time `json:"updatedAt"`
	}

	// Settings holds the two user-editable taxonomy lists. Both are seeded
	// at bootstrap and never allowed to become empty afterwards.
	Settings struct {
		Categories     []string `json:"categories"`
		PaymentMethods []string `json:"paymentMethods"`
	}

	// Snapshot is the full-backup payload: everything the store holds.
	// Trips and Expenses must be present (possibly empty) for a restore;
	// SchemaVersion and Config fall back to defaults when absent.
	Snapshot struct {
		SchemaVersion string    `json:"schemaVersion,omitempty"`
		Trips         []Trip    `json:"trips"`
		Expenses      []Expense `json:"expenses"`
		Config        *Settings `json:"config,omitempty"`
	}
)

// DefaultCategories returns the taxonomy seeded at bootstrap and used as a
// restore fallback. Returned fresh each call so callers can mutate freely.
func DefaultCategories() []string {
	return []string{"Food", "Transport", "Lodging", "Activities", "Shopping", "Groceries", "Other"}
}

// DefaultPaymentMethods returns the payment-method list seeded at bootstrap.
func DefaultPaymentMethods() []string {
	return []string{"Cash", "Card", "Mobile", "Other"}
}

var (
	ErrEmptyName          = errors.New("empty trip name")
	ErrNameTooLong        = errors.New("trip name too long")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDateRange   = errors.New("start date after end date")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidBudget      = errors.New("invalid budget amount")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidFxRate      = errors.New("invalid exchange rate")
	ErrCurrencyNotOnTrip  = errors.New("currency not in trip currency set")
	ErrMissingTrip        = errors.New("expense has no trip")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyPayment       = errors.New("empty payment method")
	ErrEmptySettingsList  = errors.New("settings list cannot be empty")
	ErrBaseCurrencyLocked = errors.New("base currency cannot change on a trip with expenses")
	ErrFieldTooLong       = errors.New("field exceeds maximum length")
	ErrBadSnapshot        = errors.New("malformed snapshot payload")
	ErrNotFound           = errors.New("record not found")
)

// ParseDay parses a calendar date in YYYY-MM-DD form.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day returns the calendar-date part of an ISO date-time string.
func Day(dateTime string) string {
	if len(dateTime) < len(DayFormat) {
		return dateTime
	}
	return dateTime[:len(DayFormat)]
}

// ValidCurrencyCode reports whether s is an ISO-like currency code:
// at least three characters, all uppercase letters.
func ValidCurrencyCode(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxTripNameLen {
		return ErrNameTooLong
	}
	start, err := ParseDay(t.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseDay(t.EndDate)
	if err != nil {
		return err
	}
	if start.After(end) {
		return ErrInvalidDateRange
	}
	if !ValidCurrencyCode(t.BaseCurrency) {
		return ErrInvalidCurrency
	}
	if len(t.Currencies) == 0 {
		return fmt.Errorf("%w: trip needs at least one currency", ErrInvalidCurrency)
	}
	for _, c := range t.Currencies {
		if !ValidCurrencyCode(c) {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, c)
		}
	}
	if !slices.Contains(t.Currencies, t.BaseCurrency) {
		return fmt.Errorf("%w: currency set must include base currency", ErrInvalidCurrency)
	}
	if t.BudgetAmountBase < 0 {
		return ErrInvalidBudget
	}
	if t.BudgetEnabled && t.BudgetAmountBase <= 0 {
		return fmt.Errorf("%w: budget must be positive when enabled", ErrInvalidBudget)
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.TripID) == "" {
		return ErrMissingTrip
	}
	if _, err := ParseDay(Day(e.DateTime)); err != nil {
		return err
	}
	if e.AmountOriginal <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCurrencyCode(e.Currency) {
		return ErrInvalidCurrency
	}
	if e.FxRateToBase <= 0 {
		return ErrInvalidFxRate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Payment) == "" {
		return ErrEmptyPayment
	}
	if len(e.Note) > MaxNoteLen {
		return fmt.Errorf("%w: note (max 120 characters)", ErrFieldTooLong)
	}
	if len(e.Location) > MaxLocationLen {
		return fmt.Errorf("%w: location (max 80 characters)", ErrFieldTooLong)
	}
	if len(e.Tags) > MaxTags {
		return fmt.Errorf("%w: too many tags (max 10)", ErrFieldTooLong)
	}
	for _, tag := range e.Tags {
		if len(tag) > MaxTagLen {
			return fmt.Errorf("%w: tag %q (max 24 characters)", ErrFieldTooLong, tag)
		}
	}
	return nil
}

// ValidateForTrip applies the trip-contextual rules on top of Validate:
// the currency must belong to the trip's set, and a base-currency expense
// must carry an exchange rate of exactly 1.
func (e Expense) ValidateForTrip(t Trip) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !slices.Contains(t.Currencies, e.Currency) {
		return ErrCurrencyNotOnTrip
	}
	if e.Currency == t.BaseCurrency && e.FxRateToBase != 1 {
		return fmt.Errorf("%w: base-currency expense must have rate 1", ErrInvalidFxRate)
	}
	return nil
}

func (s Settings) Validate() error {
	if len(s.Categories) == 0 || len(s.PaymentMethods) == 0 {
		return ErrEmptySettingsList
	}
	return nil
}

// Validate checks the snapshot shape required for a restore: the trips and
// expenses sequences must both be present, even if empty.
func (s Snapshot) Validate() error {
	if s.Trips == nil {
		return fmt.Errorf("%w: missing trips array", ErrBadSnapshot)
	}
	if s.Expenses == nil {
		return fmt.Errorf("%w: missing expenses array", ErrBadSnapshot)
	}
	if s.Config != nil {
		if err := s.Config.Validate(); err != nil {
			return fmt.Errorf("snapshot config: %w", err)
		}
	}
	return nil
}
