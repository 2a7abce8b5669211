package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"viaggi/internal/core"
)

// Record keys for the settings and meta containers.
const (
	SettingsCategories     = "categories"
	SettingsPaymentMethods = "paymentMethods"
	MetaSchemaVersion      = "schemaVersion"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every record operation
// runs identically inside or outside an atomic unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes the typed record operations of the four containers:
// meta, settings, trips and expenses.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// --- trips ---

const tripColumns = `id, name, start_date, end_date, base_currency, currencies,
	budget_enabled, budget_amount_base, daily_budget_amount_base, created_at`

// PutTrip inserts or replaces a trip by identity. Idempotent.
func (q *Queries) PutTrip(ctx context.Context, t core.Trip) error {
	currencies, err := json.Marshal(t.Currencies)
	if err != nil {
		return fmt.Errorf("marshal currencies: %w", err)
	}
	var daily sql.NullFloat64
	if t.DailyBudgetAmountBase != nil {
		daily = sql.NullFloat64{Float64: *t.DailyBudgetAmountBase, Valid: true}
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			base_currency = excluded.base_currency,
			currencies = excluded.currencies,
			budget_enabled = excluded.budget_enabled,
			budget_amount_base = excluded.budget_amount_base,
			daily_budget_amount_base = excluded.daily_budget_amount_base,
			created_at = excluded.created_at`,
		t.ID, t.Name, t.StartDate, t.EndDate, t.BaseCurrency, string(currencies),
		boolToInt(t.BudgetEnabled), t.BudgetAmountBase, daily, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("put trip: %w", err)
	}
	return nil
}

func (q *Queries) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, fmt.Errorf("trip %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (q *Queries) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY start_date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := []core.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteTrip removes a trip by id; deleting a missing id is a no-op.
func (q *Queries) DeleteTrip(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

// --- expenses ---

const expenseColumns = `id, trip_id, date_time, amount_original, currency,
	fx_rate_to_base, amount_base, category, payment, note, location, paid_by,
	tags, created_at, updated_at`

// PutExpense inserts or replaces an expense by identity. Idempotent.
func (q *Queries) PutExpense(ctx context.Context, e core.Expense) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			trip_id = excluded.trip_id,
			date_time = excluded.date_time,
			amount_original = excluded.amount_original,
			currency = excluded.currency,
			fx_rate_to_base = excluded.fx_rate_to_base,
			amount_base = excluded.amount_base,
			category = excluded.category,
			payment = excluded.payment,
			note = excluded.note,
			location = excluded.location,
			paid_by = excluded.paid_by,
			tags = excluded.tags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		e.ID, e.TripID, e.DateTime, e.AmountOriginal, e.Currency,
		e.FxRateToBase, e.AmountBase, e.Category, e.Payment, e.Note, e.Location,
		e.PaidBy, string(tagsJSON), formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put expense: %w", err)
	}
	return nil
}

func (q *Queries) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (q *Queries) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return q.queryExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date_time`)
}

// ListExpensesByTrip returns every expense of one trip through the trip
// index, ordered by date-time.
func (q *Queries) ListExpensesByTrip(ctx context.Context, tripID string) ([]core.Expense, error) {
	return q.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? ORDER BY date_time`, tripID)
}

// ListExpensesByTripRange range-scans the (trip_id, date_time) index.
// The bounds are inclusive calendar dates.
func (q *Queries) ListExpensesByTripRange(ctx context.Context, tripID, fromDay, toDay string) ([]core.Expense, error) {
	upper, err := nextDay(toDay)
	if err != nil {
		return nil, err
	}
	return q.queryExpenses(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE trip_id = ? AND date_time >= ? AND date_time < ?
		ORDER BY date_time`, tripID, fromDay, upper)
}

// DeleteExpensesByTrip removes all expenses referencing the trip and
// returns how many were removed.
func (q *Queries) DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE trip_id = ?`, tripID)
	if err != nil {
		return 0, fmt.Errorf("delete expenses by trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (q *Queries) CountExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE trip_id = ?`, tripID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expenses by trip: %w", err)
	}
	return n, nil
}

func (q *Queries) DeleteExpense(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// --- settings ---

// GetSettingsList reads one taxonomy list. A missing key reports
// core.ErrNotFound so bootstrap can distinguish absent from empty.
func (q *Queries) GetSettingsList(ctx context.Context, key string) ([]string, error) {
	var raw string
	err := q.db.QueryRowContext(ctx, `SELECT items FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings %s: %w", key, err)
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", key, err)
	}
	return items, nil
}

func (q *Queries) PutSettingsList(ctx context.Context, key string, items []string) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal settings %s: %w", key, err)
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO settings (key, items) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET items = excluded.items`, key, string(raw))
	if err != nil {
		return fmt.Errorf("put settings %s: %w", key, err)
	}
	return nil
}

// --- meta ---

func (q *Queries) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}

func (q *Queries) SetMeta(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// ClearAll empties all four record containers. Only callable inside a
// transaction by the restore path.
func (q *Queries) ClearAll(ctx context.Context) error {
	for _, table := range []string{"expenses", "trips", "settings", "meta"} {
		if _, err := q.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var (
		t             core.Trip
		currenciesRaw string
		budgetEnabled int64
		daily         sql.NullFloat64
		createdAt     string
	)
	err := row.Scan(&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.BaseCurrency,
		&currenciesRaw, &budgetEnabled, &t.BudgetAmountBase, &daily, &createdAt)
	if err != nil {
		return core.Trip{}, err
	}
	if err := json.Unmarshal([]byte(currenciesRaw), &t.Currencies); err != nil {
		return core.Trip{}, fmt.Errorf("decode currencies: %w", err)
	}
	t.BudgetEnabled = budgetEnabled != 0
	if daily.Valid {
		t.DailyBudgetAmountBase = &daily.Float64
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Trip{}, err
	}
	return t, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		tagsRaw   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&e.ID, &e.TripID, &e.DateTime, &e.AmountOriginal, &e.Currency,
		&e.FxRateToBase, &e.AmountBase, &e.Category, &e.Payment, &e.Note,
		&e.Location, &e.PaidBy, &tagsRaw, &createdAt, &updatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsRaw), &tags); err != nil {
		return core.Expense{}, fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) > 0 {
		e.Tags = tags
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nextDay(day string) (string, error) {
	t, err := core.ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(core.DayFormat), nil
}
