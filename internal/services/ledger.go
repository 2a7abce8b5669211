// Package services orchestrates the ledger operations: validation at the
// boundary, derived-amount recomputation and the composite atomic units
// (cascade delete, bootstrap, full restore) built on the storage layer.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"viaggi/internal/core"
	"viaggi/internal/storage"
)

// Ledger is a stateless service over the record store. Every call passes a
// context and reads whatever it needs; no state survives between calls.
type Ledger struct {
	store *storage.Store
	now   func() time.Time
}

func NewLedger(store *storage.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Bootstrap seeds the schema marker and the default taxonomy lists, each
// independently and only when absent. Safe to call on every startup: a
// second call never resets user-edited settings.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	return l.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetMeta(ctx, storage.MetaSchemaVersion); errors.Is(err, core.ErrNotFound) {
			if err := q.SetMeta(ctx, storage.MetaSchemaVersion, core.SchemaVersion); err != nil {
				return err
			}
			slog.InfoContext(ctx, "Seeded schema version", "version", core.SchemaVersion)
		} else if err != nil {
			return err
		}

		if _, err := q.GetSettingsList(ctx, storage.SettingsCategories); errors.Is(err, core.ErrNotFound) {
			if err := q.PutSettingsList(ctx, storage.SettingsCategories, core.DefaultCategories()); err != nil {
				return err
			}
			slog.InfoContext(ctx, "Seeded default categories")
		} else if err != nil {
			return err
		}

		if _, err := q.GetSettingsList(ctx, storage.SettingsPaymentMethods); errors.Is(err, core.ErrNotFound) {
			if err := q.PutSettingsList(ctx, storage.SettingsPaymentMethods, core.DefaultPaymentMethods()); err != nil {
				return err
			}
			slog.InfoContext(ctx, "Seeded default payment methods")
		} else if err != nil {
			return err
		}

		return nil
	})
}

// CreateTrip validates and stores a new trip, assigning identity and
// creation timestamp.
func (l *Ledger) CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	if err := t.Validate(); err != nil {
		return core.Trip{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = l.now()
	if err := l.store.Queries().PutTrip(ctx, t); err != nil {
		return core.Trip{}, err
	}
	slog.InfoContext(ctx, "Trip created", "trip_id", t.ID, "name", t.Name, "base_currency", t.BaseCurrency)
	return t, nil
}

// UpdateTrip replaces a trip in place, preserving identity and creation
// timestamp. Changing the base currency is rejected once the trip has
// expenses, since their stored base amounts would silently go stale; the
// check and the write share one atomic unit.
func (l *Ledger) UpdateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	if err := t.Validate(); err != nil {
		return core.Trip{}, err
	}
	err := l.store.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetTrip(ctx, t.ID)
		if err != nil {
			return err
		}
		t.CreatedAt = existing.CreatedAt
		if t.BaseCurrency != existing.BaseCurrency {
			n, err := q.CountExpensesByTrip(ctx, t.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return core.ErrBaseCurrencyLocked
			}
		}
		return q.PutTrip(ctx, t)
	})
	if err != nil {
		return core.Trip{}, err
	}
	return t, nil
}

// DeleteTrip removes a trip and every expense referencing it in a single
// atomic unit: both disappear, or neither does.
func (l *Ledger) DeleteTrip(ctx context.Context, id string) error {
	return l.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetTrip(ctx, id); err != nil {
			return err
		}
		removed, err := q.DeleteExpensesByTrip(ctx, id)
		if err != nil {
			return err
		}
		if err := q.DeleteTrip(ctx, id); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Trip deleted", "trip_id", id, "expenses_removed", removed)
		return nil
	})
}

func (l *Ledger) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	return l.store.Queries().GetTrip(ctx, id)
}

func (l *Ledger) ListTrips(ctx context.Context) ([]core.Trip, error) {
	return l.store.Queries().ListTrips(ctx)
}

// CreateExpense validates an expense against its owning trip and the
// current taxonomy lists, then stores it with a recomputed base amount.
func (l *Ledger) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := l.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := l.writeExpense(ctx, &e); err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID, "trip_id", e.TripID,
		"amount_original", e.AmountOriginal, "currency", e.Currency,
		"amount_base", e.AmountBase)
	return e, nil
}

// UpdateExpense edits an expense in place: creation timestamp preserved,
// update timestamp refreshed, base amount recomputed.
func (l *Ledger) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	existing, err := l.store.Queries().GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = l.now()
	if err := l.writeExpense(ctx, &e); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// writeExpense is the single write path for expenses. It reads the owning
// trip and settings, normalizes the exchange rate for base-currency
// expenses, recomputes AmountBase and persists, all in one atomic unit.
func (l *Ledger) writeExpense(ctx context.Context, e *core.Expense) error {
	return l.store.InTx(ctx, func(q *storage.Queries) error {
		trip, err := q.GetTrip(ctx, e.TripID)
		if err != nil {
			return err
		}
		if e.Currency == trip.BaseCurrency {
			e.FxRateToBase = 1
		}
		if err := e.ValidateForTrip(trip); err != nil {
			return err
		}
		categories, err := q.GetSettingsList(ctx, storage.SettingsCategories)
		if err != nil {
			return err
		}
		if !slices.Contains(categories, e.Category) {
			return fmt.Errorf("%w: unknown category %q", core.ErrEmptyCategory, e.Category)
		}
		payments, err := q.GetSettingsList(ctx, storage.SettingsPaymentMethods)
		if err != nil {
			return err
		}
		if !slices.Contains(payments, e.Payment) {
			return fmt.Errorf("%w: unknown payment method %q", core.ErrEmptyPayment, e.Payment)
		}
		e.AmountBase = core.Convert(e.AmountOriginal, e.FxRateToBase, e.Currency, trip.BaseCurrency)
		return q.PutExpense(ctx, *e)
	})
}

func (l *Ledger) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return l.store.Queries().GetExpense(ctx, id)
}

func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	return l.store.Queries().DeleteExpense(ctx, id)
}

// ListExpenses returns every expense of a trip via the trip index.
func (l *Ledger) ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error) {
	return l.store.Queries().ListExpensesByTrip(ctx, tripID)
}

// ListExpensesRange returns a trip's expenses between two inclusive
// calendar dates via the (trip, date-time) index.
func (l *Ledger) ListExpensesRange(ctx context.Context, tripID, fromDay, toDay string) ([]core.Expense, error) {
	return l.store.Queries().ListExpensesByTripRange(ctx, tripID, fromDay, toDay)
}

// GetSettings reads both taxonomy lists.
func (l *Ledger) GetSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := l.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if s.Categories, err = q.GetSettingsList(ctx, storage.SettingsCategories); err != nil {
			return err
		}
		s.PaymentMethods, err = q.GetSettingsList(ctx, storage.SettingsPaymentMethods)
		return err
	})
	return s, err
}

// UpdateSettings replaces both taxonomy lists atomically. An empty list on
// either side rejects the whole update before any write.
func (l *Ledger) UpdateSettings(ctx context.Context, s core.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return l.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.PutSettingsList(ctx, storage.SettingsCategories, s.Categories); err != nil {
			return err
		}
		return q.PutSettingsList(ctx, storage.SettingsPaymentMethods, s.PaymentMethods)
	})
}

// Export assembles a full snapshot of the store in one atomic unit, so the
// backup is internally consistent.
func (l *Ledger) Export(ctx context.Context) (core.Snapshot, error) {
	snap := core.Snapshot{SchemaVersion: core.SchemaVersion}
	err := l.store.InTx(ctx, func(q *storage.Queries) error {
		if version, err := q.GetMeta(ctx, storage.MetaSchemaVersion); err == nil {
			snap.SchemaVersion = version
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		var err error
		if snap.Trips, err = q.ListTrips(ctx); err != nil {
			return err
		}
		if snap.Expenses, err = q.ListExpenses(ctx); err != nil {
			return err
		}
		categories, err := q.GetSettingsList(ctx, storage.SettingsCategories)
		if err != nil {
			return err
		}
		payments, err := q.GetSettingsList(ctx, storage.SettingsPaymentMethods)
		if err != nil {
			return err
		}
		snap.Config = &core.Settings{Categories: categories, PaymentMethods: payments}
		return nil
	})
	if err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// Restore replaces the whole store with the snapshot in one atomic unit:
// the payload shape is validated before anything is cleared, and a failure
// at any step leaves the prior state fully intact. Missing schema version
// or config fall back to defaults.
func (l *Ledger) Restore(ctx context.Context, snap core.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	err := l.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.ClearAll(ctx); err != nil {
			return err
		}
		version := snap.SchemaVersion
		if version == "" {
			version = core.SchemaVersion
		}
		if err := q.SetMeta(ctx, storage.MetaSchemaVersion, version); err != nil {
			return err
		}
		categories := core.DefaultCategories()
		payments := core.DefaultPaymentMethods()
		if snap.Config != nil {
			categories = snap.Config.Categories
			payments = snap.Config.PaymentMethods
		}
		if err := q.PutSettingsList(ctx, storage.SettingsCategories, categories); err != nil {
			return err
		}
		if err := q.PutSettingsList(ctx, storage.SettingsPaymentMethods, payments); err != nil {
			return err
		}
		for _, t := range snap.Trips {
			if err := q.PutTrip(ctx, t); err != nil {
				return err
			}
		}
		for _, e := range snap.Expenses {
			if err := q.PutExpense(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Snapshot restored",
		"trips", len(snap.Trips), "expenses", len(snap.Expenses))
	return nil
}

// Summary loads a materialized view of one trip's expenses and runs the
// aggregation engine over it. now is explicit so burn-rate results are
// reproducible.
func (l *Ledger) Summary(ctx context.Context, tripID string, f core.Filter, now time.Time) (core.Summary, error) {
	trip, err := l.store.Queries().GetTrip(ctx, tripID)
	if err != nil {
		return core.Summary{}, err
	}
	expenses, err := l.store.Queries().ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(trip, expenses, f, now), nil
}

// ExportCSVRows supplies the header and the filtered expense rows in the
// fixed export column order; the CSV text encoding lives with the caller.
func (l *Ledger) ExportCSVRows(ctx context.Context, tripID string, f core.Filter) ([][]string, error) {
	trip, err := l.store.Queries().GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := l.store.Queries().ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	rows := [][]string{core.CSVHeader}
	for _, e := range core.Apply(expenses, f) {
		rows = append(rows, core.ExportRow(trip, e))
	}
	return rows, nil
}
