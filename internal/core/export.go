package core

import (
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the fixed column order expected by export consumers.
var CSVHeader = []string{
	"id", "tripId", "tripName", "dateTime", "category", "payment",
	"amountOriginal", "currency", "fxRateToBase", "amountBase",
	"baseCurrency", "note", "paidBy", "location", "tags",
	"createdAt", "updatedAt",
}

// ExportRow renders one expense as a CSV record in the CSVHeader column
// order. Tags are semicolon-joined; the text encoding itself is left to the
// caller.
func ExportRow(t Trip, e Expense) []string {
	return []string{
		e.ID,
		e.TripID,
		t.Name,
		e.DateTime,
		e.Category,
		e.Payment,
		formatAmount(e.AmountOriginal),
		e.Currency,
		formatAmount(e.FxRateToBase),
		formatAmount(e.AmountBase),
		t.BaseCurrency,
		e.Note,
		e.PaidBy,
		e.Location,
		strings.Join(e.Tags, ";"),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	}
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
