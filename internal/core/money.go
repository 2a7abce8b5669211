// Package core holds the domain types and the pure money/aggregation
// arithmetic of the ledger. Nothing in this package touches storage.
package core

import "github.com/shopspring/decimal"

// zeroDecimalCurrencies are the codes whose smallest unit is a whole unit,
// so base amounts in them are rounded to integers.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {},
	"ISK": {}, "JPY": {}, "KMF": {}, "KRW": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// DecimalsFor returns the number of decimal places amounts in the given
// currency are rounded to: 0 for zero-decimal currencies, 2 otherwise.
func DecimalsFor(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return 0
	}
	return 2
}

// Convert computes the base-currency amount of an expense from its original
// amount and the user-entered exchange rate. A same-currency expense keeps
// its original amount untouched; anything else is multiplied by the rate and
// rounded half-up to the base currency's decimal places.
//
// Pure and deterministic: identical inputs always yield the identical output.
func Convert(amountOriginal, fxRateToBase float64, currency, baseCurrency string) float64 {
	if currency == baseCurrency {
		return amountOriginal
	}
	product := decimal.NewFromFloat(amountOriginal).Mul(decimal.NewFromFloat(fxRateToBase))
	return roundHalfUp(product, DecimalsFor(baseCurrency))
}

// RoundAmount rounds an amount half-up to the given currency's decimals.
func RoundAmount(amount float64, currency string) float64 {
	return roundHalfUp(decimal.NewFromFloat(amount), DecimalsFor(currency))
}

// roundHalfUp rounds away from zero on ties, which for the non-negative
// amounts handled here is exactly half-up.
func roundHalfUp(d decimal.Decimal, places int32) float64 {
	f, _ := d.Round(places).Float64()
	return f
}
