package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
)

// Currencies the storefront sells in. Three-letter codes outside this set are
// rejected before any gateway call is made.
var supportedCurrencies = map[string]struct{}{
	"GBP": {}, "USD": {}, "EUR": {}, "CAD": {}, "AUD": {},
	"NZD": {}, "CHF": {}, "SEK": {}, "NOK": {}, "DKK": {},
	"SGD": {}, "HKD": {}, "MXN": {}, "BRL": {}, "PLN": {},
}

// Amount is a validated monetary value, normalized to two decimal places.
type Amount struct {
	value    decimal.Decimal
	currency string
}

// Parse validates the raw amount and optional currency. The value must be
// strictly positive; an empty currency falls back to defaultCurrency. The
// result is rounded to the gateway's two-decimal minor unit.
func Parse(raw float64, currency, defaultCurrency string) (Amount, error) {
	// NewFromFloat panics on non-finite input
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Amount{}, pkgerrors.New(pkgerrors.CodeInvalidAmount, "Invalid amount").
			WithDetails(map[string]any{"amount": fmt.Sprintf("%v", raw)})
	}
	value := decimal.NewFromFloat(raw)
	if !value.IsPositive() {
		return Amount{}, pkgerrors.New(pkgerrors.CodeInvalidAmount, "Invalid amount").
			WithDetails(map[string]any{"amount": raw})
	}

	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(defaultCurrency))
	}
	if err := validateCurrency(code); err != nil {
		return Amount{}, err
	}

	return Amount{value: value.Round(2), currency: code}, nil
}

func validateCurrency(code string) error {
	if len(code) != 3 {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, fmt.Sprintf("invalid currency code %q", code)).
			WithDetails(map[string]any{"currency": code})
	}
	if _, ok := supportedCurrencies[code]; !ok {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, fmt.Sprintf("unsupported currency %q", code)).
			WithDetails(map[string]any{"currency": code})
	}
	return nil
}

// Currency returns the normalized three-letter code.
func (a Amount) Currency() string {
	return a.currency
}

// StringFixed renders the value with exactly two decimal places, the format
// the gateway expects in purchase units.
func (a Amount) StringFixed() string {
	return a.value.StringFixed(2)
}

// Cents returns the amount in minor units for persistence.
func (a Amount) Cents() int64 {
	return a.value.Mul(decimal.NewFromInt(100)).IntPart()
}

// IsZero reports whether the amount was never parsed.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}
