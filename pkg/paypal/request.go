package paypal

import (
	"strings"

	"github.com/go-pay/gopay"

	"github.com/tdbstore/tdb-backend/pkg/config"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/money"
)

// IntentRequest carries everything needed to open a CAPTURE-intent order
// with the provider. Brand name, URLs, and fallback description come from
// checkout configuration so callers only supply the per-order pieces.
type IntentRequest struct {
	ReferenceID string
	Amount      money.Amount
	Description string
	Checkout    config.CheckoutConfig
}

func (r IntentRequest) toBodyMap() (gopay.BodyMap, error) {
	if r.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "intent amount is not set")
	}

	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = r.Checkout.DefaultDescription
	}

	bm := make(gopay.BodyMap)
	bm.Set("intent", "CAPTURE")
	bm.Set("purchase_units", []gopay.BodyMap{
		purchaseUnit(r.ReferenceID, r.Amount, description),
	})
	bm.SetBodyMap("application_context", func(b gopay.BodyMap) {
		b.Set("brand_name", r.Checkout.BrandName).
			Set("landing_page", "NO_PREFERENCE").
			Set("user_action", "PAY_NOW").
			Set("shipping_preference", "NO_SHIPPING").
			Set("return_url", r.Checkout.ReturnURL()).
			Set("cancel_url", r.Checkout.CancelURL())
	})
	return bm, nil
}

func purchaseUnit(referenceID string, amount money.Amount, description string) gopay.BodyMap {
	unit := make(gopay.BodyMap)
	if referenceID != "" {
		unit.Set("reference_id", referenceID)
	}
	unit.Set("description", description)
	unit.SetBodyMap("amount", func(b gopay.BodyMap) {
		b.Set("currency_code", amount.Currency()).
			Set("value", amount.StringFixed())
	})
	return unit
}
