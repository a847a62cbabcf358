package paypal

import (
	"testing"

	"github.com/go-pay/gopay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdbstore/tdb-backend/pkg/config"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/money"
)

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		ClientURL:          "https://shop.example.com",
		BrandName:          "TDB",
		DefaultCurrency:    "GBP",
		DefaultDescription: "TDB",
	}
}

func mustAmount(t *testing.T, raw float64, currency string) money.Amount {
	t.Helper()
	amount, err := money.Parse(raw, currency, "GBP")
	require.NoError(t, err)
	return amount
}

func TestIntentRequest_ToBodyMap(t *testing.T) {
	req := IntentRequest{
		ReferenceID: "order-123",
		Amount:      mustAmount(t, 25.5, "GBP"),
		Description: "Hoodie x2",
		Checkout:    testCheckoutConfig(),
	}

	bm, err := req.toBodyMap()
	require.NoError(t, err)

	assert.Equal(t, "CAPTURE", bm["intent"])

	units, ok := bm["purchase_units"].([]gopay.BodyMap)
	require.True(t, ok)
	require.Len(t, units, 1)
	assert.Equal(t, "order-123", units[0]["reference_id"])
	assert.Equal(t, "Hoodie x2", units[0]["description"])

	amount, ok := units[0]["amount"].(gopay.BodyMap)
	require.True(t, ok)
	assert.Equal(t, "GBP", amount["currency_code"])
	assert.Equal(t, "25.50", amount["value"])

	appCtx, ok := bm["application_context"].(gopay.BodyMap)
	require.True(t, ok)
	assert.Equal(t, "TDB", appCtx["brand_name"])
	assert.Equal(t, "PAY_NOW", appCtx["user_action"])
	assert.Equal(t, "NO_SHIPPING", appCtx["shipping_preference"])
	assert.Equal(t, "https://shop.example.com/order-success", appCtx["return_url"])
	assert.Equal(t, "https://shop.example.com/cart", appCtx["cancel_url"])
}

func TestIntentRequest_ToBodyMap_Defaults(t *testing.T) {
	req := IntentRequest{
		Amount:   mustAmount(t, 10, ""),
		Checkout: testCheckoutConfig(),
	}

	bm, err := req.toBodyMap()
	require.NoError(t, err)

	units := bm["purchase_units"].([]gopay.BodyMap)
	require.Len(t, units, 1)
	assert.Equal(t, "TDB", units[0]["description"])
	assert.NotContains(t, units[0], "reference_id")

	amount := units[0]["amount"].(gopay.BodyMap)
	assert.Equal(t, "GBP", amount["currency_code"])
	assert.Equal(t, "10.00", amount["value"])
}

func TestIntentRequest_ToBodyMap_ZeroAmount(t *testing.T) {
	req := IntentRequest{Checkout: testCheckoutConfig()}

	_, err := req.toBodyMap()
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidAmount, typed.Code())
}
