package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdbstore/tdb-backend/api/middleware"
	"github.com/tdbstore/tdb-backend/api/responses"
	"github.com/tdbstore/tdb-backend/api/validators"
	"github.com/tdbstore/tdb-backend/internal/payments"
	"github.com/tdbstore/tdb-backend/pkg/db/models"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/types"
)

// CreateOrder opens a payment intent with the gateway for the submitted
// amount and returns its id for client-side approval.
func CreateOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, amountAware(err))
			return
		}
		if payload.Amount == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInvalidAmount, "amount is required"))
			return
		}

		input := payments.CreateIntentInput{
			Amount:      *payload.Amount,
			Currency:    payload.Currency,
			Description: payload.Description,
			GuestName:   payload.GuestName,
			GuestEmail:  payload.GuestEmail,
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, payments.LineItem{
				Name:           item.Name,
				Qty:            item.Qty,
				UnitPriceCents: item.UnitPriceCents,
			})
		}
		if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
			if parsed, err := uuid.Parse(userID); err == nil {
				input.UserID = &parsed
			}
		}

		intentID, err := svc.CreateIntent(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, types.CreateOrderResponse{ID: intentID})
	}
}

// CaptureOrder finalizes an approved intent and returns the provider's
// capture result unchanged, so the storefront sees exactly what the gateway
// reported.
func CaptureOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload captureOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.OrderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderID is required"))
			return
		}

		result, err := svc.Capture(r.Context(), payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result.Raw)
	}
}

// GetOrder returns the internal order record with its payment state.
func GetOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// amountAware rewrites a type mismatch on the amount field into the invalid
// amount error, so sending a string amount gets the same response as a
// negative one.
func amountAware(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "amount" {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "amount must be a number")
	}
	return err
}

type createOrderRequest struct {
	Amount      *float64          `json:"amount"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	Description string            `json:"description" validate:"omitempty,max=127"`
	Items       []lineItemRequest `json:"items" validate:"omitempty,dive"`
	GuestName   string            `json:"guest_name" validate:"omitempty,max=120"`
	GuestEmail  string            `json:"guest_email" validate:"omitempty,email"`
}

type lineItemRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Qty            int    `json:"qty" validate:"required,min=1"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"required,min=1"`
}

type captureOrderRequest struct {
	OrderID string `json:"orderID"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	TotalCents  int64               `json:"total_cents"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	Guest       bool                `json:"guest"`
	Items       []orderItemResponse `json:"items"`
	Payment     *paymentResponse    `json:"payment,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

type paymentResponse struct {
	Provider   string     `json:"provider"`
	IntentID   *string    `json:"intent_id,omitempty"`
	Status     string     `json:"status"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID,
		Status:      string(order.Status),
		TotalCents:  order.TotalCents,
		Currency:    order.Currency,
		Description: order.Description,
		Guest:       order.IsGuest(),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	if order.Payment != nil {
		resp.Payment = &paymentResponse{
			Provider:   string(order.Payment.Provider),
			IntentID:   order.Payment.IntentID,
			Status:     string(order.Payment.Status),
			CapturedAt: order.Payment.CapturedAt,
		}
	}
	return resp
}
