package types

// MessageResponse is the error body every endpoint returns: a human-readable
// message, plus the underlying detail when the error class allows exposing it.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CreateOrderResponse returns the gateway intent id to the checkout page.
type CreateOrderResponse struct {
	ID string `json:"id"`
}
