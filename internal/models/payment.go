package models

// PaymentMeta travels with the payment session so the backend can tie the
// provider transaction back to the cart contents.
type PaymentMeta struct {
	CartItems []string `json:"cartItems"`
	UserID    int      `json:"userId"`
}

// InitiatePaymentRequest is the request body for POST /payments/initiate/.
// The backend forwards it to the payment provider and answers with a hosted
// checkout URL. TxRef is generated client-side so the transaction can be
// traced even when initiation fails before the provider answers.
type InitiatePaymentRequest struct {
	TxRef       string      `json:"tx_ref"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Meta        PaymentMeta `json:"meta"`
}

// InitiatePaymentResponse wraps the provider's session handle.
type InitiatePaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
		TxRef       string `json:"tx_ref,omitempty"`
	} `json:"data"`
}

// ConfirmOrderRequest is the request body for POST /confirm-order/, keyed by
// the identifier the provider put in the return URL.
type ConfirmOrderRequest struct {
	SessionID string `json:"session_id"`
}

// ConfirmOrderResponse is the backend's confirmation result.
type ConfirmOrderResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}
