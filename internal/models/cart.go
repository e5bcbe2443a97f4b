package models

import "time"

// CartLine is one product+quantity entry in the cart, as served by GET /cart/.
type CartLine struct {
	ID           int       `json:"id"`
	ProductID    int       `json:"product"`
	ProductName  string    `json:"product_name"`
	ProductPrice Money     `json:"product_price"`
	ProductImage string    `json:"product_image,omitempty"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// LineTotal is the price of this line (unit price times quantity).
func (l CartLine) LineTotal() float64 {
	return l.ProductPrice.Float64() * float64(l.Quantity)
}

// AddCartLineRequest is the request body for POST /cart/.
type AddCartLineRequest struct {
	ProductID int `json:"product"`
	Quantity  int `json:"quantity"`
}

// UpdateQuantityRequest is the request body for PATCH /cart/{id}/.
// Quantity is an absolute value, not a delta.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Discount is the active discount code state. At most one discount is active
// at a time; removal zeroes Amount and clears Code.
type Discount struct {
	Code    string
	Amount  float64
	Applied bool
}

// ApplyDiscountRequest is the request body for POST /apply-discount/.
type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

// ApplyDiscountResponse is the backend's answer to a valid code.
type ApplyDiscountResponse struct {
	DiscountAmount Money `json:"discount_amount"`
}
