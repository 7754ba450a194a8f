package domain

import "time"

// OrderLine is a resolved cart line handed to order submission.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// OrderRequest is what a finalize intent from a signed-in shopper produces.
type OrderRequest struct {
	SessionID   string      `json:"session_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderLine `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	DeliveryFee float64     `json:"delivery_fee"`
	Total       float64     `json:"total_amount"`
	Currency    string      `json:"currency"`
	RequestedAt time.Time   `json:"requested_at"`
}
