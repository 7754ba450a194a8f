package domain

import "errors"

var (
	ErrInvalidThreshold   = errors.New("free delivery threshold must be greater than 0")
	ErrInvalidDeliveryFee = errors.New("flat delivery fee must not be negative")
)

// PricingConfig holds the constants the pricing calculator is parameterized by.
type PricingConfig struct {
	CurrencySymbol        string  `yaml:"currency_symbol"`
	FreeDeliveryThreshold float64 `yaml:"free_delivery_threshold"`
	FlatDeliveryFee       float64 `yaml:"flat_delivery_fee"`
}

func (c PricingConfig) Validate() error {
	if c.FreeDeliveryThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if c.FlatDeliveryFee < 0 {
		return ErrInvalidDeliveryFee
	}
	return nil
}

// Line is one priced cart line. Unresolved lines reference a product the
// current catalog does not know and carry no price.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
	LineTotal float64
	Resolved  bool
}

// PricingSnapshot is derived from a cart and a catalog. It is never persisted.
type PricingSnapshot struct {
	Subtotal              float64
	DeliveryFee           float64
	FreeDeliveryEligible  bool
	Total                 float64
	ItemCount             int
	Savings               float64
	AmountForFreeDelivery float64
	FreeDeliveryProgress  float64
	Lines                 []Line
	UnresolvedLines       int
}
