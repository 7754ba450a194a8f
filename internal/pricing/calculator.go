package pricing

import (
	"fmt"
	"math"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Evaluate prices a cart against a catalog snapshot. It is pure: lines are
// summed in product id order so identical inputs give bit-identical
// results, and neither argument is modified.
//
// A line whose product is missing from the catalog adds nothing to the
// subtotal but still counts toward ItemCount.
func Evaluate(state domain.CartState, catalog *domain.Catalog, cfg domain.PricingConfig) domain.PricingSnapshot {
	snap := domain.PricingSnapshot{
		Lines: make([]domain.Line, 0, len(state)),
	}

	for _, id := range state.IDs() {
		qty := state[id]
		snap.ItemCount += qty

		product, ok := catalog.Lookup(id)
		if !ok {
			snap.UnresolvedLines++
			snap.Lines = append(snap.Lines, domain.Line{ProductID: id, Quantity: qty})
			continue
		}

		lineTotal := float64(qty) * product.OfferPrice
		snap.Subtotal += lineTotal
		snap.Savings += float64(qty) * product.Savings()
		snap.Lines = append(snap.Lines, domain.Line{
			ProductID: id,
			Name:      product.Name,
			Quantity:  qty,
			UnitPrice: product.OfferPrice,
			LineTotal: lineTotal,
			Resolved:  true,
		})
	}

	snap.FreeDeliveryEligible = snap.Subtotal >= cfg.FreeDeliveryThreshold
	if !snap.FreeDeliveryEligible {
		snap.DeliveryFee = cfg.FlatDeliveryFee
	}
	snap.Total = snap.Subtotal + snap.DeliveryFee
	snap.AmountForFreeDelivery = math.Max(0, cfg.FreeDeliveryThreshold-snap.Subtotal)
	snap.FreeDeliveryProgress = progress(snap.Subtotal, cfg.FreeDeliveryThreshold)

	return snap
}

func progress(subtotal, threshold float64) float64 {
	if threshold <= 0 {
		return 100
	}
	return math.Min(100, subtotal/threshold*100)
}

// FormatMoney renders an amount in minor-unit precision. Rounding happens
// here and nowhere else.
func FormatMoney(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, Round(amount))
}

// Round rounds half away from zero to two decimal places.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}
