package service

import (
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/threshold"
)

// View is what a shopper sees after an operation.
type View struct {
	SessionID            string
	Cart                 domain.CartState
	Pricing              domain.PricingSnapshot
	FreeDeliveryUnlocked bool
}

// Session is one shopper's engine: cart store, threshold detector and
// checkout gate. Its mutex gives every shopper a single logical thread.
type Session struct {
	mu       sync.Mutex
	id       string
	store    *cart.Store
	detector *threshold.Detector
	gate     *checkout.Gate
	lastUsed time.Time
	closed   bool // evicted; never used again
}

func newSession(id string, store *cart.Store, freeDeliveryAt float64, now time.Time) *Session {
	return &Session{
		id:       id,
		store:    store,
		detector: threshold.NewDetector(freeDeliveryAt),
		gate:     checkout.NewGate(store),
		lastUsed: now,
	}
}

// evaluate must be called with mu held.
func (s *Session) evaluate(catalog *domain.Catalog, cfg domain.PricingConfig) View {
	state := s.store.State()
	snap := pricing.Evaluate(state, catalog, cfg)
	return View{
		SessionID:            s.id,
		Cart:                 state,
		Pricing:              snap,
		FreeDeliveryUnlocked: s.detector.Observe(snap.Subtotal),
	}
}
