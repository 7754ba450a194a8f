package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/threshold"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// OrderSubmitter receives finalized carts of signed-in shoppers.
type OrderSubmitter interface {
	Submit(ctx context.Context, order domain.OrderRequest) error
}

// CrossingObserver is told when a session unlocks free delivery.
type CrossingObserver func(sessionID string, c threshold.Crossing)

type CheckoutResult struct {
	Signal checkout.Signal
	View   View
	Order  *domain.OrderRequest
}

const loadTimeout = 2 * time.Second

type CartService struct {
	persister persistence.Persister
	source    catalog.Source
	submitter OrderSubmitter
	cfg       domain.PricingConfig
	logger    *zap.Logger
	now       func() time.Time

	catalog atomic.Pointer[domain.Catalog]

	mu        sync.RWMutex
	sessions  map[string]*Session
	observers []CrossingObserver
	sfg       singleflight.Group // one load per session id
}

func NewCartService(
	persister persistence.Persister,
	source catalog.Source,
	submitter OrderSubmitter,
	cfg domain.PricingConfig,
	logger *zap.Logger) *CartService {

	s := &CartService{
		persister: persister,
		source:    source,
		submitter: submitter,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
	s.catalog.Store(domain.NewCatalog(nil))
	return s
}

// OnFreeDeliveryUnlocked registers fn for every session, open or not.
func (s *CartService) OnFreeDeliveryUnlocked(fn CrossingObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *CartService) Config() domain.PricingConfig {
	return s.cfg
}

// Catalog returns the current immutable catalog snapshot.
func (s *CartService) Catalog() *domain.Catalog {
	return s.catalog.Load()
}

// RefreshCatalog replaces the catalog snapshot. On failure the previous
// snapshot stays in use.
func (s *CartService) RefreshCatalog(ctx context.Context) error {
	products, err := s.source.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	s.catalog.Store(domain.NewCatalog(products))
	s.logger.Debug("catalog refreshed", zap.Int("products", len(products)))
	return nil
}

// Product reads one product from the catalog source rather than the
// in-memory snapshot.
func (s *CartService) Product(ctx context.Context, productID string) (domain.Product, error) {
	if productID == "" {
		return domain.Product{}, domain.ErrInvalidProductID
	}
	return s.source.Get(ctx, productID)
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, nil)
}

func (s *CartService) AddItem(ctx context.Context, sessionID, productID string) (View, error) {
	return s.apply(ctx, sessionID, func(c *cart.Store) error {
		return c.Add(productID)
	})
}

func (s *CartService) RemoveOne(ctx context.Context, sessionID, productID string) (View, error) {
	return s.apply(ctx, sessionID, func(c *cart.Store) error {
		return c.RemoveOne(productID)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (View, error) {
	return s.apply(ctx, sessionID, func(c *cart.Store) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *CartService) DeleteLine(ctx context.Context, sessionID, productID string) (View, error) {
	return s.apply(ctx, sessionID, func(c *cart.Store) error {
		return c.DeleteLine(productID)
	})
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, func(c *cart.Store) error {
		c.Clear()
		return nil
	})
}

// Checkout runs a finalize intent through the gate. A signed-in shopper's
// cart is handed to the order submitter and left as is; an anonymous
// shopper's cart is cleared and authentication is requested.
func (s *CartService) Checkout(ctx context.Context, sessionID, userID string) (CheckoutResult, error) {
	var result CheckoutResult
	err := s.withSession(ctx, sessionID, func(sess *Session) error {
		result.Signal = sess.gate.Finalize(userID != "")
		result.View = sess.evaluate(s.Catalog(), s.cfg)

		if result.Signal == checkout.RequestAuthentication {
			s.logger.Info("anonymous checkout, cart cleared", zap.String("session_id", sessionID))
			return nil
		}

		order := s.buildOrder(sessionID, userID, result.View.Pricing)
		if len(order.Items) == 0 {
			return ErrEmptyCart
		}
		if err := s.submitter.Submit(ctx, order); err != nil {
			s.logger.Error("order submission failed", zap.String("session_id", sessionID), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrOrderSubmission, err)
		}
		result.Order = &order
		return nil
	})
	return result, err
}

func (s *CartService) buildOrder(sessionID, userID string, snap domain.PricingSnapshot) domain.OrderRequest {
	items := make([]domain.OrderLine, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		if !line.Resolved {
			continue
		}
		items = append(items, domain.OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return domain.OrderRequest{
		SessionID:   sessionID,
		UserID:      userID,
		Items:       items,
		Subtotal:    snap.Subtotal,
		DeliveryFee: snap.DeliveryFee,
		Total:       snap.Total,
		Currency:    s.cfg.CurrencySymbol,
		RequestedAt: s.now().UTC(),
	}
}

func (s *CartService) apply(ctx context.Context, sessionID string, mutate func(*cart.Store) error) (View, error) {
	var view View
	err := s.withSession(ctx, sessionID, func(sess *Session) error {
		if mutate != nil {
			if err := mutate(sess.store); err != nil {
				return err
			}
		}
		view = sess.evaluate(s.Catalog(), s.cfg)
		return nil
	})
	return view, err
}

// withSession runs fn with the session lock held. A session evicted while
// the caller waited for its lock is reopened from the persister.
func (s *CartService) withSession(ctx context.Context, sessionID string, fn func(*Session) error) error {
	for {
		sess, err := s.session(ctx, sessionID)
		if err != nil {
			return err
		}

		sess.mu.Lock()
		if sess.closed {
			sess.mu.Unlock()
			continue
		}
		sess.lastUsed = s.now()
		err = fn(sess)
		sess.mu.Unlock()
		return err
	}
}

func (s *CartService) session(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	if sess := s.lookup(sessionID); sess != nil {
		return sess, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if sess := s.lookup(sessionID); sess != nil {
			return sess, nil
		}

		// the load is shared by every caller waiting on this key
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		store, err := cart.Open(loadCtx, sessionID, s.persister, s.logger)
		if err != nil {
			s.logger.Warn("cart unavailable", zap.String("session_id", sessionID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
		}

		sess := newSession(sessionID, store, s.cfg.FreeDeliveryThreshold, s.now())
		sess.detector.Subscribe(func(c threshold.Crossing) {
			s.notifyCrossing(sessionID, c)
		})
		// the first evaluation primes the detector
		sess.evaluate(s.Catalog(), s.cfg)

		s.mu.Lock()
		s.sessions[sessionID] = sess
		s.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (s *CartService) notifyCrossing(sessionID string, c threshold.Crossing) {
	s.logger.Info("free delivery unlocked",
		zap.String("session_id", sessionID),
		zap.Float64("subtotal", c.Current))

	s.mu.RLock()
	observers := append([]CrossingObserver(nil), s.observers...)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(sessionID, c)
	}
}

func (s *CartService) lookup(sessionID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

// EvictIdle drops sessions unused for longer than maxIdle and returns how
// many were dropped. Sessions busy with an operation are skipped. Carts
// live on in the persister and are reloaded on the next request.
func (s *CartService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			sess.closed = true
			delete(s.sessions, id)
			evicted++
		}
		sess.mu.Unlock()
	}
	return evicted
}

// SessionCount is the number of sessions held in memory.
func (s *CartService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
