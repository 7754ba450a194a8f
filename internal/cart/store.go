package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"go.uber.org/zap"
)

const defaultSaveTimeout = time.Second

// Store owns one shopper's cart. Every mutation writes the whole cart
// through to the persister before returning; a failed write is logged and
// the in-memory cart stays authoritative.
//
// A Store is not safe for concurrent use.
type Store struct {
	key         string
	state       domain.CartState
	persister   persistence.Persister
	logger      *zap.Logger
	saveTimeout time.Duration
}

// Open loads the cart stored under key, starting empty when nothing usable
// is stored. A backend error is returned as is: starting empty then would
// let the first write-through overwrite a cart that was never read.
func Open(ctx context.Context, key string, persister persistence.Persister, logger *zap.Logger) (*Store, error) {
	state, ok, err := persister.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	if !ok || state == nil {
		state = domain.CartState{}
	}
	return &Store{
		key:         key,
		state:       state.Clone(),
		persister:   persister,
		logger:      logger,
		saveTimeout: defaultSaveTimeout,
	}, nil
}

func (s *Store) Key() string {
	return s.key
}

// Add increments the quantity of id, inserting it at 1.
func (s *Store) Add(id string) error {
	if id == "" {
		return domain.ErrInvalidProductID
	}
	s.state[id]++
	s.persist()
	return nil
}

// RemoveOne decrements the quantity of id and drops the line at zero.
// Removing an absent product changes nothing.
func (s *Store) RemoveOne(id string) error {
	if id == "" {
		return domain.ErrInvalidProductID
	}
	if qty, ok := s.state[id]; ok {
		if qty <= 1 {
			delete(s.state, id)
		} else {
			s.state[id] = qty - 1
		}
	}
	s.persist()
	return nil
}

// SetQuantity sets the quantity of id; n <= 0 removes the line.
func (s *Store) SetQuantity(id string, n int) error {
	if id == "" {
		return domain.ErrInvalidProductID
	}
	if n <= 0 {
		delete(s.state, id)
	} else {
		s.state[id] = n
	}
	s.persist()
	return nil
}

func (s *Store) DeleteLine(id string) error {
	if id == "" {
		return domain.ErrInvalidProductID
	}
	delete(s.state, id)
	s.persist()
	return nil
}

func (s *Store) Clear() {
	s.state = domain.CartState{}
	s.persist()
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	return s.state.Count()
}

func (s *Store) Quantity(id string) int {
	return s.state[id]
}

// State returns a copy of the cart.
func (s *Store) State() domain.CartState {
	return s.state.Clone()
}

func (s *Store) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, s.key, s.state.Clone()); err != nil {
		s.logger.Error("cart save failed",
			zap.String("key", s.key),
			zap.Int("lines", len(s.state)),
			zap.Error(err))
	}
}
