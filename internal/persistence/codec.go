package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrMalformedCart   = errors.New("malformed cart payload")
	errMissingQuantity = errors.New("missing quantity")
)

// legacyLine is the {"quantity": n} shape written by an earlier revision of
// the storefront. It is migrated to a bare quantity on load.
type legacyLine struct {
	Quantity *int `json:"quantity"`
}

// Encode writes the canonical {productId: quantity} shape.
func Encode(state domain.CartState) ([]byte, error) {
	if state == nil {
		state = domain.CartState{}
	}
	data, err := json.Marshal(map[string]int(state))
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode reads canonical and legacy payloads. Lines with an empty id or a
// quantity below 1 are dropped; any other irregularity makes the whole
// payload malformed.
func Decode(data []byte) (domain.CartState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedCart)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	state := make(domain.CartState, len(raw))
	for id, value := range raw {
		qty, err := decodeQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", ErrMalformedCart, id, err)
		}
		if id == "" || qty <= 0 {
			continue
		}
		state[id] = qty
	}
	return state, nil
}

func decodeQuantity(value json.RawMessage) (int, error) {
	var qty int
	if err := json.Unmarshal(value, &qty); err == nil {
		return qty, nil
	}

	var legacy legacyLine
	if err := json.Unmarshal(value, &legacy); err != nil {
		return 0, err
	}
	if legacy.Quantity == nil {
		return 0, errMissingQuantity
	}
	return *legacy.Quantity, nil
}
