package domain

import "sort"

// CartState maps product id to quantity. Every present key has quantity >= 1.
type CartState map[string]int

func (s CartState) Clone() CartState {
	out := make(CartState, len(s))
	for id, qty := range s {
		out[id] = qty
	}
	return out
}

// Count is the badge value: the sum of quantities, not the number of lines.
func (s CartState) Count() int {
	total := 0
	for _, qty := range s {
		total += qty
	}
	return total
}

// IDs returns the product ids in ascending order.
func (s CartState) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s CartState) Equal(other CartState) bool {
	if len(s) != len(other) {
		return false
	}
	for id, qty := range s {
		if q, ok := other[id]; !ok || q != qty {
			return false
		}
	}
	return true
}
