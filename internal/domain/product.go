package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProductID = errors.New("product id must not be empty")
	ErrInvalidPrice     = errors.New("offer price must be between 0 and price")
)

// Product is a catalog record. The engine never mutates it.
type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Price      float64  `json:"price"`
	OfferPrice float64  `json:"offer_price"`
	InStock    bool     `json:"in_stock"`
	Images     []string `json:"images"`
}

func (p Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidProductID
	}
	if p.Price < 0 || p.OfferPrice < 0 || p.OfferPrice > p.Price {
		return fmt.Errorf("product %s: %w", p.ID, ErrInvalidPrice)
	}
	return nil
}

// Savings is the per-unit discount shown as a struck-through price.
func (p Product) Savings() float64 {
	return p.Price - p.OfferPrice
}

// Catalog is an immutable, indexed snapshot of an ordered product list.
type Catalog struct {
	products []Product
	index    map[string]int
}

// NewCatalog copies products into a snapshot. The first record wins when
// an id repeats.
func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}
	for _, p := range products {
		if _, exists := c.index[p.ID]; exists {
			continue
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

func (c *Catalog) Lookup(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy in catalog order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// FilterByCategory keeps products whose category matches, ignoring case.
// An empty category keeps everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// InStock keeps products that can currently be bought.
func InStock(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.InStock {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps products whose name contains query, ignoring case.
func Search(products []Product, query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	needle := strings.ToLower(query)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
