package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry. Quantity is the on-hand stock and is owned by
// the catalog; every other holder works with a copy.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// ProductAttrs is the raw input for creating or editing a product.
// Price and Quantity arrive as text and are coerced by the catalog.
type ProductAttrs struct {
	Name     string
	Price    string
	Quantity string
	Image    string
}

// InStock reports whether at least one unit is on hand.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
