package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in a cart. Name, Price and Image are copied from
// the product when the line is first added and are not refreshed later.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price * quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the persisted form of a register's cart.
type CartSnapshot struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Total sums the line subtotals.
func (s CartSnapshot) Total() decimal.Decimal {
	return SumLines(s.Lines)
}

// SumLines sums price * quantity over lines.
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CopyLines returns an independent copy of lines.
func CopyLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
