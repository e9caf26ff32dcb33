package cart

import (
	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/shopspring/decimal"
)

// StockReader looks up the live on-hand quantity of a product.
type StockReader interface {
	Find(id string) (domain.Product, bool)
}

// Cart is an ordered list of lines, at most one per product.
// It is not safe for concurrent use.
type Cart struct {
	stock StockReader
	lines []domain.CartLine
}

func New(stock StockReader) *Cart {
	return &Cart{stock: stock}
}

// Restore rebuilds a cart from persisted lines. Lines are taken as they are;
// stock is checked again on the next mutation and at checkout.
func Restore(stock StockReader, lines []domain.CartLine) *Cart {
	c := New(stock)
	for _, l := range lines {
		if l.Quantity <= 0 || c.index(l.ProductID) >= 0 {
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// BatchResult summarises AddMany. Err holds the first failure only.
type BatchResult struct {
	Added    []string
	Failures int
	Err      error
}

// AddOne adds a single unit of a product.
func (c *Cart) AddOne(productID string) error {
	p, ok := c.stock.Find(productID)
	if !ok {
		return &ItemError{ProductID: productID, Err: catalog.ErrProductNotFound}
	}
	if p.Quantity <= 0 {
		return &ItemError{ProductID: p.ID, ProductName: p.Name, Err: ErrOutOfStock}
	}

	i := c.index(productID)
	if i < 0 {
		c.lines = append(c.lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  1,
		})
		return nil
	}

	if c.lines[i].Quantity >= p.Quantity {
		return &ItemError{ProductID: p.ID, ProductName: p.Name, Err: ErrStockExhausted}
	}
	c.lines[i].Quantity++
	return nil
}

// AddMany applies AddOne to every id in order. A failure never stops the
// batch.
func (c *Cart) AddMany(productIDs []string) BatchResult {
	var res BatchResult
	for _, id := range productIDs {
		if err := c.AddOne(id); err != nil {
			res.Failures++
			if res.Err == nil {
				res.Err = err
			}
			continue
		}
		res.Added = append(res.Added, id)
	}
	return res
}

// SetQuantity sets the line for productID to n units. n <= 0 removes the
// line. A request above the on-hand quantity is clamped and reported with
// an *catalog.InsufficientStockError; the clamp still takes effect.
func (c *Cart) SetQuantity(productID string, n int) error {
	if n <= 0 {
		c.RemoveLine(productID)
		return nil
	}

	p, ok := c.stock.Find(productID)
	if !ok {
		c.RemoveLine(productID)
		return &ItemError{ProductID: productID, Err: catalog.ErrProductNotFound}
	}

	var clampErr error
	if n > p.Quantity {
		clampErr = &catalog.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   n,
			Available:   p.Quantity,
		}
		n = p.Quantity
	}

	if n <= 0 {
		c.RemoveLine(productID)
		return clampErr
	}

	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = n
	} else {
		c.lines = append(c.lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  n,
		})
	}
	return clampErr
}

// RemoveLine drops the line for productID if there is one.
func (c *Cart) RemoveLine(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total uses the prices captured on each line.
func (c *Cart) Total() decimal.Decimal {
	return domain.SumLines(c.lines)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	return domain.CopyLines(c.lines)
}

// Quantity returns the units of productID in the cart.
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
