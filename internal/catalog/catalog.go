package catalog

import (
	"strings"
	"sync"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/google/uuid"
)

// StockRequest asks for Quantity units of one product.
type StockRequest struct {
	ProductID string
	Quantity  int
}

// Catalog keeps products in insertion order and owns their on-hand quantity.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
	newID    func() string
}

func New() *Catalog {
	return &Catalog{
		products: make(map[string]*domain.Product),
		newID:    uuid.NewString,
	}
}

// Find returns a copy of the product. A missing product is not an error.
func (c *Catalog) Find(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}

// Add creates a product with a fresh id.
func (c *Catalog) Add(attrs domain.ProductAttrs) domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.insert(attrs)
}

// AddBatch creates several products as one update.
func (c *Catalog) AddBatch(batch []domain.ProductAttrs) []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := make([]domain.Product, 0, len(batch))
	for _, attrs := range batch {
		added = append(added, c.insert(attrs))
	}
	return added
}

func (c *Catalog) insert(attrs domain.ProductAttrs) domain.Product {
	p := &domain.Product{
		ID:       c.newID(),
		Name:     strings.TrimSpace(attrs.Name),
		Price:    coercePrice(attrs.Price),
		Quantity: coerceQuantity(attrs.Quantity),
		Image:    attrs.Image,
	}
	c.products[p.ID] = p
	c.order = append(c.order, p.ID)
	return *p
}

// Update replaces the attributes of an existing product. An empty image
// keeps the current one.
func (c *Catalog) Update(id string, attrs domain.ProductAttrs) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, &NotFoundError{ProductID: id}
	}

	p.Name = strings.TrimSpace(attrs.Name)
	p.Price = coercePrice(attrs.Price)
	p.Quantity = coerceQuantity(attrs.Quantity)
	if attrs.Image != "" {
		p.Image = attrs.Image
	}
	return *p, nil
}

// Put stores p as is, keeping its position when it already exists.
func (c *Catalog) Put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	stored := p
	c.products[p.ID] = &stored
}

// Remove deletes a product and returns what was removed.
func (c *Catalog) Remove(id string) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, &NotFoundError{ProductID: id}
	}
	delete(c.products, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return *p, nil
}

// DecrementStock removes amount units from one product.
func (c *Catalog) DecrementStock(id string, amount int) error {
	return c.DecrementAll([]StockRequest{{ProductID: id, Quantity: amount}}, nil)
}

// DecrementAll removes stock for every request or for none of them.
// Requests for the same product are summed. When commit is non-nil it is
// called with the post-decrement products after validation succeeds; an
// error from commit leaves the catalog untouched.
func (c *Catalog) DecrementAll(requests []StockRequest, commit func([]domain.Product) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := mergeRequests(requests)

	// First pass: validate every request
	for _, req := range merged {
		p, ok := c.products[req.ProductID]
		if !ok {
			return &NotFoundError{ProductID: req.ProductID}
		}
		if req.Quantity > p.Quantity {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   req.Quantity,
				Available:   p.Quantity,
			}
		}
	}

	updated := make([]domain.Product, 0, len(merged))
	for _, req := range merged {
		p := *c.products[req.ProductID]
		p.Quantity -= req.Quantity
		updated = append(updated, p)
	}

	if commit != nil {
		if err := commit(updated); err != nil {
			return err
		}
	}

	// Second pass: apply
	for _, p := range updated {
		c.products[p.ID].Quantity = p.Quantity
	}
	return nil
}

func mergeRequests(requests []StockRequest) []StockRequest {
	merged := make([]StockRequest, 0, len(requests))
	index := make(map[string]int, len(requests))
	for _, req := range requests {
		if req.Quantity < 0 {
			req.Quantity = 0
		}
		if i, ok := index[req.ProductID]; ok {
			merged[i].Quantity += req.Quantity
			continue
		}
		index[req.ProductID] = len(merged)
		merged = append(merged, req)
	}
	return merged
}

// List returns every product in insertion order.
func (c *Catalog) List() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.products[id])
	}
	return out
}

// Search matches a case-insensitive substring of the product name.
// An empty query matches nothing.
func (c *Catalog) Search(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Product{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, id := range c.order {
		p := c.products[id]
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, *p)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Snapshot is List under another name, used by persistence adapters.
func (c *Catalog) Snapshot() []domain.Product {
	return c.List()
}

// Restore replaces the catalog content with products, keeping their order.
func (c *Catalog) Restore(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = make(map[string]*domain.Product, len(products))
	c.order = make([]string, 0, len(products))
	for _, p := range products {
		stored := p
		if _, dup := c.products[p.ID]; !dup {
			c.order = append(c.order, p.ID)
		}
		c.products[p.ID] = &stored
	}
}
