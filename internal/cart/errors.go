package cart

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/superscan/internal/catalog"
)

var (
	ErrOutOfStock     = errors.New("out of stock")
	ErrStockExhausted = errors.New("no more units in stock")
)

// ItemError ties a failed add to the product it was for.
type ItemError struct {
	ProductID   string
	ProductName string
	Err         error
}

func (e *ItemError) Error() string {
	switch {
	case errors.Is(e.Err, catalog.ErrProductNotFound):
		return fmt.Sprintf("product with id %s not found", e.ProductID)
	case errors.Is(e.Err, ErrOutOfStock):
		return fmt.Sprintf("%s is out of stock", e.ProductName)
	case errors.Is(e.Err, ErrStockExhausted):
		return fmt.Sprintf("no more %s in stock", e.ProductName)
	default:
		return fmt.Sprintf("%s: %v", e.ProductID, e.Err)
	}
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
