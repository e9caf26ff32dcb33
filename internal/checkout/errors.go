package checkout

import (
	"errors"
	"fmt"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// CheckoutFailedError is returned when a line can no longer be fulfilled at
// commit time. Nothing was changed.
type CheckoutFailedError struct {
	Reason      string
	ProductID   string
	ProductName string
	Err         error
}

func (e *CheckoutFailedError) Error() string {
	return fmt.Sprintf("checkout failed: %s", e.Reason)
}

func (e *CheckoutFailedError) Unwrap() error {
	return e.Err
}
