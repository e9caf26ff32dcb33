package publisher

import (
	"time"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/shopspring/decimal"
)

func testTransaction(id string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Date:        time.Now().UTC(),
		Items:       []domain.CartLine{{ProductID: "pen", Name: "Pen", Price: decimal.NewFromInt(5), Quantity: 1}},
		TotalAmount: decimal.NewFromInt(5),
		Customer:    domain.Customer{Name: domain.NotProvided, Phone: domain.NotProvided, Email: domain.NotProvided},
	}
}
