package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NotProvided replaces customer details that were left empty at checkout.
const NotProvided = "not provided"

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Normalize fills empty fields with NotProvided.
func (c Customer) Normalize() Customer {
	return Customer{
		Name:  orNotProvided(c.Name),
		Phone: orNotProvided(c.Phone),
		Email: orNotProvided(c.Email),
	}
}

func orNotProvided(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotProvided
	}
	return s
}

// Transaction is an immutable record of a completed sale.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Items       []CartLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Customer    Customer        `json:"customer"`
}

// ItemCount is the number of units sold across all lines.
func (t Transaction) ItemCount() int {
	n := 0
	for _, item := range t.Items {
		n += item.Quantity
	}
	return n
}

// Clone returns a copy that shares no slices with t.
func (t Transaction) Clone() Transaction {
	t.Items = CopyLines(t.Items)
	return t
}
