package domain

import (
	"fmt"
	"math"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CanTransitionTo reports whether the status change is legal.
// Cancelled is terminal; pending -> completed is retained for future flows.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	case OrderStatusCompleted:
		return next == OrderStatusCancelled
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

// SalesOrder aggregates 1..N lines.
type SalesOrder struct {
	ID            int64         `json:"id"`
	CustomerID    int64         `json:"customer_id"`
	TotalAmount   float64       `json:"total_amount"`
	Discount      float64       `json:"discount"`
	FinalAmount   float64       `json:"final_amount"` // total_amount - discount, never negative
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// OrderLine references a product with a price snapshot taken at order time.
type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

// RoundMoney keeps monetary values at two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrderTotal sums line subtotals.
func OrderTotal(lines []OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal
	}
	return RoundMoney(total)
}

// ValidateOrderInput checks the parts of an order that do not require store
// state: at least one line, positive quantities, discount within the total.
func ValidateOrderInput(lines []OrderLine, discount float64, payment PaymentMethod) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one line", ErrValidation)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity must be positive for product %d", ErrValidation, l.ProductID)
		}
	}
	if discount < 0 {
		return fmt.Errorf("%w: discount cannot be negative", ErrValidation)
	}
	if !payment.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, payment)
	}
	if total := OrderTotal(lines); total-discount < 0 {
		return fmt.Errorf("%w: discount %.2f exceeds order total %.2f", ErrValidation, discount, total)
	}
	return nil
}
