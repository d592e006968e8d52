package domain

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog item. Stock mirrors the inventory record quantity and
// is written only by inventory transactions.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"` // unique
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	Stock     int       `json:"stock"`
	Category  string    `json:"category"`
	Barcode   string    `json:"barcode"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: product price must be positive, got %.2f", ErrValidation, p.Price)
	}
	if p.Cost < 0 {
		return fmt.Errorf("%w: product cost cannot be negative, got %.2f", ErrValidation, p.Cost)
	}
	return nil
}

// Customer is a reference entity for orders.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	return nil
}

// Supplier is a reference entity for stock receipts.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", ErrValidation)
	}
	return nil
}
