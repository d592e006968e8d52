package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a product or order does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock is returned when requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrValidation is returned for empty required fields, negative quantities or non-positive prices.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned for illegal order status transitions.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrConflict is returned when a delete is blocked by existing references.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateRequest is returned when a request id was already accepted.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ShortLine describes one requested line that exceeds available stock.
type ShortLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func (l ShortLine) String() string {
	name := l.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", l.ProductID)
	}
	return fmt.Sprintf("%s: requested %d, available %d", name, l.Requested, l.Available)
}

// InsufficientStockError carries every short line of a rejected operation,
// not just the first one encountered.
type InsufficientStockError struct {
	Lines []ShortLine
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.String()
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
