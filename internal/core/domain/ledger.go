package domain

import (
	"fmt"
	"time"
)

// ChangeKind is the kind of stock-quantity change a ledger entry records.
type ChangeKind string

const (
	ChangeIn         ChangeKind = "in"
	ChangeOut        ChangeKind = "out"
	ChangeSale       ChangeKind = "sale"
	ChangeAdjustment ChangeKind = "adjustment"
)

// ReferenceKind names the document that caused a stock change.
type ReferenceKind string

const (
	RefStockIn    ReferenceKind = "stock_in"
	RefStockOut   ReferenceKind = "stock_out"
	RefAdjustment ReferenceKind = "adjustment"
	RefSalesOrder ReferenceKind = "sales_order"
)

// LedgerEntry is one immutable record of a stock-quantity change.
// Entries are append-only: never updated or deleted once written.
type LedgerEntry struct {
	ID             int64         `json:"id"`
	ProductID      int64         `json:"product_id"`
	ChangeKind     ChangeKind    `json:"change_kind"`
	Quantity       int           `json:"quantity"`        // magnitude of the event
	QuantityChange int           `json:"quantity_change"` // signed delta applied to stock
	ReferenceKind  ReferenceKind `json:"reference_kind"`
	ReferenceID    int64         `json:"reference_id,omitempty"` // 0 when the movement has no backing document
	BeforeQuantity int           `json:"before_quantity"`
	AfterQuantity  int           `json:"after_quantity"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewLedgerEntry builds an entry for a signed delta applied at the given
// before-quantity, computing magnitude and after-quantity.
func NewLedgerEntry(productID int64, kind ChangeKind, delta, before int, refKind ReferenceKind, refID int64, notes string) LedgerEntry {
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return LedgerEntry{
		ProductID:      productID,
		ChangeKind:     kind,
		Quantity:       magnitude,
		QuantityChange: delta,
		ReferenceKind:  refKind,
		ReferenceID:    refID,
		BeforeQuantity: before,
		AfterQuantity:  before + delta,
		Notes:          notes,
	}
}

// LedgerDivergence flags a product whose cached stock or inventory quantity
// no longer equals the sum of its ledger deltas.
type LedgerDivergence struct {
	ProductID         int64
	ProductStock      int
	InventoryQuantity int
	LedgerSum         int
}

// Validate checks the arithmetic invariant of a populated entry.
func (e LedgerEntry) Validate() error {
	if e.AfterQuantity-e.BeforeQuantity != e.QuantityChange {
		return fmt.Errorf("ledger entry for product %d: after %d - before %d != change %d",
			e.ProductID, e.AfterQuantity, e.BeforeQuantity, e.QuantityChange)
	}
	if e.Quantity < 0 {
		return fmt.Errorf("ledger entry for product %d: magnitude %d is negative", e.ProductID, e.Quantity)
	}
	return nil
}
