package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

// InventoryService is the only component allowed to change stock quantities.
// Every change runs as one transactional unit: lock-read current quantity,
// validate, compute before/after, write inventory + cached product stock,
// append the ledger entry. Any failure rolls the whole unit back.
type InventoryService struct {
	store  port.Store
	logger *zap.Logger
}

func NewInventoryService(store port.Store, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{store: store, logger: logger}
}

// ReceiveStock adds qty units and returns the new quantity.
func (s *InventoryService) ReceiveStock(ctx context.Context, productID int64, qty int, notes string) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: receive quantity must be positive, got %d", domain.ErrValidation, qty)
	}

	var after int
	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		var err error
		after, err = s.applyDelta(ctx, tx, productID, qty, domain.ChangeIn, domain.RefStockIn, 0,
			joinNotes(newMovementRef("SI"), notes))
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stock received",
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("new_quantity", after),
	)
	return after, nil
}

// IssueStock removes qty units and returns the new quantity. Fails with the
// insufficiency error when current quantity is below qty; the check and the
// decrement happen under the same row lock.
func (s *InventoryService) IssueStock(ctx context.Context, productID int64, qty int, notes string) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: issue quantity must be positive, got %d", domain.ErrValidation, qty)
	}

	var after int
	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		var err error
		after, err = s.applyDelta(ctx, tx, productID, -qty, domain.ChangeOut, domain.RefStockOut, 0,
			joinNotes(newMovementRef("SO"), notes))
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stock issued",
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int("new_quantity", after),
	)
	return after, nil
}

// AdjustTo sets the absolute quantity. Notes are required; negative targets
// are rejected: negative stock is never permitted on any path.
func (s *InventoryService) AdjustTo(ctx context.Context, productID int64, newQuantity int, notes string) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: adjusted quantity cannot be negative, got %d", domain.ErrValidation, newQuantity)
	}
	if strings.TrimSpace(notes) == "" {
		return fmt.Errorf("%w: adjustment notes are required", domain.ErrValidation)
	}

	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		before, err := tx.LockQuantity(ctx, productID)
		if err != nil {
			return err
		}
		delta := newQuantity - before
		if err := tx.SetQuantity(ctx, productID, newQuantity); err != nil {
			return err
		}
		entry := domain.NewLedgerEntry(productID, domain.ChangeAdjustment, delta, before,
			domain.RefAdjustment, 0, notes)
		_, err = tx.AppendLedger(ctx, entry)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("inventory adjusted",
		zap.Int64("product_id", productID),
		zap.Int("new_quantity", newQuantity),
	)
	return nil
}

// GetQuantity returns the current authoritative quantity; a product with no
// inventory record yet reads as 0.
func (s *InventoryService) GetQuantity(ctx context.Context, productID int64) (int, error) {
	rec, err := s.store.GetInventoryRecord(ctx, productID)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Quantity, nil
}

// RecordSaleTx applies one sale line inside the caller's transaction.
func (s *InventoryService) RecordSaleTx(ctx context.Context, tx port.Tx, line domain.OrderLine, orderID int64) error {
	_, err := s.applyDelta(ctx, tx, line.ProductID, -line.Quantity, domain.ChangeSale,
		domain.RefSalesOrder, orderID, "")
	return err
}

// ReverseTx appends the compensating entry for a prior sale line inside the
// caller's transaction. Compensating entries are always change kind
// adjustment referencing the original sales order.
func (s *InventoryService) ReverseTx(ctx context.Context, tx port.Tx, line domain.OrderLine, orderID int64) error {
	_, err := s.applyDelta(ctx, tx, line.ProductID, line.Quantity, domain.ChangeAdjustment,
		domain.RefSalesOrder, orderID, fmt.Sprintf("order #%d cancelled", orderID))
	return err
}

// applyDelta is the single mutation path for stock: lock, validate, write
// projection, append ledger entry. It returns the new quantity.
func (s *InventoryService) applyDelta(ctx context.Context, tx port.Tx, productID int64, delta int,
	kind domain.ChangeKind, refKind domain.ReferenceKind, refID int64, notes string) (int, error) {

	before, err := tx.LockQuantity(ctx, productID)
	if err != nil {
		return 0, err
	}

	after := before + delta
	if after < 0 {
		return 0, &domain.InsufficientStockError{Lines: []domain.ShortLine{{
			ProductID: productID,
			Requested: -delta,
			Available: before,
		}}}
	}

	if err := tx.SetQuantity(ctx, productID, after); err != nil {
		return 0, err
	}

	entry := domain.NewLedgerEntry(productID, kind, delta, before, refKind, refID, notes)
	if _, err := tx.AppendLedger(ctx, entry); err != nil {
		return 0, err
	}
	return after, nil
}

// newMovementRef generates a receipt reference for manual stock movements,
// e.g. SI-20250829-1a2b3c4d.
func newMovementRef(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
}

func joinNotes(ref, notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ref
	}
	return ref + ": " + notes
}
