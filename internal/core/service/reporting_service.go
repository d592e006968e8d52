package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

// ReportFilter selects which products an inventory report covers.
type ReportFilter string

const (
	ReportAll  ReportFilter = "all"
	ReportLow  ReportFilter = "low"
	ReportHigh ReportFilter = "high"
)

func (f ReportFilter) Valid() bool {
	switch f {
	case ReportAll, ReportLow, ReportHigh:
		return true
	}
	return false
}

// ReportingService exposes read-only views over the stock projection and the
// ledger. It never mutates anything.
type ReportingService struct {
	store  port.Store
	logger *zap.Logger
}

func NewReportingService(store port.Store, logger *zap.Logger) *ReportingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingService{store: store, logger: logger}
}

// GetInventoryStatus returns one row per product with its classified status.
// Replaying it without intervening mutations yields identical results.
func (s *ReportingService) GetInventoryStatus(ctx context.Context) ([]domain.InventoryStatusRow, error) {
	return s.store.InventoryStatus(ctx)
}

// GetLedger returns ledger entries, optionally scoped to one product and a
// date range, newest first.
func (s *ReportingService) GetLedger(ctx context.Context, productID int64, from, to *time.Time, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	if productID > 0 {
		return s.store.LedgerByProduct(ctx, productID, from, to, limit)
	}
	if from != nil || to != nil {
		return s.store.LedgerByProduct(ctx, 0, from, to, limit)
	}
	return s.store.LedgerRecent(ctx, limit)
}

// ExportInventoryRows returns a header row plus one data row per product
// matching the filter. The caller owns file writing; the core supplies rows
// only.
func (s *ReportingService) ExportInventoryRows(ctx context.Context, filter ReportFilter) ([][]string, error) {
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown report filter %q", domain.ErrValidation, filter)
	}

	status, err := s.store.InventoryStatus(ctx)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"product_id", "product_name", "price", "category", "current_stock", "stock_status"}}
	for _, r := range status {
		switch filter {
		case ReportLow:
			if r.Status != domain.StockInsufficient {
				continue
			}
		case ReportHigh:
			if r.Status != domain.StockExcess {
				continue
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ProductID, 10),
			r.ProductName,
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			r.Category,
			strconv.Itoa(r.Quantity),
			string(r.Status),
		})
	}
	return rows, nil
}
