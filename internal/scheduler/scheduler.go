package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

// Scheduler runs periodic background checks against the store.
type Scheduler struct {
	cron     *cron.Cron
	store    port.Store
	schedule string
	logger   *zap.Logger
}

// New creates a scheduler that reconciles the ledger on the given cron
// schedule and reports products running low.
func New(store port.Store, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		store:    store,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runReconciliation); err != nil {
		s.logger.Error("failed to schedule ledger reconciliation", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// runReconciliation cross-checks cached product stock and the inventory
// projection against the ledger sums, and logs low-stock products. Divergences
// are logged for operator attention, never auto-corrected.
func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	divergences, err := s.store.VerifyLedgerConsistency(ctx)
	if err != nil {
		s.logger.Error("ledger consistency check failed", zap.Error(err))
		return
	}
	for _, d := range divergences {
		s.logger.Warn("ledger divergence detected",
			zap.Int64("product_id", d.ProductID),
			zap.Int("product_stock", d.ProductStock),
			zap.Int("inventory_quantity", d.InventoryQuantity),
			zap.Int("ledger_sum", d.LedgerSum),
		)
	}

	rows, err := s.store.InventoryStatus(ctx)
	if err != nil {
		s.logger.Error("inventory status check failed", zap.Error(err))
		return
	}
	low := 0
	for _, r := range rows {
		if r.Status == domain.StockInsufficient {
			low++
			s.logger.Warn("product stock below minimum",
				zap.Int64("product_id", r.ProductID),
				zap.String("name", r.ProductName),
				zap.Int("quantity", r.Quantity),
			)
		}
	}

	s.logger.Info("ledger reconciliation completed",
		zap.Int("divergences", len(divergences)),
		zap.Int("low_stock_products", low),
	)
}
