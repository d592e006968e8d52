package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

// OrderLineInput is one requested line of a new order.
type OrderLineInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderService composes inventory operations into whole-order transactions.
type OrderService struct {
	store     port.Store
	inventory *InventoryService
	cache     port.CacheRepository // nil disables idempotency checking
	logger    *zap.Logger
}

func NewOrderService(store port.Store, inventory *InventoryService, cache port.CacheRepository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: store, inventory: inventory, cache: cache, logger: logger}
}

// CreateOrder creates a completed order with its lines and one sale ledger
// entry per line, all inside one transaction. Every line is validated against
// current stock under row locks before anything is persisted; if any line is
// short the whole order is rejected and the error lists every short line.
func (s *OrderService) CreateOrder(ctx context.Context, requestID string, customerID int64,
	lines []OrderLineInput, discount float64, payment domain.PaymentMethod) (int64, error) {

	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: order must contain at least one line", domain.ErrValidation)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return 0, fmt.Errorf("%w: line quantity must be positive for product %d", domain.ErrValidation, l.ProductID)
		}
	}
	if discount < 0 {
		return 0, fmt.Errorf("%w: discount cannot be negative", domain.ErrValidation)
	}
	if !payment.Valid() {
		return 0, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, payment)
	}

	idempotencyKey, err := s.claimRequest(ctx, requestID)
	if err != nil {
		return 0, err
	}

	var orderID int64
	err = s.store.WithinTx(ctx, func(tx port.Tx) error {
		id, err := s.createOrderTx(ctx, tx, customerID, lines, discount, payment)
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		s.releaseRequest(ctx, idempotencyKey)
		return 0, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", orderID),
		zap.Int64("customer_id", customerID),
		zap.Int("lines", len(lines)),
	)
	return orderID, nil
}

func (s *OrderService) createOrderTx(ctx context.Context, tx port.Tx, customerID int64,
	lines []OrderLineInput, discount float64, payment domain.PaymentMethod) (int64, error) {

	// Cumulative requested quantity per product; the same product may appear
	// on several lines.
	requested := make(map[int64]int, len(lines))
	for _, l := range lines {
		requested[l.ProductID] += l.Quantity
	}
	productIDs := make([]int64, 0, len(requested))
	for id := range requested {
		productIDs = append(productIDs, id)
	}
	// Lock rows in ascending product-id order so concurrent orders cannot
	// deadlock each other.
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	products := make(map[int64]*domain.Product, len(productIDs))
	var short []domain.ShortLine
	for _, id := range productIDs {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("product %d: %w", id, err)
		}
		products[id] = p

		available, err := tx.LockQuantity(ctx, id)
		if err != nil {
			return 0, err
		}
		if available < requested[id] {
			short = append(short, domain.ShortLine{
				ProductID:   id,
				ProductName: p.Name,
				Requested:   requested[id],
				Available:   available,
			})
		}
	}
	if len(short) > 0 {
		return 0, &domain.InsufficientStockError{Lines: short}
	}

	// Snapshot prices at order time.
	orderLines := make([]domain.OrderLine, len(lines))
	for i, l := range lines {
		price := products[l.ProductID].Price
		orderLines[i] = domain.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     price,
			Subtotal:  domain.RoundMoney(price * float64(l.Quantity)),
		}
	}

	total := domain.OrderTotal(orderLines)
	final := domain.RoundMoney(total - discount)
	if final < 0 {
		return 0, fmt.Errorf("%w: discount %.2f exceeds order total %.2f", domain.ErrValidation, discount, total)
	}

	order := &domain.SalesOrder{
		CustomerID:    customerID,
		TotalAmount:   total,
		Discount:      discount,
		FinalAmount:   final,
		PaymentMethod: payment,
		Status:        domain.OrderStatusCompleted,
	}
	orderID, err := tx.InsertOrder(ctx, order)
	if err != nil {
		return 0, err
	}

	for i := range orderLines {
		orderLines[i].OrderID = orderID
		if _, err := tx.InsertOrderLine(ctx, &orderLines[i]); err != nil {
			return 0, err
		}
		if err := s.inventory.RecordSaleTx(ctx, tx, orderLines[i], orderID); err != nil {
			return 0, err
		}
	}
	return orderID, nil
}

// CancelOrder reverses every line with a compensating ledger entry and marks
// the order cancelled, all in one transaction. Cancelling an already
// cancelled order is rejected.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) error {
	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
			return fmt.Errorf("%w: order %d is already %s", domain.ErrInvalidState, orderID, order.Status)
		}

		lines, err := tx.OrderLines(ctx, orderID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.inventory.ReverseTx(ctx, tx, line, orderID); err != nil {
				return err
			}
		}
		return tx.SetOrderStatus(ctx, orderID, domain.OrderStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order cancelled", zap.Int64("order_id", orderID))
	return nil
}

// GetOrder returns an order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.SalesOrder, []domain.OrderLine, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListOrders returns all orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.SalesOrder, error) {
	return s.store.ListOrders(ctx)
}

func (s *OrderService) claimRequest(ctx context.Context, requestID string) (string, error) {
	if s.cache == nil || requestID == "" {
		return "", nil
	}
	key := "order:" + requestID
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return "", fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return "", domain.ErrDuplicateRequest
	}
	return key, nil
}

func (s *OrderService) releaseRequest(ctx context.Context, key string) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.ReleaseIdempotency(ctx, key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
