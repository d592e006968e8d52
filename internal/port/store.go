package port

import (
	"context"
	"time"

	"github.com/rl1809/retail-core/internal/core/domain"
)

// Store is the durable backing store. Reads outside WithinTx are auto-commit;
// every mutation runs inside WithinTx so that stock, ledger and order state
// commit or roll back as one unit.
type Store interface {
	// WithinTx runs fn inside one transaction. Any error from fn rolls the
	// whole unit back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// Products
	CreateProduct(ctx context.Context, p *domain.Product) (int64, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, search string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	// DeleteProduct fails with domain.ErrConflict while order lines or ledger
	// entries still reference the product.
	DeleteProduct(ctx context.Context, id int64) error

	// Customers and suppliers
	CreateCustomer(ctx context.Context, c *domain.Customer) (int64, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context, search string) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, c domain.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	CreateSupplier(ctx context.Context, s *domain.Supplier) (int64, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error)
	UpdateSupplier(ctx context.Context, s domain.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	// Stock projection reads. A missing record reads as nil, not an error.
	GetInventoryRecord(ctx context.Context, productID int64) (*domain.InventoryRecord, error)
	InventoryStatus(ctx context.Context) ([]domain.InventoryStatusRow, error)

	// Ledger reads, ordered created_at DESC then id DESC.
	LedgerByProduct(ctx context.Context, productID int64, from, to *time.Time, limit int) ([]domain.LedgerEntry, error)
	LedgerRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	// VerifyLedgerConsistency reports every product whose cached stock or
	// inventory quantity differs from the sum of its ledger deltas.
	VerifyLedgerConsistency(ctx context.Context) ([]domain.LedgerDivergence, error)

	// Order reads
	GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, []domain.OrderLine, error)
	ListOrders(ctx context.Context) ([]domain.SalesOrder, error)
}

// Tx is a transaction-scoped handle passed into inventory and order
// operations. Implementations must hold row locks taken by LockQuantity and
// GetOrderForUpdate until commit or rollback.
type Tx interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// LockQuantity locks the product's inventory row and returns the current
	// quantity, creating the record lazily with default thresholds. Returns
	// domain.ErrNotFound when the product itself does not exist.
	LockQuantity(ctx context.Context, productID int64) (int, error)

	// SetQuantity writes the inventory quantity and the product's cached
	// stock in the same transaction so the two never diverge post-commit.
	SetQuantity(ctx context.Context, productID int64, quantity int) error

	// AppendLedger writes one immutable ledger entry.
	AppendLedger(ctx context.Context, e domain.LedgerEntry) (int64, error)

	InsertOrder(ctx context.Context, o *domain.SalesOrder) (int64, error)
	InsertOrderLine(ctx context.Context, l *domain.OrderLine) (int64, error)
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error)
	OrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
}
