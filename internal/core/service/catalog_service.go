package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

// CatalogService manages products, customers and suppliers. Products are
// registered with zero stock; initial quantities arrive through the inventory
// service so every unit of stock has a ledger entry.
type CatalogService struct {
	store  port.Store
	logger *zap.Logger
}

func NewCatalogService(store port.Store, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	p.Stock = 0
	id, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return 0, err
	}
	s.logger.Info("product created", zap.Int64("product_id", id), zap.String("name", p.Name))
	return id, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, search)
}

// UpdateProduct updates catalog fields only; cached stock is owned by the
// inventory service and never written here.
func (s *CatalogService) UpdateProduct(ctx context.Context, p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.UpdateProduct(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *CatalogService) CreateCustomer(ctx context.Context, c *domain.Customer) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return s.store.CreateCustomer(ctx, c)
}

func (s *CatalogService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *CatalogService) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	return s.store.ListCustomers(ctx, search)
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.store.UpdateCustomer(ctx, c)
}

func (s *CatalogService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.DeleteCustomer(ctx, id)
}

func (s *CatalogService) CreateSupplier(ctx context.Context, sup *domain.Supplier) (int64, error) {
	if err := sup.Validate(); err != nil {
		return 0, err
	}
	return s.store.CreateSupplier(ctx, sup)
}

func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *CatalogService) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	return s.store.ListSuppliers(ctx, search)
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, sup domain.Supplier) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	return s.store.UpdateSupplier(ctx, sup)
}

func (s *CatalogService) DeleteSupplier(ctx context.Context, id int64) error {
	return s.store.DeleteSupplier(ctx, id)
}
