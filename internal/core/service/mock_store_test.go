package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

var errAppendFailed = errors.New("ledger append failed")

// memStore is an in-memory port.Store. WithinTx stages changes on a deep copy
// under a store-wide lock and swaps it in on commit, so transactions are
// serialized and roll back cleanly, like the real store's row locking.
type memStore struct {
	mu    sync.Mutex
	state *memState

	failAppend bool // inject a storage failure on AppendLedger
}

type memState struct {
	products   map[int64]*domain.Product
	inventory  map[int64]*domain.InventoryRecord
	ledger     []domain.LedgerEntry
	orders     map[int64]*domain.SalesOrder
	orderLines map[int64][]domain.OrderLine
	customers  map[int64]*domain.Customer
	suppliers  map[int64]*domain.Supplier

	nextProductID, nextOrderID, nextLineID, nextLedgerID, nextRefID int64
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		products:   make(map[int64]*domain.Product),
		inventory:  make(map[int64]*domain.InventoryRecord),
		orders:     make(map[int64]*domain.SalesOrder),
		orderLines: make(map[int64][]domain.OrderLine),
		customers:  make(map[int64]*domain.Customer),
		suppliers:  make(map[int64]*domain.Supplier),
	}}
}

func (st *memState) clone() *memState {
	c := &memState{
		products:      make(map[int64]*domain.Product, len(st.products)),
		inventory:     make(map[int64]*domain.InventoryRecord, len(st.inventory)),
		ledger:        append([]domain.LedgerEntry(nil), st.ledger...),
		orders:        make(map[int64]*domain.SalesOrder, len(st.orders)),
		orderLines:    make(map[int64][]domain.OrderLine, len(st.orderLines)),
		customers:     make(map[int64]*domain.Customer, len(st.customers)),
		suppliers:     make(map[int64]*domain.Supplier, len(st.suppliers)),
		nextProductID: st.nextProductID,
		nextOrderID:   st.nextOrderID,
		nextLineID:    st.nextLineID,
		nextLedgerID:  st.nextLedgerID,
		nextRefID:     st.nextRefID,
	}
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, r := range st.inventory {
		cr := *r
		c.inventory[id] = &cr
	}
	for id, o := range st.orders {
		co := *o
		c.orders[id] = &co
	}
	for id, lines := range st.orderLines {
		c.orderLines[id] = append([]domain.OrderLine(nil), lines...)
	}
	for id, cu := range st.customers {
		cc := *cu
		c.customers[id] = &cc
	}
	for id, su := range st.suppliers {
		cs := *su
		c.suppliers[id] = &cs
	}
	return c
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&memTx{state: staged, store: s}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

type memTx struct {
	state *memState
	store *memStore
}

func (t *memTx) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) LockQuantity(ctx context.Context, productID int64) (int, error) {
	if _, ok := t.state.products[productID]; !ok {
		return 0, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	rec, ok := t.state.inventory[productID]
	if !ok {
		rec = &domain.InventoryRecord{
			ProductID:     productID,
			MinStockLevel: domain.DefaultMinStockLevel,
			MaxStockLevel: domain.DefaultMaxStockLevel,
		}
		t.state.inventory[productID] = rec
	}
	return rec.Quantity, nil
}

func (t *memTx) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	rec, ok := t.state.inventory[productID]
	if !ok {
		return fmt.Errorf("inventory record for product %d: %w", productID, domain.ErrNotFound)
	}
	rec.Quantity = quantity
	rec.LastUpdated = time.Now()
	t.state.products[productID].Stock = quantity
	return nil
}

func (t *memTx) AppendLedger(ctx context.Context, e domain.LedgerEntry) (int64, error) {
	if t.store.failAppend {
		return 0, errAppendFailed
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}
	t.state.nextLedgerID++
	e.ID = t.state.nextLedgerID
	e.CreatedAt = time.Now()
	t.state.ledger = append(t.state.ledger, e)
	return e.ID, nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *domain.SalesOrder) (int64, error) {
	t.state.nextOrderID++
	o.ID = t.state.nextOrderID
	o.CreatedAt = time.Now()
	co := *o
	t.state.orders[o.ID] = &co
	return o.ID, nil
}

func (t *memTx) InsertOrderLine(ctx context.Context, l *domain.OrderLine) (int64, error) {
	t.state.nextLineID++
	l.ID = t.state.nextLineID
	t.state.orderLines[l.OrderID] = append(t.state.orderLines[l.OrderID], *l)
	return l.ID, nil
}

func (t *memTx) GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	co := *o
	return &co, nil
}

func (t *memTx) OrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	return append([]domain.OrderLine(nil), t.state.orderLines[orderID]...), nil
}

func (t *memTx) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	o, ok := t.state.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *memStore) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.products {
		if existing.Name == p.Name {
			return 0, fmt.Errorf("%w: product name %q already exists", domain.ErrConflict, p.Name)
		}
	}
	s.state.nextProductID++
	p.ID = s.state.nextProductID
	p.CreatedAt = time.Now()
	cp := *p
	s.state.products[p.ID] = &cp
	return p.ID, nil
}

func (s *memStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.state.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateProduct(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.state.products[p.ID]
	if !ok {
		return fmt.Errorf("product %d: %w", p.ID, domain.ErrNotFound)
	}
	p.Stock = existing.Stock // stock is owned by inventory transactions
	p.CreatedAt = existing.CreatedAt
	s.state.products[p.ID] = &p
	return nil
}

func (s *memStore) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	for _, lines := range s.state.orderLines {
		for _, l := range lines {
			if l.ProductID == id {
				return fmt.Errorf("%w: product %d is referenced by order lines", domain.ErrConflict, id)
			}
		}
	}
	for _, e := range s.state.ledger {
		if e.ProductID == id {
			return fmt.Errorf("%w: product %d is referenced by ledger entries", domain.ErrConflict, id)
		}
	}
	delete(s.state.products, id)
	delete(s.state.inventory, id)
	return nil
}

func (s *memStore) CreateCustomer(ctx context.Context, c *domain.Customer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextRefID++
	c.ID = s.state.nextRefID
	cc := *c
	s.state.customers[c.ID] = &cc
	return c.ID, nil
}

func (s *memStore) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

func (s *memStore) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Customer
	for _, c := range s.state.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.customers[c.ID]; !ok {
		return fmt.Errorf("customer %d: %w", c.ID, domain.ErrNotFound)
	}
	s.state.customers[c.ID] = &c
	return nil
}

func (s *memStore) DeleteCustomer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.customers, id)
	return nil
}

func (s *memStore) CreateSupplier(ctx context.Context, sup *domain.Supplier) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextRefID++
	sup.ID = s.state.nextRefID
	cs := *sup
	s.state.suppliers[sup.ID] = &cs
	return sup.ID, nil
}

func (s *memStore) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.state.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrNotFound)
	}
	cs := *sup
	return &cs, nil
}

func (s *memStore) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Supplier
	for _, sup := range s.state.suppliers {
		out = append(out, *sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateSupplier(ctx context.Context, sup domain.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.suppliers[sup.ID]; !ok {
		return fmt.Errorf("supplier %d: %w", sup.ID, domain.ErrNotFound)
	}
	s.state.suppliers[sup.ID] = &sup
	return nil
}

func (s *memStore) DeleteSupplier(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.suppliers, id)
	return nil
}

func (s *memStore) GetInventoryRecord(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.inventory[productID]
	if !ok {
		return nil, nil
	}
	cr := *rec
	return &cr, nil
}

func (s *memStore) InventoryStatus(ctx context.Context) ([]domain.InventoryStatusRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []domain.InventoryStatusRow
	for _, p := range s.state.products {
		qty := 0
		minLevel, maxLevel := domain.DefaultMinStockLevel, domain.DefaultMaxStockLevel
		if rec, ok := s.state.inventory[p.ID]; ok {
			qty, minLevel, maxLevel = rec.Quantity, rec.MinStockLevel, rec.MaxStockLevel
		}
		rows = append(rows, domain.InventoryStatusRow{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Category:    p.Category,
			Quantity:    qty,
			Status:      domain.ClassifyStock(qty, minLevel, maxLevel),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductID < rows[j].ProductID })
	return rows, nil
}

func (s *memStore) LedgerByProduct(ctx context.Context, productID int64, from, to *time.Time, limit int) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range s.state.ledger {
		if productID > 0 && e.ProductID != productID {
			continue
		}
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		out = append(out, e)
	}
	sortLedgerDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) LedgerRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return s.LedgerByProduct(ctx, 0, nil, nil, limit)
}

func (s *memStore) VerifyLedgerConsistency(ctx context.Context) ([]domain.LedgerDivergence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := make(map[int64]int)
	for _, e := range s.state.ledger {
		sums[e.ProductID] += e.QuantityChange
	}
	var out []domain.LedgerDivergence
	for _, p := range s.state.products {
		qty := 0
		if rec, ok := s.state.inventory[p.ID]; ok {
			qty = rec.Quantity
		}
		if p.Stock != sums[p.ID] || qty != sums[p.ID] {
			out = append(out, domain.LedgerDivergence{
				ProductID:         p.ID,
				ProductStock:      p.Stock,
				InventoryQuantity: qty,
				LedgerSum:         sums[p.ID],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *memStore) GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, []domain.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[id]
	if !ok {
		return nil, nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	co := *o
	return &co, append([]domain.OrderLine(nil), s.state.orderLines[id]...), nil
}

func (s *memStore) ListOrders(ctx context.Context) ([]domain.SalesOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SalesOrder
	for _, o := range s.state.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func sortLedgerDesc(entries []domain.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// mockCache is an in-memory idempotency cache.
type mockCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMockCache() *mockCache {
	return &mockCache{keys: make(map[string]bool)}
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockCache) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// ledgerCount counts entries for a product, optionally by change kind.
func (s *memStore) ledgerCount(productID int64, kind domain.ChangeKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.state.ledger {
		if e.ProductID == productID && (kind == "" || e.ChangeKind == kind) {
			n++
		}
	}
	return n
}

// lastEntry returns the most recently appended entry for a product.
func (s *memStore) lastEntry(productID int64) (domain.LedgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.state.ledger) - 1; i >= 0; i-- {
		if s.state.ledger[i].ProductID == productID {
			return s.state.ledger[i], true
		}
	}
	return domain.LedgerEntry{}, false
}
