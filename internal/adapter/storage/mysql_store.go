package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/port"
)

const mysqlDuplicateEntry = 1062

// MySQLStore implements port.Store over MySQL. Mutations on the same product
// serialize on the inventory row lock (SELECT ... FOR UPDATE); operations on
// different products do not block each other.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(t.tx.QueryRowContext(ctx, `
		SELECT id, name, price, cost, stock, category, barcode, created_at
		FROM products WHERE id = ?`, id))
}

func (t *mysqlTx) LockQuantity(ctx context.Context, productID int64) (int, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("check product: %w", err)
	}

	// Create the inventory record lazily, then take the row lock.
	_, err = t.tx.ExecContext(ctx, `
		INSERT IGNORE INTO inventory (product_id, quantity, min_stock_level, max_stock_level)
		VALUES (?, 0, ?, ?)`,
		productID, domain.DefaultMinStockLevel, domain.DefaultMaxStockLevel,
	)
	if err != nil {
		return 0, fmt.Errorf("init inventory record: %w", err)
	}

	var quantity int
	err = t.tx.QueryRowContext(ctx, `
		SELECT quantity FROM inventory WHERE product_id = ? FOR UPDATE`, productID,
	).Scan(&quantity)
	if err != nil {
		return 0, fmt.Errorf("lock inventory record: %w", err)
	}
	return quantity, nil
}

func (t *mysqlTx) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE inventory SET quantity = ? WHERE product_id = ?`, quantity, productID); err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	// Keep the cached product stock in step within the same transaction.
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock = ? WHERE id = ?`, quantity, productID); err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

func (t *mysqlTx) AppendLedger(ctx context.Context, e domain.LedgerEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var refID sql.NullInt64
	if e.ReferenceID > 0 {
		refID = sql.NullInt64{Int64: e.ReferenceID, Valid: true}
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO inventory_logs
			(product_id, change_kind, quantity, quantity_change, reference_kind,
			 reference_id, before_quantity, after_quantity, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ProductID, e.ChangeKind, e.Quantity, e.QuantityChange, e.ReferenceKind,
		refID, e.BeforeQuantity, e.AfterQuantity, e.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return res.LastInsertId()
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o *domain.SalesOrder) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO sales_orders (customer_id, total_amount, discount, final_amount, payment_method, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.CustomerID, o.TotalAmount, o.Discount, o.FinalAmount, o.PaymentMethod, o.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}
	o.ID = id
	return id, nil
}

func (t *mysqlTx) InsertOrderLine(ctx context.Context, l *domain.OrderLine) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO sales_order_items (order_id, product_id, quantity, price, subtotal)
		VALUES (?, ?, ?, ?, ?)`,
		l.OrderID, l.ProductID, l.Quantity, l.Price, l.Subtotal,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order line id: %w", err)
	}
	l.ID = id
	return id, nil
}

func (t *mysqlTx) GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	o, err := scanOrder(t.tx.QueryRowContext(ctx, `
		SELECT id, customer_id, total_amount, discount, final_amount, payment_method, status, created_at
		FROM sales_orders WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (t *mysqlTx) OrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price, subtotal
		FROM sales_order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()
	return collectOrderLines(rows)
}

func (t *mysqlTx) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE sales_orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, price, cost, stock, category, barcode)
		VALUES (?, ?, ?, 0, ?, ?)`,
		p.Name, p.Price, p.Cost, p.Category, p.Barcode,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, fmt.Errorf("%w: product name %q already exists", domain.ErrConflict, p.Name)
		}
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("product id: %w", err)
	}
	p.ID = id
	return id, nil
}

func (s *MySQLStore) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, name, price, cost, stock, category, barcode, created_at
		FROM products WHERE id = ?`, id))
}

func (s *MySQLStore) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	query := `SELECT id, name, price, cost, stock, category, barcode, created_at FROM products`
	var args []any
	if search != "" {
		query += ` WHERE name LIKE ? OR category LIKE ? OR barcode LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Cost, &p.Stock, &p.Category, &p.Barcode, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProduct writes catalog fields only; stock stays owned by inventory
// transactions.
func (s *MySQLStore) UpdateProduct(ctx context.Context, p domain.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET name = ?, price = ?, cost = ?, category = ?, barcode = ?
		WHERE id = ?`,
		p.Name, p.Price, p.Cost, p.Category, p.Barcode, p.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: product name %q already exists", domain.ErrConflict, p.Name)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero affected rows can also mean an identical update; confirm existence.
		var one int
		if scanErr := s.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, p.ID).Scan(&one); scanErr != nil {
			return fmt.Errorf("product %d: %w", p.ID, domain.ErrNotFound)
		}
	}
	return nil
}

func (s *MySQLStore) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lineRefs, ledgerRefs int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sales_order_items WHERE product_id = ?`, id).Scan(&lineRefs); err != nil {
		return fmt.Errorf("count order references: %w", err)
	}
	if lineRefs > 0 {
		return fmt.Errorf("%w: product %d is referenced by order lines", domain.ErrConflict, id)
	}
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory_logs WHERE product_id = ?`, id).Scan(&ledgerRefs); err != nil {
		return fmt.Errorf("count ledger references: %w", err)
	}
	if ledgerRefs > 0 {
		return fmt.Errorf("%w: product %d is referenced by ledger entries", domain.ErrConflict, id)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return tx.Commit()
}

func (s *MySQLStore) CreateCustomer(ctx context.Context, c *domain.Customer) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, phone, email, address, points)
		VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address, c.Points,
	)
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("customer id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (s *MySQLStore) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, points, created_at
		FROM customers WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Points, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return &c, nil
}

func (s *MySQLStore) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	query := `SELECT id, name, phone, email, address, points, created_at FROM customers`
	var args []any
	if search != "" {
		query += ` WHERE name LIKE ? OR phone LIKE ? OR email LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Points, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = ?, phone = ?, email = ?, address = ?, points = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Address, c.Points, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (s *MySQLStore) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *MySQLStore) CreateSupplier(ctx context.Context, sup *domain.Supplier) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (name, contact_person, phone, email, address)
		VALUES (?, ?, ?, ?, ?)`,
		sup.Name, sup.ContactPerson, sup.Phone, sup.Email, sup.Address,
	)
	if err != nil {
		return 0, fmt.Errorf("insert supplier: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("supplier id: %w", err)
	}
	sup.ID = id
	return id, nil
}

func (s *MySQLStore) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_person, phone, email, address, created_at
		FROM suppliers WHERE id = ?`, id,
	).Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Phone, &sup.Email, &sup.Address, &sup.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query supplier: %w", err)
	}
	return &sup, nil
}

func (s *MySQLStore) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	query := `SELECT id, name, contact_person, phone, email, address, created_at FROM suppliers`
	var args []any
	if search != "" {
		query += ` WHERE name LIKE ? OR contact_person LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	var out []domain.Supplier
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.ContactPerson, &sup.Phone, &sup.Email, &sup.Address, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateSupplier(ctx context.Context, sup domain.Supplier) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET name = ?, contact_person = ?, phone = ?, email = ?, address = ?
		WHERE id = ?`,
		sup.Name, sup.ContactPerson, sup.Phone, sup.Email, sup.Address, sup.ID,
	)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

func (s *MySQLStore) DeleteSupplier(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetInventoryRecord(ctx context.Context, productID int64) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT product_id, quantity, min_stock_level, max_stock_level, last_updated
		FROM inventory WHERE product_id = ?`, productID,
	).Scan(&rec.ProductID, &rec.Quantity, &rec.MinStockLevel, &rec.MaxStockLevel, &rec.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not yet stocked
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory record: %w", err)
	}
	return &rec, nil
}

func (s *MySQLStore) InventoryStatus(ctx context.Context) ([]domain.InventoryStatusRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price, p.category,
		       IFNULL(i.quantity, 0), IFNULL(i.min_stock_level, ?), IFNULL(i.max_stock_level, ?)
		FROM products p
		LEFT JOIN inventory i ON p.id = i.product_id
		ORDER BY p.id`,
		domain.DefaultMinStockLevel, domain.DefaultMaxStockLevel,
	)
	if err != nil {
		return nil, fmt.Errorf("query inventory status: %w", err)
	}
	defer rows.Close()

	var out []domain.InventoryStatusRow
	for rows.Next() {
		var r domain.InventoryStatusRow
		var minLevel, maxLevel int
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Price, &r.Category, &r.Quantity, &minLevel, &maxLevel); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		r.Status = domain.ClassifyStock(r.Quantity, minLevel, maxLevel)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MySQLStore) LedgerByProduct(ctx context.Context, productID int64, from, to *time.Time, limit int) ([]domain.LedgerEntry, error) {
	var conditions []string
	var args []any
	if productID > 0 {
		conditions = append(conditions, "product_id = ?")
		args = append(args, productID)
	}
	if from != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *to)
	}

	query := `SELECT id, product_id, change_kind, quantity, quantity_change, reference_kind,
		reference_id, before_quantity, after_quantity, IFNULL(notes, ''), created_at
		FROM inventory_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var refID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ProductID, &e.ChangeKind, &e.Quantity, &e.QuantityChange,
			&e.ReferenceKind, &refID, &e.BeforeQuantity, &e.AfterQuantity, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.ReferenceID = refID.Int64
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *MySQLStore) LedgerRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	return s.LedgerByProduct(ctx, 0, nil, nil, limit)
}

func (s *MySQLStore) VerifyLedgerConsistency(ctx context.Context) ([]domain.LedgerDivergence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, stock, quantity, ledger_sum FROM (
			SELECT p.id AS product_id, p.stock AS stock,
			       IFNULL(i.quantity, 0) AS quantity, IFNULL(l.total, 0) AS ledger_sum
			FROM products p
			LEFT JOIN inventory i ON i.product_id = p.id
			LEFT JOIN (
				SELECT product_id, SUM(quantity_change) AS total
				FROM inventory_logs GROUP BY product_id
			) l ON l.product_id = p.id
		) t
		WHERE stock <> ledger_sum OR quantity <> ledger_sum
		ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger consistency: %w", err)
	}
	defer rows.Close()

	var out []domain.LedgerDivergence
	for rows.Next() {
		var d domain.LedgerDivergence
		if err := rows.Scan(&d.ProductID, &d.ProductStock, &d.InventoryQuantity, &d.LedgerSum); err != nil {
			return nil, fmt.Errorf("scan divergence: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *MySQLStore) GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, []domain.OrderLine, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total_amount, discount, final_amount, payment_method, status, created_at
		FROM sales_orders WHERE id = ?`, id))
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price, subtotal
		FROM sales_order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	lines, err := collectOrderLines(rows)
	if err != nil {
		return nil, nil, err
	}
	return o, lines, nil
}

func (s *MySQLStore) ListOrders(ctx context.Context) ([]domain.SalesOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, total_amount, discount, final_amount, payment_method, status, created_at
		FROM sales_orders ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.SalesOrder
	for rows.Next() {
		var o domain.SalesOrder
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Discount, &o.FinalAmount,
			&o.PaymentMethod, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Cost, &p.Stock, &p.Category, &p.Barcode, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func scanOrder(row rowScanner) (*domain.SalesOrder, error) {
	var o domain.SalesOrder
	err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Discount, &o.FinalAmount,
		&o.PaymentMethod, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}

func collectOrderLines(rows *sql.Rows) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Price, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
