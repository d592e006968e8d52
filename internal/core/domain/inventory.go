package domain

import "time"

const (
	DefaultMinStockLevel = 10
	DefaultMaxStockLevel = 100
)

// InventoryRecord holds the authoritative current quantity for one product.
// It is created lazily on the first stock-affecting event.
type InventoryRecord struct {
	ProductID     int64
	Quantity      int
	MinStockLevel int
	MaxStockLevel int
	LastUpdated   time.Time
}

type StockStatus string

const (
	StockInsufficient StockStatus = "insufficient"
	StockExcess       StockStatus = "excess"
	StockNormal       StockStatus = "normal"
)

// ClassifyStock derives the status from current quantity and thresholds.
// It is recomputed on every read and never stored.
func ClassifyStock(quantity, minLevel, maxLevel int) StockStatus {
	switch {
	case quantity <= minLevel:
		return StockInsufficient
	case quantity >= maxLevel:
		return StockExcess
	default:
		return StockNormal
	}
}

// Status classifies the record's current quantity.
func (r InventoryRecord) Status() StockStatus {
	return ClassifyStock(r.Quantity, r.MinStockLevel, r.MaxStockLevel)
}

// InventoryStatusRow is one row of the inventory status view: products joined
// with their inventory records, missing records reading as quantity 0.
type InventoryStatusRow struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Price       float64     `json:"price"`
	Category    string      `json:"category"`
	Quantity    int         `json:"quantity"`
	Status      StockStatus `json:"status"`
}
