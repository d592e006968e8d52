package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/retail-core/internal/core/domain"
)

func TestGetInventoryStatus(t *testing.T) {
	store := newMemStore()
	inventory := NewInventoryService(store, nil)
	reporting := NewReportingService(store, nil)
	ctx := context.Background()

	low := seedProduct(t, store, "low-stock", 2.50)
	normal := seedProduct(t, store, "normal-stock", 5.00)
	high := seedProduct(t, store, "high-stock", 7.00)
	unstocked := seedProduct(t, store, "never-stocked", 1.00)

	_, err := inventory.ReceiveStock(ctx, low, 4, "")
	require.NoError(t, err)
	_, err = inventory.ReceiveStock(ctx, normal, 50, "")
	require.NoError(t, err)
	_, err = inventory.ReceiveStock(ctx, high, 150, "")
	require.NoError(t, err)

	rows, err := reporting.GetInventoryStatus(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byID := make(map[int64]domain.InventoryStatusRow)
	for _, r := range rows {
		byID[r.ProductID] = r
	}
	assert.Equal(t, domain.StockInsufficient, byID[low].Status)
	assert.Equal(t, domain.StockNormal, byID[normal].Status)
	assert.Equal(t, domain.StockExcess, byID[high].Status)

	// A product with no inventory record reads as quantity 0, insufficient.
	assert.Equal(t, 0, byID[unstocked].Quantity)
	assert.Equal(t, domain.StockInsufficient, byID[unstocked].Status)

	// Replaying without mutations yields identical results.
	again, err := reporting.GetInventoryStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestExportInventoryRows(t *testing.T) {
	store := newMemStore()
	inventory := NewInventoryService(store, nil)
	reporting := NewReportingService(store, nil)
	ctx := context.Background()

	low := seedProduct(t, store, "low-stock", 2.50)
	high := seedProduct(t, store, "high-stock", 7.00)
	_, err := inventory.ReceiveStock(ctx, low, 3, "")
	require.NoError(t, err)
	_, err = inventory.ReceiveStock(ctx, high, 200, "")
	require.NoError(t, err)

	all, err := reporting.ExportInventoryRows(ctx, ReportAll)
	require.NoError(t, err)
	require.Len(t, all, 3) // header + 2 products
	assert.Equal(t, []string{"product_id", "product_name", "price", "category", "current_stock", "stock_status"}, all[0])

	lowRows, err := reporting.ExportInventoryRows(ctx, ReportLow)
	require.NoError(t, err)
	require.Len(t, lowRows, 2)
	assert.Equal(t, "low-stock", lowRows[1][1])
	assert.Equal(t, "3", lowRows[1][4])
	assert.Equal(t, "insufficient", lowRows[1][5])

	highRows, err := reporting.ExportInventoryRows(ctx, ReportHigh)
	require.NoError(t, err)
	require.Len(t, highRows, 2)
	assert.Equal(t, "high-stock", highRows[1][1])

	_, err = reporting.ExportInventoryRows(ctx, ReportFilter("weird"))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestGetLedger_Filters(t *testing.T) {
	store := newMemStore()
	inventory := NewInventoryService(store, nil)
	reporting := NewReportingService(store, nil)
	ctx := context.Background()

	p1 := seedProduct(t, store, "p1", 1.00)
	p2 := seedProduct(t, store, "p2", 1.00)
	_, err := inventory.ReceiveStock(ctx, p1, 10, "")
	require.NoError(t, err)
	_, err = inventory.ReceiveStock(ctx, p2, 20, "")
	require.NoError(t, err)
	_, err = inventory.IssueStock(ctx, p1, 5, "")
	require.NoError(t, err)

	entries, err := reporting.GetLedger(ctx, p1, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, -5, entries[0].QuantityChange)
	assert.Equal(t, 10, entries[1].QuantityChange)

	recent, err := reporting.GetLedger(ctx, 0, nil, nil, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestDeleteProduct_Conflict(t *testing.T) {
	store := newMemStore()
	inventory := NewInventoryService(store, nil)
	catalog := NewCatalogService(store, nil)
	ctx := context.Background()

	pid := seedProduct(t, store, "p1", 9.99)
	fresh := seedProduct(t, store, "untouched", 9.99)

	_, err := inventory.ReceiveStock(ctx, pid, 5, "")
	require.NoError(t, err)

	err = catalog.DeleteProduct(ctx, pid)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	assert.NoError(t, catalog.DeleteProduct(ctx, fresh))
}
