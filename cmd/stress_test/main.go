package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/rl1809/retail-core/internal/adapter/storage"
	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// Fires concurrent single-unit orders at one product and checks that exactly
// initialStock of them succeed and that stock lands on zero.
func main() {
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/retail?parseTime=true", "MySQL DSN")
	flag.Parse()

	ctx := context.Background()

	db, err := sql.Open("mysql", *dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(totalRequests)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	store := storage.NewMySQLStore(db)
	inventorySvc := service.NewInventoryService(store, nil)
	orderSvc := service.NewOrderService(store, inventorySvc, nil, nil)

	productID, err := store.CreateProduct(ctx, &domain.Product{
		Name:  fmt.Sprintf("stress-item-%s", uuid.NewString()),
		Price: 9.99,
		Cost:  5.00,
	})
	if err != nil {
		log.Fatalf("failed to create product: %v", err)
	}
	if _, err := inventorySvc.ReceiveStock(ctx, productID, initialStock, "stress run seed"); err != nil {
		log.Fatalf("failed to seed stock: %v", err)
	}

	var successCount, insufficientCount, errorCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := orderSvc.CreateOrder(ctx, fmt.Sprintf("stress-%d-%s", n, uuid.NewString()), 1,
				[]service.OrderLineInput{{ProductID: productID, Quantity: 1}}, 0, domain.PaymentCash)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficientCount.Add(1)
			default:
				errorCount.Add(1)
				log.Printf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	insufficient := insufficientCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Insufficient:     %d\n", insufficient)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && insufficient == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, insufficient)
	}

	qty, err := inventorySvc.GetQuantity(ctx, productID)
	if err != nil {
		log.Fatalf("failed to read final quantity: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", qty)
	if qty == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", qty)
	}

	divergences, err := store.VerifyLedgerConsistency(ctx)
	if err != nil {
		log.Fatalf("failed consistency check: %v", err)
	}
	for _, d := range divergences {
		if d.ProductID == productID {
			fmt.Printf("FAIL: ledger divergence: %+v\n", d)
			return
		}
	}
	fmt.Println("PASS: Ledger sums match projection")
}
