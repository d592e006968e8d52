package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/retail-core/internal/adapter/storage"
)

func main() {
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/retail?parseTime=true", "MySQL DSN")
	timeout := flag.Duration("timeout", 30*time.Second, "migration timeout")
	flag.Parse()

	db, err := sql.Open("mysql", *dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migrations applied")
}
