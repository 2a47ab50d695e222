package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/staybook/booking-api/internal/config"
	"github.com/staybook/booking-api/internal/pkg/database"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding *.sql migrations")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db, *dir); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// List tables so the operator can eyeball the result
	var tables []string
	if err := db.SelectContext(ctx, &tables, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`); err != nil {
		log.Fatalf("Failed to query tables: %v", err)
	}

	fmt.Println("--- Tables in DB ---")
	for _, name := range tables {
		fmt.Println(name)
	}
	fmt.Println("--------------------")
}
