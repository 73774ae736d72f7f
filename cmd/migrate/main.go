package main

import (
	"log"

	"github.com/PinsaraPerera/intellihack-backend/internal/config"
	"github.com/PinsaraPerera/intellihack-backend/internal/model"
	"github.com/PinsaraPerera/intellihack-backend/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, nil)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Pre-Migration: gen_random_uuid() lives in pgcrypto on older Postgres
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	// 4. AutoMigrate All Models
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: history lookups filter by user and sort by time
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_queries_user_created ON queries (user_id, created_at DESC);`).Error; err != nil {
		log.Printf("Warn: Failed to create history index: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
