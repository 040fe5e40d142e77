package main

import (
	"log"

	"oxbow-be/internal/config"
	"oxbow-be/internal/model"
	"oxbow-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(model.Tables()...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating partial indexes...")
	for _, sql := range model.PostMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: post-migration SQL failed: %v", err)
		}
	}

	log.Println("Step 4: Seeding notification types...")
	if err := SeedNotificationTypes(db); err != nil {
		log.Fatalf("Error: seeding notification types failed: %v", err)
	}

	log.Println("Success: database migration completed.")
}
