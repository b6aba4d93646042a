package main

import (
	"log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
	"github.com/inxsource/whatsapp-sales-bot/internal/models"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/config"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/database"
)

func main() {
	cfg := config.LoadConfig()

	log.Printf("🔄 Running schema migration")
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	err := db.GORM.AutoMigrate(
		&models.Business{},
		&models.Customer{},
		&models.Product{},
		&models.Order{},
		&session.Session{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migration completed!")
}
