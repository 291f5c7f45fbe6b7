package database

import (
	"log"

	"immobilien-backend/internal/config"
	"immobilien-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Unit{},
		&models.Tenant{},
		&models.Lease{},
		&models.Payment{},
		&models.Expense{},
		&models.MeterReading{},
		&models.Document{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// "Bir birimde aynı anda en fazla bir aktif sözleşme" kuralı uygulama
	// katmanında transaction içinde kontrol ediliyor, ama iki eşzamanlı istek
	// aynı boş birimi görebilir. Partial unique index bu yarışı veritabanında kapatır.
	// AutoMigrate partial index üretemediği için elle ekleniyor.
	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_leases_one_active_per_unit
		ON leases (unit_id)
		WHERE status = 'active' AND deleted_at IS NULL
	`).Error; err != nil {
		log.Printf("Aktif sözleşme unique index eklenirken hata: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
