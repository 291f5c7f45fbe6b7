package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant - Kiracı. Sahiplik kapsaması uygulanmaz, tüm hesaplar erişebilir
// (mevcut üründeki davranış, bilinçli olarak korunuyor).
type Tenant struct {
	ID              uint   `gorm:"primaryKey"`
	FirstName       string `gorm:"size:100;not null"`
	LastName        string `gorm:"size:100;not null"`
	Email           string `gorm:"size:100;not null"`
	Phone           string `gorm:"size:50"`
	MobilePhone     string `gorm:"size:50"`
	PreviousAddress string `gorm:"size:300"` // Taşınmadan önceki adres
	IBAN            string `gorm:"size:34"`
	BIC             string `gorm:"size:11"`
	BankName        string `gorm:"size:100"`
	DateOfBirth     *time.Time
	Occupation      string `gorm:"size:100"`
	MonthlyIncome   *float64
	EmergencyContactName  string `gorm:"size:200"`
	EmergencyContactPhone string `gorm:"size:50"`
	Notes           string `gorm:"size:2000"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
