package models

import (
	"time"

	"gorm.io/gorm"
)

type LeaseStatus string

const (
	LeaseActive     LeaseStatus = "active"
	LeaseTerminated LeaseStatus = "terminated" // Fesih bildirimi verildi, henüz bitmedi
	LeaseEnded      LeaseStatus = "ended"
	LeaseDraft      LeaseStatus = "draft"
)

type DepositStatus string

const (
	DepositPending  DepositStatus = "pending"
	DepositPartial  DepositStatus = "partial"
	DepositFull     DepositStatus = "full"
	DepositRefunded DepositStatus = "refunded"
)

// Lease - Kira sözleşmesi, kiracı ile birim arasındaki bağ
type Lease struct {
	ID                  uint   `gorm:"primaryKey"`
	TenantID            uint   `gorm:"index;not null"`
	Tenant              Tenant `gorm:"foreignKey:TenantID"`
	UnitID              uint   `gorm:"index;not null"`
	Unit                Unit   `gorm:"foreignKey:UnitID"`
	StartDate           time.Time `gorm:"not null"`
	EndDate             *time.Time // null = süresiz
	TerminationDate     *time.Time // Fesih bildirimi tarihi
	MoveOutDate         *time.Time // Fiili çıkış tarihi
	NoticePeriodMonths  int        `gorm:"not null;default:3"`
	ColdRent            float64    `gorm:"not null"` // Soğuk kira
	AdditionalCosts     float64    `gorm:"not null"` // Yan gider avansı
	DepositAmount       float64    `gorm:"not null"`
	DepositPaid         float64    `gorm:"not null;default:0"`
	DepositStatus       DepositStatus `gorm:"size:20;not null;default:pending"`
	LastRentIncreaseDate *time.Time
	PaymentDayOfMonth   int         `gorm:"not null;default:1"` // Ayın kaçında ödeneceği
	Status              LeaseStatus `gorm:"size:20;not null;default:active"`
	Notes               string      `gorm:"size:2000"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// TotalRent - Sıcak kira: soğuk kira + yan giderler
func TotalRent(l *Lease) float64 {
	return l.ColdRent + l.AdditionalCosts
}

// DepositFullyPaid - Depozito tamamen ödendi mi
func DepositFullyPaid(l *Lease) bool {
	return l.DepositPaid >= l.DepositAmount
}

// IsActiveAt - Sözleşme verilen anda yürürlükte mi: statü aktif,
// başlangıç geçmiş, bitiş ya yok ya da gelecekte
func IsActiveAt(l *Lease, now time.Time) bool {
	if l.Status != LeaseActive {
		return false
	}
	if l.StartDate.After(now) {
		return false
	}
	return l.EndDate == nil || l.EndDate.After(now)
}
