package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentRent      PaymentType = "rent"
	PaymentDeposit   PaymentType = "deposit"
	PaymentSurcharge PaymentType = "surcharge" // Yan gider farkı tahsilatı
	PaymentRefund    PaymentType = "refund"
	PaymentOther     PaymentType = "other"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodDirectDebit  PaymentMethod = "direct_debit"
	MethodCash         PaymentMethod = "cash"
	MethodPayPal       PaymentMethod = "paypal"
	MethodOther        PaymentMethod = "other"
)

type PaymentStatus string

const (
	PaymentReceived  PaymentStatus = "received"
	PaymentPending   PaymentStatus = "pending"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment - Tek bir kira/ödeme kaydı
type Payment struct {
	ID           uint  `gorm:"primaryKey"`
	LeaseID      uint  `gorm:"index;not null"`
	Lease        Lease `gorm:"foreignKey:LeaseID"`
	Amount       float64   `gorm:"not null"`
	PaymentDate  time.Time `gorm:"index;not null"`
	DueDate      time.Time `gorm:"index;not null"` // Vade tarihi
	PaymentMonth int       `gorm:"not null"`       // Hangi ayın kirası
	PaymentYear  int       `gorm:"not null"`
	Type         PaymentType   `gorm:"size:20;not null;default:rent"`
	Method       PaymentMethod `gorm:"size:20;not null;default:bank_transfer"`
	Status       PaymentStatus `gorm:"size:20;not null;default:received"`
	Reference    string        `gorm:"size:200"` // Açıklama / dekont referansı
	ExpectedAmount *float64               // Eksik ödemede beklenen tutar
	Notes        string `gorm:"size:1000"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// Difference - Eksik ödemede fark: beklenen - gelen
func Difference(p *Payment) float64 {
	if p.ExpectedAmount == nil {
		return 0
	}
	return *p.ExpectedAmount - p.Amount
}
