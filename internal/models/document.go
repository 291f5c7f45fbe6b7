package models

import (
	"time"

	"gorm.io/gorm"
)

type DocumentCategory string

const (
	DocLeaseContract     DocumentCategory = "lease_contract"
	DocHandoverProtocol  DocumentCategory = "handover_protocol"
	DocUtilityStatement  DocumentCategory = "utility_statement"
	DocInvoice           DocumentCategory = "invoice"
	DocInsurancePolicy   DocumentCategory = "insurance_policy"
	DocLandRegister      DocumentCategory = "land_register"
	DocEnergyCertificate DocumentCategory = "energy_certificate"
	DocCorrespondence    DocumentCategory = "correspondence"
	DocPhoto             DocumentCategory = "photo"
	DocOther             DocumentCategory = "other"
)

// Document - Yüklenen belge (sözleşme, fatura, protokol...).
// Birden fazla entity'ye bağlanabilir, hepsi opsiyonel.
type Document struct {
	ID               uint   `gorm:"primaryKey"`
	FileName         string `gorm:"size:255;not null"` // Diskteki üretilmiş isim
	OriginalFileName string `gorm:"size:255;not null"`
	ContentType      string `gorm:"size:100"`
	FileSize         int64  `gorm:"not null"`
	StoragePath      string `gorm:"size:500;not null"`
	Category         DocumentCategory `gorm:"size:30;not null;default:other"`
	Description      string           `gorm:"size:1000"`
	PropertyID       *uint `gorm:"index"`
	UnitID           *uint `gorm:"index"`
	TenantID         *uint `gorm:"index"`
	LeaseID          *uint `gorm:"index"`
	ExpenseID        *uint `gorm:"index"`
	UploadedByID     uint  `gorm:"index;not null"`
	UploadedBy       User  `gorm:"foreignKey:UploadedByID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
