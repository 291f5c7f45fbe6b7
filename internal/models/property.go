package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyMultiFamily  PropertyType = "multi_family"
	PropertyCommercial   PropertyType = "commercial"
	PropertyMixedUse     PropertyType = "mixed_use"
	PropertyGarage       PropertyType = "garage"
	PropertyLand         PropertyType = "land"
)

// Property - Bina / Gayrimenkul, bir ev sahibinin ana varlığı
type Property struct {
	ID          uint   `gorm:"primaryKey"`
	OwnerID     uint   `gorm:"index;not null"`
	Owner       User   `gorm:"foreignKey:OwnerID"`
	Name        string `gorm:"size:200;not null"`
	Street      string `gorm:"size:200;not null"`
	HouseNumber string `gorm:"size:20;not null"`
	ZipCode     string `gorm:"size:10;not null"`
	City        string `gorm:"size:100;not null"`
	Country     string `gorm:"size:100;default:Deutschland"`
	YearBuilt   *int
	TotalArea   *float64 // m² cinsinden toplam alan
	Floors      *int
	Type        PropertyType `gorm:"size:30;not null;default:multi_family"`
	PurchasePrice *float64
	PurchaseDate  *time.Time
	Units       []Unit `gorm:"foreignKey:PropertyID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (p *Property) FullAddress() string {
	return fmt.Sprintf("%s %s, %s %s", p.Street, p.HouseNumber, p.ZipCode, p.City)
}
