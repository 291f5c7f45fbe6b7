package models

import (
	"time"

	"gorm.io/gorm"
)

type UnitType string

const (
	UnitApartment  UnitType = "apartment"
	UnitCommercial UnitType = "commercial"
	UnitGarage     UnitType = "garage"
	UnitParking    UnitType = "parking"
	UnitCellar     UnitType = "cellar"
	UnitOther      UnitType = "other"
)

type UnitStatus string

const (
	UnitOccupied        UnitStatus = "occupied"
	UnitVacant          UnitStatus = "vacant"
	UnitUnderRenovation UnitStatus = "under_renovation"
	UnitOwnerUse        UnitStatus = "owner_use"
)

// Unit - Bina içindeki kiralanabilir birim (daire, dükkan, garaj)
type Unit struct {
	ID          uint     `gorm:"primaryKey"`
	PropertyID  uint     `gorm:"index;not null"`
	Property    Property `gorm:"foreignKey:PropertyID"`
	Name        string   `gorm:"size:200;not null"` // örn: "Daire 1. kat sol"
	Description string   `gorm:"size:1000"`
	Floor       *int
	Area        float64 `gorm:"not null"` // m²
	Rooms       *int
	Type        UnitType   `gorm:"size:20;not null;default:apartment"`
	Status      UnitStatus `gorm:"size:20;not null;default:vacant"`
	TargetRent  float64    `gorm:"not null"` // Hedeflenen soğuk kira
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
