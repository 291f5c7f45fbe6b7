package models

import (
	"time"

	"gorm.io/gorm"
)

type MeterType string

const (
	MeterWater       MeterType = "water"
	MeterHotWater    MeterType = "hot_water"
	MeterGas         MeterType = "gas"
	MeterElectricity MeterType = "electricity"
	MeterHeat        MeterType = "heat"
	MeterOther       MeterType = "other"
)

// MeterReading - Sayaç okuması (su, gaz, elektrik, ısı)
type MeterReading struct {
	ID          uint      `gorm:"primaryKey"`
	UnitID      uint      `gorm:"index;not null"`
	Unit        Unit      `gorm:"foreignKey:UnitID"`
	MeterType   MeterType `gorm:"size:20;not null"`
	MeterNumber string    `gorm:"size:50"` // Sayaç seri numarası
	Value       float64   `gorm:"not null"`
	ReadingDate time.Time `gorm:"index;not null"`
	// Aynı birim + sayaç tipi için bir önceki okumanın değeri,
	// yoksa null. Tüketim buradan türetilir.
	PreviousValue *float64
	Notes         string `gorm:"size:1000"`
	PhotoPath     string `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// Consumption - Son okumadan bu yana tüketim, önceki okuma yoksa null
func Consumption(r *MeterReading) *float64 {
	if r.PreviousValue == nil {
		return nil
	}
	d := r.Value - *r.PreviousValue
	return &d
}
