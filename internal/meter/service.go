package meter

import (
	"errors"
	"fmt"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"gorm.io/gorm"
)

type RecordInput struct {
	UnitID      uint
	MeterType   models.MeterType
	MeterNumber string
	Value       float64
	ReadingDate time.Time
	Notes       string
	PhotoPath   string
}

type UpdateInput struct {
	MeterNumber *string
	Value       *float64
	ReadingDate *time.Time
	Notes       *string
}

func validMeterType(t models.MeterType) bool {
	switch t {
	case models.MeterWater, models.MeterHotWater, models.MeterGas,
		models.MeterElectricity, models.MeterHeat, models.MeterOther:
		return true
	}
	return false
}

// latestBefore - Aynı (birim, sayaç tipi) için verilen tarihten önceki
// son okuma; yoksa nil
func latestBefore(tx *gorm.DB, unitID uint, meterType models.MeterType, date time.Time, excludeID uint) (*models.MeterReading, error) {
	var prev models.MeterReading
	q := tx.Where("unit_id = ? AND meter_type = ? AND reading_date <= ?", unitID, meterType, date).
		Order("reading_date DESC, id DESC")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&prev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("Önceki okuma sorgulanamadı", err)
	}
	return &prev, nil
}

// Record - Yeni sayaç okuması. Değer aynı birim + sayaç tipi için bir
// önceki okumadan küçük olamaz; önceki değer kayda yazılır, tüketim
// buradan türetilir.
func Record(db *gorm.DB, callerID uint, in RecordInput) (*models.MeterReading, error) {
	if !validMeterType(in.MeterType) {
		return nil, apperr.InvalidInput("Geçersiz sayaç tipi")
	}
	if in.Value < 0 {
		return nil, apperr.InvalidInput("Sayaç değeri negatif olamaz")
	}
	if in.ReadingDate.IsZero() {
		return nil, apperr.InvalidInput("reading_date zorunlu")
	}

	var reading models.MeterReading
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ownership.UnitAccess(tx, callerID, in.UnitID, true); err != nil {
			return err
		}

		prev, err := latestBefore(tx, in.UnitID, in.MeterType, in.ReadingDate, 0)
		if err != nil {
			return err
		}
		if prev != nil && in.Value < prev.Value {
			return apperr.InvalidInput("Sayaç okuması azalamaz")
		}

		reading = models.MeterReading{
			UnitID:      in.UnitID,
			MeterType:   in.MeterType,
			MeterNumber: in.MeterNumber,
			Value:       in.Value,
			ReadingDate: in.ReadingDate,
			Notes:       in.Notes,
			PhotoPath:   in.PhotoPath,
		}
		if prev != nil {
			v := prev.Value
			reading.PreviousValue = &v
		}

		if err := tx.Create(&reading).Error; err != nil {
			return apperr.Internal("Okuma kaydedilemedi", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "meter_reading",
		EntityID:    reading.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Sayaç okuması: birim %d, %s = %.2f", reading.UnitID, reading.MeterType, reading.Value),
	})

	return &reading, nil
}

// Update - Okuma düzeltmesi. Monotonluk komşu okumalara göre yeniden
// doğrulanır: önceki okumadan küçük, sonraki okumadan büyük olamaz.
func Update(db *gorm.DB, callerID, readingID uint, in UpdateInput) (*models.MeterReading, error) {
	var reading *models.MeterReading
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		reading, err = ownership.ReadingAccess(tx, callerID, readingID, true)
		if err != nil {
			return err
		}

		if in.MeterNumber != nil {
			reading.MeterNumber = *in.MeterNumber
		}
		if in.Value != nil {
			if *in.Value < 0 {
				return apperr.InvalidInput("Sayaç değeri negatif olamaz")
			}
			reading.Value = *in.Value
		}
		if in.ReadingDate != nil {
			reading.ReadingDate = *in.ReadingDate
		}
		if in.Notes != nil {
			reading.Notes = *in.Notes
		}

		prev, err := latestBefore(tx, reading.UnitID, reading.MeterType, reading.ReadingDate, reading.ID)
		if err != nil {
			return err
		}
		if prev != nil && reading.Value < prev.Value {
			return apperr.InvalidInput("Sayaç okuması azalamaz")
		}

		// Sonraki okuma varsa o da bu değerden küçük kalmamalı
		var next models.MeterReading
		nerr := tx.Where("unit_id = ? AND meter_type = ? AND reading_date > ? AND id <> ?",
			reading.UnitID, reading.MeterType, reading.ReadingDate, reading.ID).
			Order("reading_date ASC, id ASC").
			First(&next).Error
		if nerr == nil && next.Value < reading.Value {
			return apperr.InvalidInput("Sayaç okuması sonraki okumadan büyük olamaz")
		}
		if nerr != nil && !errors.Is(nerr, gorm.ErrRecordNotFound) {
			return apperr.Internal("Sonraki okuma sorgulanamadı", nerr)
		}

		if prev != nil {
			v := prev.Value
			reading.PreviousValue = &v
		} else {
			reading.PreviousValue = nil
		}

		if err := tx.Save(reading).Error; err != nil {
			return apperr.Internal("Okuma güncellenemedi", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "meter_reading",
		EntityID:    reading.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Sayaç okuması güncellendi: %d", reading.ID),
	})

	return reading, nil
}

// Delete - Okumayı soft-delete eder
func Delete(db *gorm.DB, callerID, readingID uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		reading, err := ownership.ReadingAccess(tx, callerID, readingID, true)
		if err != nil {
			return err
		}
		if err := tx.Delete(reading).Error; err != nil {
			return apperr.Internal("Okuma silinemedi", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "meter_reading",
		EntityID:    readingID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Sayaç okuması silindi: %d", readingID),
	})
	return nil
}

func writeAudit(db *gorm.DB, callerID uint, opts audit.LogOptions) {
	opts.UserID = callerID
	var user models.User
	if err := db.First(&user, "id = ?", callerID).Error; err == nil {
		opts.UserName = user.FullName()
	}
	_ = audit.WriteLog(db, opts)
}
