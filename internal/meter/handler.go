package meter

import (
	"fmt"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"github.com/gofiber/fiber/v2"
)

type CreateReadingRequest struct {
	UnitID      uint    `json:"unit_id"`
	MeterType   string  `json:"meter_type"`
	MeterNumber string  `json:"meter_number"`
	Value       float64 `json:"value"`
	ReadingDate string  `json:"reading_date"` // "2026-08-30"
	Notes       string  `json:"notes"`
	PhotoPath   string  `json:"photo_path"`
}

type UpdateReadingRequest struct {
	MeterNumber *string  `json:"meter_number"`
	Value       *float64 `json:"value"`
	ReadingDate *string  `json:"reading_date"`
	Notes       *string  `json:"notes"`
}

type ReadingResponse struct {
	ID            uint     `json:"id"`
	UnitID        uint     `json:"unit_id"`
	UnitName      string   `json:"unit_name"`
	MeterType     string   `json:"meter_type"`
	MeterNumber   string   `json:"meter_number"`
	Value         float64  `json:"value"`
	PreviousValue *float64 `json:"previous_value"`
	Consumption   *float64 `json:"consumption"`
	ReadingDate   string   `json:"reading_date"`
	Notes         string   `json:"notes"`
	CreatedAt     string   `json:"created_at"`
}

func toReadingResponse(r *models.MeterReading) ReadingResponse {
	return ReadingResponse{
		ID:            r.ID,
		UnitID:        r.UnitID,
		UnitName:      r.Unit.Name,
		MeterType:     string(r.MeterType),
		MeterNumber:   r.MeterNumber,
		Value:         r.Value,
		PreviousValue: r.PreviousValue,
		Consumption:   models.Consumption(r),
		ReadingDate:   r.ReadingDate.Format("2006-01-02"),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/meter-readings/unit/:unitId[?meter_type=water]
func ListReadingsByUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var unitID uint
		if _, err := fmt.Sscan(c.Params("unitId"), &unitID); err != nil || unitID == 0 {
			return apperr.InvalidInput("unitId geçersiz")
		}

		if _, err := ownership.UnitAccess(database.DB, callerID, unitID, false); err != nil {
			return err
		}

		dbq := database.DB.
			Preload("Unit").
			Where("unit_id = ?", unitID).
			Order("reading_date DESC, id DESC")

		if mt := c.Query("meter_type"); mt != "" {
			if !validMeterType(models.MeterType(mt)) {
				return apperr.InvalidInput("meter_type geçersiz")
			}
			dbq = dbq.Where("meter_type = ?", mt)
		}

		var readings []models.MeterReading
		if err := dbq.Find(&readings).Error; err != nil {
			return apperr.Internal("Okumalar listelenemedi", err)
		}

		res := make([]ReadingResponse, 0, len(readings))
		for i := range readings {
			res = append(res, toReadingResponse(&readings[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/meter-readings/:id
func GetReadingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var readingID uint
		if _, err := fmt.Sscan(c.Params("id"), &readingID); err != nil || readingID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if _, err := ownership.ReadingAccess(database.DB, callerID, readingID, false); err != nil {
			return err
		}

		var reading models.MeterReading
		if err := database.DB.Preload("Unit").First(&reading, "id = ?", readingID).Error; err != nil {
			return apperr.NotFound("Sayaç okuması bulunamadı")
		}

		return c.JSON(toReadingResponse(&reading))
	}
}

// POST /api/meter-readings
func CreateReadingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreateReadingRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}
		if body.UnitID == 0 {
			return apperr.InvalidInput("unit_id zorunlu")
		}

		readingDate, err := time.Parse("2006-01-02", body.ReadingDate)
		if err != nil {
			return apperr.InvalidInput("Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		reading, err := Record(database.DB, callerID, RecordInput{
			UnitID:      body.UnitID,
			MeterType:   models.MeterType(body.MeterType),
			MeterNumber: body.MeterNumber,
			Value:       body.Value,
			ReadingDate: readingDate,
			Notes:       body.Notes,
			PhotoPath:   body.PhotoPath,
		})
		if err != nil {
			return err
		}

		var full models.MeterReading
		if err := database.DB.Preload("Unit").First(&full, "id = ?", reading.ID).Error; err != nil {
			return apperr.Internal("Okuma yüklenemedi", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toReadingResponse(&full))
	}
}

// PUT /api/meter-readings/:id
func UpdateReadingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var readingID uint
		if _, err := fmt.Sscan(c.Params("id"), &readingID); err != nil || readingID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		var body UpdateReadingRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		in := UpdateInput{
			MeterNumber: body.MeterNumber,
			Value:       body.Value,
			Notes:       body.Notes,
		}
		if body.ReadingDate != nil {
			d, err := time.Parse("2006-01-02", *body.ReadingDate)
			if err != nil {
				return apperr.InvalidInput("Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			in.ReadingDate = &d
		}

		reading, err := Update(database.DB, callerID, readingID, in)
		if err != nil {
			return err
		}

		var full models.MeterReading
		if err := database.DB.Preload("Unit").First(&full, "id = ?", reading.ID).Error; err != nil {
			return apperr.Internal("Okuma yüklenemedi", err)
		}

		return c.JSON(toReadingResponse(&full))
	}
}

// DELETE /api/meter-readings/:id
func DeleteReadingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var readingID uint
		if _, err := fmt.Sscan(c.Params("id"), &readingID); err != nil || readingID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if err := Delete(database.DB, callerID, readingID); err != nil {
			return err
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
