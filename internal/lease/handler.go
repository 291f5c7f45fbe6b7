package lease

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

type CreateLeaseRequest struct {
	TenantID           uint    `json:"tenant_id"`
	UnitID             uint    `json:"unit_id"`
	StartDate          string  `json:"start_date"` // "2026-01-01"
	EndDate            *string `json:"end_date"`
	ColdRent           float64 `json:"cold_rent"`
	AdditionalCosts    float64 `json:"additional_costs"`
	DepositAmount      float64 `json:"deposit_amount"`
	NoticePeriodMonths int     `json:"notice_period_months"`
	PaymentDayOfMonth  int     `json:"payment_day_of_month"`
	Notes              string  `json:"notes"`
}

type UpdateLeaseRequest struct {
	ColdRent        *float64 `json:"cold_rent"`
	AdditionalCosts *float64 `json:"additional_costs"`
	DepositAmount   *float64 `json:"deposit_amount"`
	DepositPaid     *float64 `json:"deposit_paid"`
	DepositStatus   *string  `json:"deposit_status"`
	Status          *string  `json:"status"`
	EndDate         *string  `json:"end_date"`
	TerminationDate *string  `json:"termination_date"`
	MoveOutDate     *string  `json:"move_out_date"`
	NoticePeriodMonths *int  `json:"notice_period_months"`
	PaymentDayOfMonth  *int  `json:"payment_day_of_month"`
	Notes           *string  `json:"notes"`
}

type LeaseResponse struct {
	ID                 uint    `json:"id"`
	TenantID           uint    `json:"tenant_id"`
	TenantName         string  `json:"tenant_name"`
	UnitID             uint    `json:"unit_id"`
	UnitName           string  `json:"unit_name"`
	PropertyName       string  `json:"property_name"`
	StartDate          string  `json:"start_date"`
	EndDate            *string `json:"end_date"`
	ColdRent           float64 `json:"cold_rent"`
	AdditionalCosts    float64 `json:"additional_costs"`
	TotalRent          float64 `json:"total_rent"`
	DepositAmount      float64 `json:"deposit_amount"`
	DepositPaid        float64 `json:"deposit_paid"`
	DepositStatus      string  `json:"deposit_status"`
	DepositFullyPaid   bool    `json:"deposit_fully_paid"`
	Status             string  `json:"status"`
	NoticePeriodMonths int     `json:"notice_period_months"`
	PaymentDayOfMonth  int     `json:"payment_day_of_month"`
	IsActive           bool    `json:"is_active"`
	Notes              string  `json:"notes"`
	CreatedAt          string  `json:"created_at"`
}

func toResponse(l *models.Lease, now time.Time) LeaseResponse {
	var endDate *string
	if l.EndDate != nil {
		s := l.EndDate.Format("2006-01-02")
		endDate = &s
	}
	return LeaseResponse{
		ID:                 l.ID,
		TenantID:           l.TenantID,
		TenantName:         l.Tenant.FullName(),
		UnitID:             l.UnitID,
		UnitName:           l.Unit.Name,
		PropertyName:       l.Unit.Property.Name,
		StartDate:          l.StartDate.Format("2006-01-02"),
		EndDate:            endDate,
		ColdRent:           l.ColdRent,
		AdditionalCosts:    l.AdditionalCosts,
		TotalRent:          models.TotalRent(l),
		DepositAmount:      l.DepositAmount,
		DepositPaid:        l.DepositPaid,
		DepositStatus:      string(l.DepositStatus),
		DepositFullyPaid:   models.DepositFullyPaid(l),
		Status:             string(l.Status),
		NoticePeriodMonths: l.NoticePeriodMonths,
		PaymentDayOfMonth:  l.PaymentDayOfMonth,
		IsActive:           models.IsActiveAt(l, now),
		Notes:              l.Notes,
		CreatedAt:          l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.InvalidInput("Tarih formatı 'YYYY-MM-DD' olmalı")
	}
	return d, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ownedUnitIDs - Liste sorguları sessizce kullanıcının birimlerine daraltılır
func ownedUnitIDs(c *fiber.Ctx) ([]uint, error) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		return nil, err
	}
	return ownership.OwnedUnitIDs(database.DB, callerID)
}

// GET /api/leases
func ListLeasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitIDs, err := ownedUnitIDs(c)
		if err != nil {
			return err
		}
		var leases []models.Lease
		if len(unitIDs) > 0 {
			if err := database.DB.
				Preload("Tenant").
				Preload("Unit").
				Preload("Unit.Property").
				Where("unit_id IN ?", unitIDs).
				Order("start_date DESC, id DESC").
				Find(&leases).Error; err != nil {
				return apperr.Internal("Sözleşmeler listelenemedi", err)
			}
		}
		now := time.Now()
		res := make([]LeaseResponse, 0, len(leases))
		for i := range leases {
			res = append(res, toResponse(&leases[i], now))
		}
		return c.JSON(res)
	}
}

// GET /api/leases/active
func ListActiveLeasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitIDs, err := ownedUnitIDs(c)
		if err != nil {
			return err
		}
		now := time.Now()
		var leases []models.Lease
		if len(unitIDs) > 0 {
			if err := database.DB.
				Preload("Tenant").
				Preload("Unit").
				Preload("Unit.Property").
				Where("unit_id IN ? AND status = ?", unitIDs, models.LeaseActive).
				Order("start_date DESC").
				Find(&leases).Error; err != nil {
				return apperr.Internal("Sözleşmeler listelenemedi", err)
			}
		}
		res := make([]LeaseResponse, 0, len(leases))
		for i := range leases {
			if models.IsActiveAt(&leases[i], now) {
				res = append(res, toResponse(&leases[i], now))
			}
		}
		return c.JSON(res)
	}
}

// GET /api/leases/expiring?days=90
func ListExpiringLeasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitIDs, err := ownedUnitIDs(c)
		if err != nil {
			return err
		}

		days := 90
		if daysStr := c.Query("days"); daysStr != "" {
			if _, err := fmt.Sscan(daysStr, &days); err != nil || days <= 0 {
				return apperr.InvalidInput("days geçersiz")
			}
		}

		now := time.Now()
		horizon := now.AddDate(0, 0, days)

		var leases []models.Lease
		if len(unitIDs) > 0 {
			if err := database.DB.
				Preload("Tenant").
				Preload("Unit").
				Preload("Unit.Property").
				Where("unit_id IN ? AND status = ? AND end_date IS NOT NULL AND end_date > ? AND end_date <= ?",
					unitIDs, models.LeaseActive, now, horizon).
				Order("end_date ASC").
				Find(&leases).Error; err != nil {
				return apperr.Internal("Sözleşmeler listelenemedi", err)
			}
		}
		res := make([]LeaseResponse, 0, len(leases))
		for i := range leases {
			res = append(res, toResponse(&leases[i], now))
		}
		return c.JSON(res)
	}
}

// GET /api/leases/unit/:unitId
func ListLeasesByUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var unitID uint
		if _, err := fmt.Sscan(c.Params("unitId"), &unitID); err != nil || unitID == 0 {
			return apperr.InvalidInput("unitId geçersiz")
		}

		// Sahiplik kontrolü: başkasının birimi NotFound görünür
		if _, err := ownership.UnitAccess(database.DB, callerID, unitID, false); err != nil {
			return err
		}

		var leases []models.Lease
		if err := database.DB.
			Preload("Tenant").
			Preload("Unit").
			Preload("Unit.Property").
			Where("unit_id = ?", unitID).
			Order("start_date DESC").
			Find(&leases).Error; err != nil {
			return apperr.Internal("Sözleşmeler listelenemedi", err)
		}

		now := time.Now()
		res := make([]LeaseResponse, 0, len(leases))
		for i := range leases {
			res = append(res, toResponse(&leases[i], now))
		}
		return c.JSON(res)
	}
}

// GET /api/leases/tenant/:tenantId
func ListLeasesByTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitIDs, err := ownedUnitIDs(c)
		if err != nil {
			return err
		}

		var tenantID uint
		if _, err := fmt.Sscan(c.Params("tenantId"), &tenantID); err != nil || tenantID == 0 {
			return apperr.InvalidInput("tenantId geçersiz")
		}

		var leases []models.Lease
		if len(unitIDs) > 0 {
			if err := database.DB.
				Preload("Tenant").
				Preload("Unit").
				Preload("Unit.Property").
				Where("tenant_id = ? AND unit_id IN ?", tenantID, unitIDs).
				Order("start_date DESC").
				Find(&leases).Error; err != nil {
				return apperr.Internal("Sözleşmeler listelenemedi", err)
			}
		}
		now := time.Now()
		res := make([]LeaseResponse, 0, len(leases))
		for i := range leases {
			res = append(res, toResponse(&leases[i], now))
		}
		return c.JSON(res)
	}
}

// GET /api/leases/:id
func GetLeaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var leaseID uint
		if _, err := fmt.Sscan(c.Params("id"), &leaseID); err != nil || leaseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if _, err := ownership.LeaseAccess(database.DB, callerID, leaseID, false); err != nil {
			return err
		}

		var lease models.Lease
		if err := database.DB.
			Preload("Tenant").
			Preload("Unit").
			Preload("Unit.Property").
			First(&lease, "id = ?", leaseID).Error; err != nil {
			return apperr.NotFound("Sözleşme bulunamadı")
		}

		return c.JSON(toResponse(&lease, time.Now()))
	}
}

// POST /api/leases
func CreateLeaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreateLeaseRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}
		if body.TenantID == 0 || body.UnitID == 0 {
			return apperr.InvalidInput("tenant_id ve unit_id zorunlu")
		}

		startDate, err := parseDate(body.StartDate)
		if err != nil {
			return err
		}
		endDate, err := parseOptionalDate(body.EndDate)
		if err != nil {
			return err
		}

		lease, err := Create(database.DB, callerID, CreateInput{
			TenantID:           body.TenantID,
			UnitID:             body.UnitID,
			StartDate:          startDate,
			EndDate:            endDate,
			ColdRent:           body.ColdRent,
			AdditionalCosts:    body.AdditionalCosts,
			DepositAmount:      body.DepositAmount,
			NoticePeriodMonths: body.NoticePeriodMonths,
			PaymentDayOfMonth:  body.PaymentDayOfMonth,
			Notes:              body.Notes,
		})
		if err != nil {
			return err
		}

		var full models.Lease
		if err := database.DB.
			Preload("Tenant").
			Preload("Unit").
			Preload("Unit.Property").
			First(&full, "id = ?", lease.ID).Error; err != nil {
			return apperr.Internal("Sözleşme yüklenemedi", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&full, time.Now()))
	}
}

// PUT /api/leases/:id
func UpdateLeaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var leaseID uint
		if _, err := fmt.Sscan(c.Params("id"), &leaseID); err != nil || leaseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		var body UpdateLeaseRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		endDate, err := parseOptionalDate(body.EndDate)
		if err != nil {
			return err
		}
		terminationDate, err := parseOptionalDate(body.TerminationDate)
		if err != nil {
			return err
		}
		moveOutDate, err := parseOptionalDate(body.MoveOutDate)
		if err != nil {
			return err
		}

		in := UpdateInput{
			ColdRent:        body.ColdRent,
			AdditionalCosts: body.AdditionalCosts,
			DepositAmount:   body.DepositAmount,
			DepositPaid:     body.DepositPaid,
			EndDate:         endDate,
			TerminationDate: terminationDate,
			MoveOutDate:     moveOutDate,
			NoticePeriodMonths: body.NoticePeriodMonths,
			PaymentDayOfMonth:  body.PaymentDayOfMonth,
			Notes:           body.Notes,
		}
		if body.Status != nil {
			s := models.LeaseStatus(*body.Status)
			in.Status = &s
		}
		if body.DepositStatus != nil {
			s := models.DepositStatus(*body.DepositStatus)
			in.DepositStatus = &s
		}

		lease, err := Update(database.DB, callerID, leaseID, in)
		if err != nil {
			return err
		}

		var full models.Lease
		if err := database.DB.
			Preload("Tenant").
			Preload("Unit").
			Preload("Unit.Property").
			First(&full, "id = ?", lease.ID).Error; err != nil {
			return apperr.Internal("Sözleşme yüklenemedi", err)
		}

		return c.JSON(toResponse(&full, time.Now()))
	}
}

// DELETE /api/leases/:id
func DeleteLeaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var leaseID uint
		if _, err := fmt.Sscan(c.Params("id"), &leaseID); err != nil || leaseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if err := Delete(database.DB, callerID, leaseID); err != nil {
			return err
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
