package payment

import (
	"fmt"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	LeaseID      uint    `json:"lease_id"`
	Amount       float64 `json:"amount"`
	PaymentDate  string  `json:"payment_date"` // "2026-08-30"
	DueDate      string  `json:"due_date"`
	PaymentMonth int     `json:"payment_month"`
	PaymentYear  int     `json:"payment_year"`
	Type         string  `json:"type"`
	Method       string  `json:"method"`
	Status       string  `json:"status"`
	Reference    string  `json:"reference"`
	ExpectedAmount *float64 `json:"expected_amount"`
	Notes        string `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount       *float64 `json:"amount"`
	PaymentDate  *string  `json:"payment_date"`
	DueDate      *string  `json:"due_date"`
	PaymentMonth *int     `json:"payment_month"`
	PaymentYear  *int     `json:"payment_year"`
	Type         *string  `json:"type"`
	Method       *string  `json:"method"`
	Status       *string  `json:"status"`
	Reference    *string  `json:"reference"`
	ExpectedAmount *float64 `json:"expected_amount"`
	Notes        *string `json:"notes"`
}

type PaymentResponse struct {
	ID           uint    `json:"id"`
	LeaseID      uint    `json:"lease_id"`
	TenantName   string  `json:"tenant_name"`
	UnitName     string  `json:"unit_name"`
	Amount       float64 `json:"amount"`
	PaymentDate  string  `json:"payment_date"`
	DueDate      string  `json:"due_date"`
	PaymentMonth int     `json:"payment_month"`
	PaymentYear  int     `json:"payment_year"`
	Type         string  `json:"type"`
	Method       string  `json:"method"`
	Status       string  `json:"status"`
	Reference    string  `json:"reference"`
	ExpectedAmount *float64 `json:"expected_amount"`
	Difference   float64 `json:"difference"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at"`
}

func validPaymentType(t models.PaymentType) bool {
	switch t {
	case models.PaymentRent, models.PaymentDeposit, models.PaymentSurcharge,
		models.PaymentRefund, models.PaymentOther:
		return true
	}
	return false
}

func validMethod(m models.PaymentMethod) bool {
	switch m {
	case models.MethodBankTransfer, models.MethodDirectDebit,
		models.MethodCash, models.MethodPayPal, models.MethodOther:
		return true
	}
	return false
}

func validPaymentStatus(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentReceived, models.PaymentPending, models.PaymentOverdue,
		models.PaymentPartial, models.PaymentCancelled:
		return true
	}
	return false
}

func toPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		LeaseID:      p.LeaseID,
		TenantName:   p.Lease.Tenant.FullName(),
		UnitName:     p.Lease.Unit.Name,
		Amount:       p.Amount,
		PaymentDate:  p.PaymentDate.Format("2006-01-02"),
		DueDate:      p.DueDate.Format("2006-01-02"),
		PaymentMonth: p.PaymentMonth,
		PaymentYear:  p.PaymentYear,
		Type:         string(p.Type),
		Method:       string(p.Method),
		Status:       string(p.Status),
		Reference:    p.Reference,
		ExpectedAmount: p.ExpectedAmount,
		Difference:   models.Difference(p),
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ownedJoin - Sahip olunan birimlerin ödemelerine daraltılmış sorgu
func ownedJoin(callerID uint) (*gorm.DB, error) {
	unitIDs, err := ownership.OwnedUnitIDs(database.DB, callerID)
	if err != nil {
		return nil, err
	}
	return database.DB.Model(&models.Payment{}).
		Preload("Lease.Tenant").Preload("Lease.Unit").
		Joins("JOIN leases ON leases.id = payments.lease_id AND leases.deleted_at IS NULL").
		Where("leases.unit_id IN ?", unitIDs), nil
}

// GET /api/payments[?year=2026&month=8&status=received]
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		dbq, err := ownedJoin(callerID)
		if err != nil {
			return err
		}

		if yearStr := c.Query("year"); yearStr != "" {
			var year int
			if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
				return apperr.InvalidInput("year geçersiz")
			}
			dbq = dbq.Where("payments.payment_year = ?", year)
		}
		if monthStr := c.Query("month"); monthStr != "" {
			var month int
			if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
				return apperr.InvalidInput("month geçersiz")
			}
			dbq = dbq.Where("payments.payment_month = ?", month)
		}
		if st := c.Query("status"); st != "" {
			if !validPaymentStatus(models.PaymentStatus(st)) {
				return apperr.InvalidInput("status geçersiz")
			}
			dbq = dbq.Where("payments.status = ?", st)
		}

		var payments []models.Payment
		if err := dbq.Order("payments.payment_date DESC, payments.id DESC").
			Find(&payments).Error; err != nil {
			return apperr.Internal("Ödemeler listelenemedi", err)
		}

		res := make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			res = append(res, toPaymentResponse(&payments[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/payments/lease/:leaseId
func ListPaymentsByLeaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var leaseID uint
		if _, err := fmt.Sscan(c.Params("leaseId"), &leaseID); err != nil || leaseID == 0 {
			return apperr.InvalidInput("leaseId geçersiz")
		}

		if _, err := ownership.LeaseAccess(database.DB, callerID, leaseID, false); err != nil {
			return err
		}

		var payments []models.Payment
		if err := database.DB.
			Preload("Lease.Tenant").Preload("Lease.Unit").
			Where("lease_id = ?", leaseID).
			Order("payment_date DESC, id DESC").
			Find(&payments).Error; err != nil {
			return apperr.Internal("Ödemeler listelenemedi", err)
		}

		res := make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			res = append(res, toPaymentResponse(&payments[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/payments/overdue
// Vadesi geçmiş bekleyen ödemeler
func ListOverduePaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		dbq, err := ownedJoin(callerID)
		if err != nil {
			return err
		}

		var payments []models.Payment
		if err := dbq.
			Where("payments.status = ? AND payments.due_date < ?", models.PaymentPending, time.Now()).
			Order("payments.due_date ASC").
			Find(&payments).Error; err != nil {
			return apperr.Internal("Ödemeler listelenemedi", err)
		}

		res := make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			res = append(res, toPaymentResponse(&payments[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/payments/:id
func GetPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var paymentID uint
		if _, err := fmt.Sscan(c.Params("id"), &paymentID); err != nil || paymentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if _, err := ownership.PaymentAccess(database.DB, callerID, paymentID, false); err != nil {
			return err
		}

		var payment models.Payment
		if err := database.DB.Preload("Lease.Tenant").Preload("Lease.Unit").
			First(&payment, "id = ?", paymentID).Error; err != nil {
			return apperr.NotFound("Ödeme bulunamadı")
		}
		return c.JSON(toPaymentResponse(&payment))
	}
}

// POST /api/payments
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}
		if body.LeaseID == 0 {
			return apperr.InvalidInput("lease_id zorunlu")
		}
		if body.Amount < 0 {
			return apperr.InvalidInput("amount negatif olamaz")
		}
		if body.PaymentMonth < 1 || body.PaymentMonth > 12 {
			return apperr.InvalidInput("payment_month 1-12 arasında olmalı")
		}
		if body.PaymentYear < 2000 {
			return apperr.InvalidInput("payment_year geçersiz")
		}

		if _, err := ownership.LeaseAccess(database.DB, callerID, body.LeaseID, true); err != nil {
			return err
		}

		paymentDate, err := time.Parse("2006-01-02", body.PaymentDate)
		if err != nil {
			return apperr.InvalidInput("payment_date formatı 'YYYY-MM-DD' olmalı")
		}
		dueDate, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return apperr.InvalidInput("due_date formatı 'YYYY-MM-DD' olmalı")
		}

		ptype := models.PaymentRent
		if body.Type != "" {
			ptype = models.PaymentType(body.Type)
			if !validPaymentType(ptype) {
				return apperr.InvalidInput("Geçersiz ödeme tipi")
			}
		}
		method := models.MethodBankTransfer
		if body.Method != "" {
			method = models.PaymentMethod(body.Method)
			if !validMethod(method) {
				return apperr.InvalidInput("Geçersiz ödeme yöntemi")
			}
		}
		status := models.PaymentReceived
		if body.Status != "" {
			status = models.PaymentStatus(body.Status)
			if !validPaymentStatus(status) {
				return apperr.InvalidInput("Geçersiz ödeme statüsü")
			}
		}

		payment := models.Payment{
			LeaseID:      body.LeaseID,
			Amount:       body.Amount,
			PaymentDate:  paymentDate,
			DueDate:      dueDate,
			PaymentMonth: body.PaymentMonth,
			PaymentYear:  body.PaymentYear,
			Type:         ptype,
			Method:       method,
			Status:       status,
			Reference:    body.Reference,
			ExpectedAmount: body.ExpectedAmount,
			Notes:        body.Notes,
		}
		if err := database.DB.Create(&payment).Error; err != nil {
			return apperr.Internal("Ödeme kaydedilemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ödeme kaydedildi: sözleşme %d, %.2f EUR", payment.LeaseID, payment.Amount),
		})

		var full models.Payment
		if err := database.DB.Preload("Lease.Tenant").Preload("Lease.Unit").
			First(&full, "id = ?", payment.ID).Error; err != nil {
			return apperr.Internal("Ödeme yüklenemedi", err)
		}
		return c.Status(fiber.StatusCreated).JSON(toPaymentResponse(&full))
	}
}

// PUT /api/payments/:id
func UpdatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var paymentID uint
		if _, err := fmt.Sscan(c.Params("id"), &paymentID); err != nil || paymentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		payment, err := ownership.PaymentAccess(database.DB, callerID, paymentID, true)
		if err != nil {
			return err
		}

		var body UpdatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		if body.Amount != nil {
			if *body.Amount < 0 {
				return apperr.InvalidInput("amount negatif olamaz")
			}
			payment.Amount = *body.Amount
		}
		if body.PaymentDate != nil {
			d, err := time.Parse("2006-01-02", *body.PaymentDate)
			if err != nil {
				return apperr.InvalidInput("payment_date formatı 'YYYY-MM-DD' olmalı")
			}
			payment.PaymentDate = d
		}
		if body.DueDate != nil {
			d, err := time.Parse("2006-01-02", *body.DueDate)
			if err != nil {
				return apperr.InvalidInput("due_date formatı 'YYYY-MM-DD' olmalı")
			}
			payment.DueDate = d
		}
		if body.PaymentMonth != nil {
			if *body.PaymentMonth < 1 || *body.PaymentMonth > 12 {
				return apperr.InvalidInput("payment_month 1-12 arasında olmalı")
			}
			payment.PaymentMonth = *body.PaymentMonth
		}
		if body.PaymentYear != nil {
			if *body.PaymentYear < 2000 {
				return apperr.InvalidInput("payment_year geçersiz")
			}
			payment.PaymentYear = *body.PaymentYear
		}
		if body.Type != nil {
			t := models.PaymentType(*body.Type)
			if !validPaymentType(t) {
				return apperr.InvalidInput("Geçersiz ödeme tipi")
			}
			payment.Type = t
		}
		if body.Method != nil {
			m := models.PaymentMethod(*body.Method)
			if !validMethod(m) {
				return apperr.InvalidInput("Geçersiz ödeme yöntemi")
			}
			payment.Method = m
		}
		if body.Status != nil {
			s := models.PaymentStatus(*body.Status)
			if !validPaymentStatus(s) {
				return apperr.InvalidInput("Geçersiz ödeme statüsü")
			}
			payment.Status = s
		}
		if body.Reference != nil {
			payment.Reference = *body.Reference
		}
		if body.ExpectedAmount != nil {
			payment.ExpectedAmount = body.ExpectedAmount
		}
		if body.Notes != nil {
			payment.Notes = *body.Notes
		}

		if err := database.DB.Save(payment).Error; err != nil {
			return apperr.Internal("Ödeme güncellenemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Ödeme güncellendi: %d", payment.ID),
		})

		var full models.Payment
		if err := database.DB.Preload("Lease.Tenant").Preload("Lease.Unit").
			First(&full, "id = ?", payment.ID).Error; err != nil {
			return apperr.Internal("Ödeme yüklenemedi", err)
		}
		return c.JSON(toPaymentResponse(&full))
	}
}

// DELETE /api/payments/:id
func DeletePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var paymentID uint
		if _, err := fmt.Sscan(c.Params("id"), &paymentID); err != nil || paymentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		payment, err := ownership.PaymentAccess(database.DB, callerID, paymentID, true)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(payment).Error; err != nil {
			return apperr.Internal("Ödeme silinemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "payment",
			EntityID:    paymentID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Ödeme silindi: %d", paymentID),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func writeAudit(callerID uint, opts audit.LogOptions) {
	opts.UserID = callerID
	var user models.User
	if err := database.DB.First(&user, "id = ?", callerID).Error; err == nil {
		opts.UserName = user.FullName()
	}
	_ = audit.WriteLog(database.DB, opts)
}
