package tenant

import (
	"fmt"
	"strings"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Kiracı kayıtları sahiplik kapsaması dışındadır: her doğrulanmış
// kullanıcı tüm kiracıları görebilir ve düzenleyebilir.

type CreateTenantRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	MobilePhone     string   `json:"mobile_phone"`
	PreviousAddress string   `json:"previous_address"`
	IBAN            string   `json:"iban"`
	BIC             string   `json:"bic"`
	BankName        string   `json:"bank_name"`
	DateOfBirth     *string  `json:"date_of_birth"`
	Occupation      string   `json:"occupation"`
	MonthlyIncome   *float64 `json:"monthly_income"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	Notes           string `json:"notes"`
}

type UpdateTenantRequest struct {
	FirstName       *string  `json:"first_name"`
	LastName        *string  `json:"last_name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	MobilePhone     *string  `json:"mobile_phone"`
	PreviousAddress *string  `json:"previous_address"`
	IBAN            *string  `json:"iban"`
	BIC             *string  `json:"bic"`
	BankName        *string  `json:"bank_name"`
	DateOfBirth     *string  `json:"date_of_birth"`
	Occupation      *string  `json:"occupation"`
	MonthlyIncome   *float64 `json:"monthly_income"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	Notes           *string `json:"notes"`
}

type TenantResponse struct {
	ID              uint     `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	MobilePhone     string   `json:"mobile_phone"`
	PreviousAddress string   `json:"previous_address"`
	IBAN            string   `json:"iban"`
	BIC             string   `json:"bic"`
	BankName        string   `json:"bank_name"`
	DateOfBirth     *string  `json:"date_of_birth"`
	Occupation      string   `json:"occupation"`
	MonthlyIncome   *float64 `json:"monthly_income"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
}

func toTenantResponse(t *models.Tenant) TenantResponse {
	res := TenantResponse{
		ID:              t.ID,
		FirstName:       t.FirstName,
		LastName:        t.LastName,
		FullName:        t.FullName(),
		Email:           t.Email,
		Phone:           t.Phone,
		MobilePhone:     t.MobilePhone,
		PreviousAddress: t.PreviousAddress,
		IBAN:            t.IBAN,
		BIC:             t.BIC,
		BankName:        t.BankName,
		Occupation:      t.Occupation,
		MonthlyIncome:   t.MonthlyIncome,
		EmergencyContactName:  t.EmergencyContactName,
		EmergencyContactPhone: t.EmergencyContactPhone,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if t.DateOfBirth != nil {
		s := t.DateOfBirth.Format("2006-01-02")
		res.DateOfBirth = &s
	}
	return res
}

// GET /api/tenants[?search=...]
func ListTenantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Order("last_name ASC, first_name ASC")

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			dbq = dbq.Where(
				"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
				like, like, like)
		}

		var tenants []models.Tenant
		if err := dbq.Find(&tenants).Error; err != nil {
			return apperr.Internal("Kiracılar listelenemedi", err)
		}

		res := make([]TenantResponse, 0, len(tenants))
		for i := range tenants {
			res = append(res, toTenantResponse(&tenants[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/tenants/:id
func GetTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tenantID uint
		if _, err := fmt.Sscan(c.Params("id"), &tenantID); err != nil || tenantID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		var tenant models.Tenant
		if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
			return apperr.NotFound("Kiracı bulunamadı")
		}
		return c.JSON(toTenantResponse(&tenant))
	}
}

// POST /api/tenants
func CreateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.FirstName == "" || body.LastName == "" || body.Email == "" {
			return apperr.InvalidInput("first_name, last_name ve email zorunlu")
		}

		tenant := models.Tenant{
			FirstName:       body.FirstName,
			LastName:        body.LastName,
			Email:           body.Email,
			Phone:           body.Phone,
			MobilePhone:     body.MobilePhone,
			PreviousAddress: body.PreviousAddress,
			IBAN:            body.IBAN,
			BIC:             body.BIC,
			BankName:        body.BankName,
			Occupation:      body.Occupation,
			MonthlyIncome:   body.MonthlyIncome,
			EmergencyContactName:  body.EmergencyContactName,
			EmergencyContactPhone: body.EmergencyContactPhone,
			Notes:           body.Notes,
		}
		if body.DateOfBirth != nil {
			d, err := time.Parse("2006-01-02", *body.DateOfBirth)
			if err != nil {
				return apperr.InvalidInput("date_of_birth formatı 'YYYY-MM-DD' olmalı")
			}
			tenant.DateOfBirth = &d
		}

		if err := database.DB.Create(&tenant).Error; err != nil {
			return apperr.Internal("Kiracı oluşturulamadı", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "tenant",
			EntityID:    tenant.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Kiracı eklendi: %s", tenant.FullName()),
		})

		return c.Status(fiber.StatusCreated).JSON(toTenantResponse(&tenant))
	}
}

// PUT /api/tenants/:id
func UpdateTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var tenantID uint
		if _, err := fmt.Sscan(c.Params("id"), &tenantID); err != nil || tenantID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		var tenant models.Tenant
		if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
			return apperr.NotFound("Kiracı bulunamadı")
		}

		var body UpdateTenantRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		if body.FirstName != nil {
			name := strings.TrimSpace(*body.FirstName)
			if name == "" {
				return apperr.InvalidInput("first_name boş olamaz")
			}
			tenant.FirstName = name
		}
		if body.LastName != nil {
			name := strings.TrimSpace(*body.LastName)
			if name == "" {
				return apperr.InvalidInput("last_name boş olamaz")
			}
			tenant.LastName = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*body.Email))
			if email == "" {
				return apperr.InvalidInput("email boş olamaz")
			}
			tenant.Email = email
		}
		if body.Phone != nil {
			tenant.Phone = *body.Phone
		}
		if body.MobilePhone != nil {
			tenant.MobilePhone = *body.MobilePhone
		}
		if body.PreviousAddress != nil {
			tenant.PreviousAddress = *body.PreviousAddress
		}
		if body.IBAN != nil {
			tenant.IBAN = *body.IBAN
		}
		if body.BIC != nil {
			tenant.BIC = *body.BIC
		}
		if body.BankName != nil {
			tenant.BankName = *body.BankName
		}
		if body.DateOfBirth != nil {
			d, err := time.Parse("2006-01-02", *body.DateOfBirth)
			if err != nil {
				return apperr.InvalidInput("date_of_birth formatı 'YYYY-MM-DD' olmalı")
			}
			tenant.DateOfBirth = &d
		}
		if body.Occupation != nil {
			tenant.Occupation = *body.Occupation
		}
		if body.MonthlyIncome != nil {
			tenant.MonthlyIncome = body.MonthlyIncome
		}
		if body.EmergencyContactName != nil {
			tenant.EmergencyContactName = *body.EmergencyContactName
		}
		if body.EmergencyContactPhone != nil {
			tenant.EmergencyContactPhone = *body.EmergencyContactPhone
		}
		if body.Notes != nil {
			tenant.Notes = *body.Notes
		}

		if err := database.DB.Save(&tenant).Error; err != nil {
			return apperr.Internal("Kiracı güncellenemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "tenant",
			EntityID:    tenant.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Kiracı güncellendi: %d", tenant.ID),
		})

		return c.JSON(toTenantResponse(&tenant))
	}
}

// DELETE /api/tenants/:id
// Aktif sözleşmesi olan kiracı silinemez
func DeleteTenantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var tenantID uint
		if _, err := fmt.Sscan(c.Params("id"), &tenantID); err != nil || tenantID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		var tenant models.Tenant
		if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
			return apperr.NotFound("Kiracı bulunamadı")
		}

		var activeCount int64
		if err := database.DB.Model(&models.Lease{}).
			Where("tenant_id = ? AND status = ?", tenant.ID, models.LeaseActive).
			Count(&activeCount).Error; err != nil {
			return apperr.Internal("Sözleşme kontrolü yapılamadı", err)
		}
		if activeCount > 0 {
			return apperr.Conflict("Aktif sözleşmesi olan kiracı silinemez")
		}

		if err := database.DB.Delete(&tenant).Error; err != nil {
			return apperr.Internal("Kiracı silinemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "tenant",
			EntityID:    tenantID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Kiracı silindi: %d", tenantID),
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
