package expense

import (
	"fmt"
	"strings"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	PropertyID  *uint   `json:"property_id"`
	UnitID      *uint   `json:"unit_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // "2026-08-30"
	DueDate     *string `json:"due_date"`
	Category    string  `json:"category"`
	IsRecurring bool    `json:"is_recurring"`
	RecurringInterval *string `json:"recurring_interval"`
	IsAllocatable     bool    `json:"is_allocatable"`
	IsTaxDeductible   *bool   `json:"is_tax_deductible"`
	Vendor            string  `json:"vendor"`
	InvoiceNumber     string  `json:"invoice_number"`
	Notes             string  `json:"notes"`
}

type UpdateExpenseRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	DueDate     *string  `json:"due_date"`
	Category    *string  `json:"category"`
	IsRecurring *bool    `json:"is_recurring"`
	RecurringInterval *string `json:"recurring_interval"`
	IsAllocatable     *bool   `json:"is_allocatable"`
	IsTaxDeductible   *bool   `json:"is_tax_deductible"`
	Vendor            *string `json:"vendor"`
	InvoiceNumber     *string `json:"invoice_number"`
	Notes             *string `json:"notes"`
}

type ExpenseResponse struct {
	ID           uint    `json:"id"`
	PropertyID   *uint   `json:"property_id"`
	PropertyName string  `json:"property_name,omitempty"`
	UnitID       *uint   `json:"unit_id"`
	UnitName     string  `json:"unit_name,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	DueDate      *string `json:"due_date"`
	Category     string  `json:"category"`
	IsRecurring  bool    `json:"is_recurring"`
	RecurringInterval *string `json:"recurring_interval"`
	IsAllocatable     bool    `json:"is_allocatable"`
	IsTaxDeductible   bool    `json:"is_tax_deductible"`
	Vendor            string  `json:"vendor"`
	InvoiceNumber     string  `json:"invoice_number"`
	Notes             string  `json:"notes"`
}

type MonthlyExpenseSummaryItem struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type MonthlyExpenseSummaryResponse struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	Items      []MonthlyExpenseSummaryItem `json:"items"`
	GrandTotal float64                     `json:"grand_total"`
}

func validCategory(cat models.ExpenseCategory) bool {
	switch cat {
	case models.ExpenseRepair, models.ExpenseMaintenance, models.ExpenseInsurance,
		models.ExpensePropertyTax, models.ExpenseManagement, models.ExpenseWater,
		models.ExpenseHeating, models.ExpenseElectricity, models.ExpenseGarbage,
		models.ExpenseChimneySweep, models.ExpenseGardening, models.ExpenseCleaning,
		models.ExpenseElevator, models.ExpenseBankFees, models.ExpenseInterest,
		models.ExpenseRenovation, models.ExpenseLegal, models.ExpenseOtherCategory:
		return true
	}
	return false
}

func validInterval(iv models.RecurringInterval) bool {
	switch iv {
	case models.IntervalMonthly, models.IntervalQuarterly,
		models.IntervalSemiannual, models.IntervalYearly:
		return true
	}
	return false
}

func toExpenseResponse(e *models.Expense) ExpenseResponse {
	res := ExpenseResponse{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		UnitID:      e.UnitID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format("2006-01-02"),
		Category:    string(e.Category),
		IsRecurring: e.IsRecurring,
		IsAllocatable:   e.IsAllocatable,
		IsTaxDeductible: e.IsTaxDeductible,
		Vendor:          e.Vendor,
		InvoiceNumber:   e.InvoiceNumber,
		Notes:           e.Notes,
	}
	if e.DueDate != nil {
		s := e.DueDate.Format("2006-01-02")
		res.DueDate = &s
	}
	if e.RecurringInterval != nil {
		s := string(*e.RecurringInterval)
		res.RecurringInterval = &s
	}
	if e.Property != nil {
		res.PropertyName = e.Property.Name
	}
	if e.Unit != nil {
		res.UnitName = e.Unit.Name
	}
	return res
}

// expenseAccess - Gideri yükler. Property bağlantılı gider sahiplik ister,
// bağlantısız (genel) gider tüm hesaplara açıktır.
func expenseAccess(callerID, expenseID uint, write bool) (*models.Expense, error) {
	var exp models.Expense
	if err := database.DB.Preload("Property").Preload("Unit").
		First(&exp, "id = ?", expenseID).Error; err != nil {
		return nil, apperr.NotFound("Gider bulunamadı")
	}
	if exp.PropertyID != nil {
		if _, err := ownership.PropertyAccess(database.DB, callerID, *exp.PropertyID, write); err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) && !write {
				return nil, apperr.NotFound("Gider bulunamadı")
			}
			return nil, err
		}
	}
	return &exp, nil
}

// GET /api/expenses?from=...&to=...&category=...&property_id=...
// Sahip olunan property'lere bağlı + bağlantısız giderler listelenir
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		propertyIDs, err := ownership.OwnedPropertyIDs(database.DB, callerID)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Expense{}).
			Preload("Property").Preload("Unit")
		if len(propertyIDs) == 0 {
			dbq = dbq.Where("property_id IS NULL")
		} else {
			dbq = dbq.Where("property_id IS NULL OR property_id IN ?", propertyIDs)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return apperr.InvalidInput("from geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return apperr.InvalidInput("to geçersiz")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if cat := c.Query("category"); cat != "" {
			if !validCategory(models.ExpenseCategory(cat)) {
				return apperr.InvalidInput("category geçersiz")
			}
			dbq = dbq.Where("category = ?", cat)
		}
		if pidStr := c.Query("property_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return apperr.InvalidInput("property_id geçersiz")
			}
			dbq = dbq.Where("property_id = ?", pid)
		}

		var rows []models.Expense
		if err := dbq.Order("date DESC, id DESC").Find(&rows).Error; err != nil {
			return apperr.Internal("Giderler listelenemedi", err)
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toExpenseResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/expenses/:id
func GetExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var expenseID uint
		if _, err := fmt.Sscan(c.Params("id"), &expenseID); err != nil || expenseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		exp, err := expenseAccess(callerID, expenseID, false)
		if err != nil {
			return err
		}
		return c.JSON(toExpenseResponse(exp))
	}
}

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			return apperr.InvalidInput("title zorunlu")
		}
		if body.Amount <= 0 {
			return apperr.InvalidInput("amount pozitif olmalı")
		}
		if !validCategory(models.ExpenseCategory(body.Category)) {
			return apperr.InvalidInput("Geçersiz gider kategorisi")
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return apperr.InvalidInput("Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		exp := models.Expense{
			Title:       body.Title,
			Description: body.Description,
			Amount:      body.Amount,
			Date:        d,
			Category:    models.ExpenseCategory(body.Category),
			IsRecurring: body.IsRecurring,
			IsAllocatable:   body.IsAllocatable,
			IsTaxDeductible: true,
			Vendor:          body.Vendor,
			InvoiceNumber:   body.InvoiceNumber,
			Notes:           body.Notes,
		}
		if body.IsTaxDeductible != nil {
			exp.IsTaxDeductible = *body.IsTaxDeductible
		}
		if body.DueDate != nil {
			dd, err := time.Parse("2006-01-02", *body.DueDate)
			if err != nil {
				return apperr.InvalidInput("due_date formatı 'YYYY-MM-DD' olmalı")
			}
			exp.DueDate = &dd
		}
		if body.RecurringInterval != nil {
			iv := models.RecurringInterval(*body.RecurringInterval)
			if !validInterval(iv) {
				return apperr.InvalidInput("recurring_interval geçersiz")
			}
			exp.RecurringInterval = &iv
		}

		// Bağlantı sahiplik ister; unit verilmişse property ondan türetilir
		if body.UnitID != nil {
			unit, err := ownership.UnitAccess(database.DB, callerID, *body.UnitID, true)
			if err != nil {
				return err
			}
			exp.UnitID = body.UnitID
			exp.PropertyID = &unit.PropertyID
		} else if body.PropertyID != nil {
			if _, err := ownership.PropertyAccess(database.DB, callerID, *body.PropertyID, true); err != nil {
				return err
			}
			exp.PropertyID = body.PropertyID
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return apperr.Internal("Gider kaydedilemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gider eklendi: %s - %.2f EUR", exp.Title, exp.Amount),
		})

		var full models.Expense
		if err := database.DB.Preload("Property").Preload("Unit").
			First(&full, "id = ?", exp.ID).Error; err != nil {
			return apperr.Internal("Gider yüklenemedi", err)
		}
		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(&full))
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var expenseID uint
		if _, err := fmt.Sscan(c.Params("id"), &expenseID); err != nil || expenseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		exp, err := expenseAccess(callerID, expenseID, true)
		if err != nil {
			return err
		}

		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				return apperr.InvalidInput("title boş olamaz")
			}
			exp.Title = title
		}
		if body.Description != nil {
			exp.Description = *body.Description
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return apperr.InvalidInput("amount pozitif olmalı")
			}
			exp.Amount = *body.Amount
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return apperr.InvalidInput("Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			exp.Date = d
		}
		if body.DueDate != nil {
			dd, err := time.Parse("2006-01-02", *body.DueDate)
			if err != nil {
				return apperr.InvalidInput("due_date formatı 'YYYY-MM-DD' olmalı")
			}
			exp.DueDate = &dd
		}
		if body.Category != nil {
			if !validCategory(models.ExpenseCategory(*body.Category)) {
				return apperr.InvalidInput("Geçersiz gider kategorisi")
			}
			exp.Category = models.ExpenseCategory(*body.Category)
		}
		if body.IsRecurring != nil {
			exp.IsRecurring = *body.IsRecurring
		}
		if body.RecurringInterval != nil {
			iv := models.RecurringInterval(*body.RecurringInterval)
			if !validInterval(iv) {
				return apperr.InvalidInput("recurring_interval geçersiz")
			}
			exp.RecurringInterval = &iv
		}
		if body.IsAllocatable != nil {
			exp.IsAllocatable = *body.IsAllocatable
		}
		if body.IsTaxDeductible != nil {
			exp.IsTaxDeductible = *body.IsTaxDeductible
		}
		if body.Vendor != nil {
			exp.Vendor = *body.Vendor
		}
		if body.InvoiceNumber != nil {
			exp.InvoiceNumber = *body.InvoiceNumber
		}
		if body.Notes != nil {
			exp.Notes = *body.Notes
		}

		if err := database.DB.Save(exp).Error; err != nil {
			return apperr.Internal("Gider güncellenemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Gider güncellendi: %d", exp.ID),
		})

		return c.JSON(toExpenseResponse(exp))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var expenseID uint
		if _, err := fmt.Sscan(c.Params("id"), &expenseID); err != nil || expenseID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		exp, err := expenseAccess(callerID, expenseID, true)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(exp).Error; err != nil {
			return apperr.Internal("Gider silinemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "expense",
			EntityID:    expenseID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Gider silindi: %d", expenseID),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/expenses/summary/monthly?year=2026&month=8
// Kategori bazlı aylık toplam
func MonthlyExpenseSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var year, month int
		if _, err := fmt.Sscan(c.Query("year"), &year); err != nil || year < 2000 {
			return apperr.InvalidInput("year geçersiz")
		}
		if _, err := fmt.Sscan(c.Query("month"), &month); err != nil || month < 1 || month > 12 {
			return apperr.InvalidInput("month geçersiz")
		}

		propertyIDs, err := ownership.OwnedPropertyIDs(database.DB, callerID)
		if err != nil {
			return err
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		nextMonth := firstDay.AddDate(0, 1, 0)

		type row struct {
			Category string  `gorm:"column:category"`
			Total    float64 `gorm:"column:total"`
		}
		var rows []row

		dbq := database.DB.Model(&models.Expense{}).
			Select("category, SUM(amount) as total").
			Where("date >= ? AND date < ?", firstDay, nextMonth)
		if len(propertyIDs) == 0 {
			dbq = dbq.Where("property_id IS NULL")
		} else {
			dbq = dbq.Where("property_id IS NULL OR property_id IN ?", propertyIDs)
		}
		if err := dbq.Group("category").Order("total DESC").Scan(&rows).Error; err != nil {
			return apperr.Internal("Özet hesaplanamadı", err)
		}

		resp := MonthlyExpenseSummaryResponse{
			Year:  year,
			Month: month,
			Items: make([]MonthlyExpenseSummaryItem, 0, len(rows)),
		}
		for _, r := range rows {
			resp.Items = append(resp.Items, MonthlyExpenseSummaryItem{
				Category: r.Category,
				Total:    r.Total,
			})
			resp.GrandTotal += r.Total
		}

		return c.JSON(resp)
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
