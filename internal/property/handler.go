package property

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
	"gorm.io/gorm"
)

type CreatePropertyRequest struct {
	Name        string   `json:"name"`
	Street      string   `json:"street"`
	HouseNumber string   `json:"house_number"`
	ZipCode     string   `json:"zip_code"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	YearBuilt   *int     `json:"year_built"`
	TotalArea   *float64 `json:"total_area"`
	Floors      *int     `json:"floors"`
	Type        string   `json:"type"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date"`
}

type UpdatePropertyRequest struct {
	Name        *string  `json:"name"`
	Street      *string  `json:"street"`
	HouseNumber *string  `json:"house_number"`
	ZipCode     *string  `json:"zip_code"`
	City        *string  `json:"city"`
	Country     *string  `json:"country"`
	YearBuilt   *int     `json:"year_built"`
	TotalArea   *float64 `json:"total_area"`
	Floors      *int     `json:"floors"`
	Type        *string  `json:"type"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date"`
}

type PropertyResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Street      string   `json:"street"`
	HouseNumber string   `json:"house_number"`
	ZipCode     string   `json:"zip_code"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	FullAddress string   `json:"full_address"`
	YearBuilt   *int     `json:"year_built"`
	TotalArea   *float64 `json:"total_area"`
	Floors      *int     `json:"floors"`
	Type        string   `json:"type"`
	PurchasePrice *float64 `json:"purchase_price"`
	PurchaseDate  *string  `json:"purchase_date"`
	UnitCount   int    `json:"unit_count"`
	CreatedAt   string `json:"created_at"`
}

func validPropertyType(t models.PropertyType) bool {
	switch t {
	case models.PropertySingleFamily, models.PropertyMultiFamily,
		models.PropertyCommercial, models.PropertyMixedUse,
		models.PropertyGarage, models.PropertyLand:
		return true
	}
	return false
}

func toPropertyResponse(p *models.Property) PropertyResponse {
	res := PropertyResponse{
		ID:          p.ID,
		Name:        p.Name,
		Street:      p.Street,
		HouseNumber: p.HouseNumber,
		ZipCode:     p.ZipCode,
		City:        p.City,
		Country:     p.Country,
		FullAddress: p.FullAddress(),
		YearBuilt:   p.YearBuilt,
		TotalArea:   p.TotalArea,
		Floors:      p.Floors,
		Type:        string(p.Type),
		PurchasePrice: p.PurchasePrice,
		UnitCount:   len(p.Units),
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.PurchaseDate != nil {
		s := p.PurchaseDate.Format("2006-01-02")
		res.PurchaseDate = &s
	}
	return res
}

// GET /api/properties
// Sadece kendi property'leri döner
func ListPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var props []models.Property
		if err := database.DB.Preload("Units").
			Where("owner_id = ?", callerID).
			Order("name ASC").
			Find(&props).Error; err != nil {
			return apperr.Internal("Gayrimenkuller listelenemedi", err)
		}

		res := make([]PropertyResponse, 0, len(props))
		for i := range props {
			res = append(res, toPropertyResponse(&props[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/properties/:id
func GetPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var propertyID uint
		if _, err := fmt.Sscan(c.Params("id"), &propertyID); err != nil || propertyID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if _, err := ownership.PropertyAccess(database.DB, callerID, propertyID, false); err != nil {
			return err
		}

		var prop models.Property
		if err := database.DB.Preload("Units").First(&prop, "id = ?", propertyID).Error; err != nil {
			return apperr.NotFound("Gayrimenkul bulunamadı")
		}

		return c.JSON(toPropertyResponse(&prop))
	}
}

// POST /api/properties
func CreatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || strings.TrimSpace(body.Street) == "" ||
			strings.TrimSpace(body.City) == "" || strings.TrimSpace(body.ZipCode) == "" {
			return apperr.InvalidInput("name, street, zip_code ve city zorunlu")
		}

		propType := models.PropertyMultiFamily
		if body.Type != "" {
			propType = models.PropertyType(body.Type)
			if !validPropertyType(propType) {
				return apperr.InvalidInput("Geçersiz gayrimenkul tipi")
			}
		}

		prop := models.Property{
			OwnerID:     callerID,
			Name:        body.Name,
			Street:      strings.TrimSpace(body.Street),
			HouseNumber: strings.TrimSpace(body.HouseNumber),
			ZipCode:     strings.TrimSpace(body.ZipCode),
			City:        strings.TrimSpace(body.City),
			Country:     body.Country,
			YearBuilt:   body.YearBuilt,
			TotalArea:   body.TotalArea,
			Floors:      body.Floors,
			Type:        propType,
			PurchasePrice: body.PurchasePrice,
		}
		if prop.Country == "" {
			prop.Country = "Deutschland"
		}
		if body.PurchaseDate != nil {
			d, err := time.Parse("2006-01-02", *body.PurchaseDate)
			if err != nil {
				return apperr.InvalidInput("purchase_date formatı 'YYYY-MM-DD' olmalı")
			}
			prop.PurchaseDate = &d
		}

		if err := database.DB.Create(&prop).Error; err != nil {
			return apperr.Internal("Gayrimenkul oluşturulamadı", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "property",
			EntityID:    prop.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Gayrimenkul eklendi: %s (%s)", prop.Name, prop.FullAddress()),
		})

		return c.Status(fiber.StatusCreated).JSON(toPropertyResponse(&prop))
	}
}

// PUT /api/properties/:id
func UpdatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var propertyID uint
		if _, err := fmt.Sscan(c.Params("id"), &propertyID); err != nil || propertyID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		prop, err := ownership.PropertyAccess(database.DB, callerID, propertyID, true)
		if err != nil {
			return err
		}

		var body UpdatePropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return apperr.InvalidInput("name boş olamaz")
			}
			prop.Name = name
		}
		if body.Street != nil {
			prop.Street = strings.TrimSpace(*body.Street)
		}
		if body.HouseNumber != nil {
			prop.HouseNumber = strings.TrimSpace(*body.HouseNumber)
		}
		if body.ZipCode != nil {
			prop.ZipCode = strings.TrimSpace(*body.ZipCode)
		}
		if body.City != nil {
			prop.City = strings.TrimSpace(*body.City)
		}
		if body.Country != nil {
			prop.Country = *body.Country
		}
		if body.YearBuilt != nil {
			prop.YearBuilt = body.YearBuilt
		}
		if body.TotalArea != nil {
			prop.TotalArea = body.TotalArea
		}
		if body.Floors != nil {
			prop.Floors = body.Floors
		}
		if body.Type != nil {
			t := models.PropertyType(*body.Type)
			if !validPropertyType(t) {
				return apperr.InvalidInput("Geçersiz gayrimenkul tipi")
			}
			prop.Type = t
		}
		if body.PurchasePrice != nil {
			prop.PurchasePrice = body.PurchasePrice
		}
		if body.PurchaseDate != nil {
			d, err := time.Parse("2006-01-02", *body.PurchaseDate)
			if err != nil {
				return apperr.InvalidInput("purchase_date formatı 'YYYY-MM-DD' olmalı")
			}
			prop.PurchaseDate = &d
		}

		if err := database.DB.Save(prop).Error; err != nil {
			return apperr.Internal("Gayrimenkul güncellenemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "property",
			EntityID:    prop.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Gayrimenkul güncellendi: %d", prop.ID),
		})

		return c.JSON(toPropertyResponse(prop))
	}
}

// DELETE /api/properties/:id
// Property ile birlikte birimleri de soft-delete edilir
func DeletePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var propertyID uint
		if _, err := fmt.Sscan(c.Params("id"), &propertyID); err != nil || propertyID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		prop, err := ownership.PropertyAccess(database.DB, callerID, propertyID, true)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("property_id = ?", prop.ID).Delete(&models.Unit{}).Error; err != nil {
				return apperr.Internal("Birimler silinemedi", err)
			}
			if err := tx.Delete(prop).Error; err != nil {
				return apperr.Internal("Gayrimenkul silinemedi", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "property",
			EntityID:    propertyID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Gayrimenkul silindi: %d", propertyID),
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
