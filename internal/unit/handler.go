package unit

import (
	"fmt"
	"strings"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"github.com/gofiber/fiber/v2"
)

type CreateUnitRequest struct {
	PropertyID  uint    `json:"property_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Floor       *int    `json:"floor"`
	Area        float64 `json:"area"`
	Rooms       *int    `json:"rooms"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	TargetRent  float64 `json:"target_rent"`
}

type UpdateUnitRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Floor       *int     `json:"floor"`
	Area        *float64 `json:"area"`
	Rooms       *int     `json:"rooms"`
	Type        *string  `json:"type"`
	Status      *string  `json:"status"`
	TargetRent  *float64 `json:"target_rent"`
}

type UnitResponse struct {
	ID           uint    `json:"id"`
	PropertyID   uint    `json:"property_id"`
	PropertyName string  `json:"property_name"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Floor        *int    `json:"floor"`
	Area         float64 `json:"area"`
	Rooms        *int    `json:"rooms"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	TargetRent   float64 `json:"target_rent"`
	CreatedAt    string  `json:"created_at"`
}

func validUnitType(t models.UnitType) bool {
	switch t {
	case models.UnitApartment, models.UnitCommercial, models.UnitGarage,
		models.UnitParking, models.UnitCellar, models.UnitOther:
		return true
	}
	return false
}

func validUnitStatus(s models.UnitStatus) bool {
	switch s {
	case models.UnitOccupied, models.UnitVacant,
		models.UnitUnderRenovation, models.UnitOwnerUse:
		return true
	}
	return false
}

func toUnitResponse(u *models.Unit) UnitResponse {
	return UnitResponse{
		ID:           u.ID,
		PropertyID:   u.PropertyID,
		PropertyName: u.Property.Name,
		Name:         u.Name,
		Description:  u.Description,
		Floor:        u.Floor,
		Area:         u.Area,
		Rooms:        u.Rooms,
		Type:         string(u.Type),
		Status:       string(u.Status),
		TargetRent:   u.TargetRent,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/units[?status=vacant]
func ListUnitsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		unitIDs, err := ownership.OwnedUnitIDs(database.DB, callerID)
		if err != nil {
			return err
		}
		if len(unitIDs) == 0 {
			return c.JSON([]UnitResponse{})
		}

		dbq := database.DB.Preload("Property").
			Where("id IN ?", unitIDs).
			Order("property_id ASC, name ASC")

		if st := c.Query("status"); st != "" {
			if !validUnitStatus(models.UnitStatus(st)) {
				return apperr.InvalidInput("status geçersiz")
			}
			dbq = dbq.Where("status = ?", st)
		}

		var units []models.Unit
		if err := dbq.Find(&units).Error; err != nil {
			return apperr.Internal("Birimler listelenemedi", err)
		}

		res := make([]UnitResponse, 0, len(units))
		for i := range units {
			res = append(res, toUnitResponse(&units[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/units/property/:propertyId
func ListUnitsByPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var propertyID uint
		if _, err := fmt.Sscan(c.Params("propertyId"), &propertyID); err != nil || propertyID == 0 {
			return apperr.InvalidInput("propertyId geçersiz")
		}

		if _, err := ownership.PropertyAccess(database.DB, callerID, propertyID, false); err != nil {
			return err
		}

		var units []models.Unit
		if err := database.DB.Preload("Property").
			Where("property_id = ?", propertyID).
			Order("name ASC").
			Find(&units).Error; err != nil {
			return apperr.Internal("Birimler listelenemedi", err)
		}

		res := make([]UnitResponse, 0, len(units))
		for i := range units {
			res = append(res, toUnitResponse(&units[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/units/:id
func GetUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var unitID uint
		if _, err := fmt.Sscan(c.Params("id"), &unitID); err != nil || unitID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		if _, err := ownership.UnitAccess(database.DB, callerID, unitID, false); err != nil {
			return err
		}

		var unit models.Unit
		if err := database.DB.Preload("Property").First(&unit, "id = ?", unitID).Error; err != nil {
			return apperr.NotFound("Birim bulunamadı")
		}

		return c.JSON(toUnitResponse(&unit))
	}
}

// POST /api/units
func CreateUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var body CreateUnitRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.PropertyID == 0 || body.Name == "" {
			return apperr.InvalidInput("property_id ve name zorunlu")
		}
		if body.Area < 0 || body.TargetRent < 0 {
			return apperr.InvalidInput("area ve target_rent negatif olamaz")
		}

		if _, err := ownership.PropertyAccess(database.DB, callerID, body.PropertyID, true); err != nil {
			return err
		}

		unitType := models.UnitApartment
		if body.Type != "" {
			unitType = models.UnitType(body.Type)
			if !validUnitType(unitType) {
				return apperr.InvalidInput("Geçersiz birim tipi")
			}
		}
		status := models.UnitVacant
		if body.Status != "" {
			status = models.UnitStatus(body.Status)
			if !validUnitStatus(status) {
				return apperr.InvalidInput("Geçersiz birim statüsü")
			}
		}

		unit := models.Unit{
			PropertyID:  body.PropertyID,
			Name:        body.Name,
			Description: body.Description,
			Floor:       body.Floor,
			Area:        body.Area,
			Rooms:       body.Rooms,
			Type:        unitType,
			Status:      status,
			TargetRent:  body.TargetRent,
		}
		if err := database.DB.Create(&unit).Error; err != nil {
			return apperr.Internal("Birim oluşturulamadı", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "unit",
			EntityID:    unit.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Birim eklendi: %s (property %d)", unit.Name, unit.PropertyID),
		})

		var full models.Unit
		if err := database.DB.Preload("Property").First(&full, "id = ?", unit.ID).Error; err != nil {
			return apperr.Internal("Birim yüklenemedi", err)
		}
		return c.Status(fiber.StatusCreated).JSON(toUnitResponse(&full))
	}
}

// PUT /api/units/:id
// Statü burada serbestçe değiştirilebilir (örn. tadilata alma); sözleşme
// kaynaklı occupied/vacant geçişlerini lease servisi yönetir.
func UpdateUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var unitID uint
		if _, err := fmt.Sscan(c.Params("id"), &unitID); err != nil || unitID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		unit, err := ownership.UnitAccess(database.DB, callerID, unitID, true)
		if err != nil {
			return err
		}

		var body UpdateUnitRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return apperr.InvalidInput("name boş olamaz")
			}
			unit.Name = name
		}
		if body.Description != nil {
			unit.Description = *body.Description
		}
		if body.Floor != nil {
			unit.Floor = body.Floor
		}
		if body.Area != nil {
			if *body.Area < 0 {
				return apperr.InvalidInput("area negatif olamaz")
			}
			unit.Area = *body.Area
		}
		if body.Rooms != nil {
			unit.Rooms = body.Rooms
		}
		if body.Type != nil {
			t := models.UnitType(*body.Type)
			if !validUnitType(t) {
				return apperr.InvalidInput("Geçersiz birim tipi")
			}
			unit.Type = t
		}
		if body.Status != nil {
			s := models.UnitStatus(*body.Status)
			if !validUnitStatus(s) {
				return apperr.InvalidInput("Geçersiz birim statüsü")
			}
			unit.Status = s
		}
		if body.TargetRent != nil {
			if *body.TargetRent < 0 {
				return apperr.InvalidInput("target_rent negatif olamaz")
			}
			unit.TargetRent = *body.TargetRent
		}

		if err := database.DB.Save(unit).Error; err != nil {
			return apperr.Internal("Birim güncellenemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "unit",
			EntityID:    unit.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Birim güncellendi: %d", unit.ID),
		})

		var full models.Unit
		if err := database.DB.Preload("Property").First(&full, "id = ?", unit.ID).Error; err != nil {
			return apperr.Internal("Birim yüklenemedi", err)
		}
		return c.JSON(toUnitResponse(&full))
	}
}

// DELETE /api/units/:id
// Üzerinde aktif sözleşme olan birim silinemez
func DeleteUnitHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var unitID uint
		if _, err := fmt.Sscan(c.Params("id"), &unitID); err != nil || unitID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		unit, err := ownership.UnitAccess(database.DB, callerID, unitID, true)
		if err != nil {
			return err
		}

		var activeCount int64
		if err := database.DB.Model(&models.Lease{}).
			Where("unit_id = ? AND status = ?", unit.ID, models.LeaseActive).
			Count(&activeCount).Error; err != nil {
			return apperr.Internal("Sözleşme kontrolü yapılamadı", err)
		}
		if activeCount > 0 {
			return apperr.Conflict("Aktif sözleşmesi olan birim silinemez")
		}

		if err := database.DB.Delete(unit).Error; err != nil {
			return apperr.Internal("Birim silinemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "unit",
			EntityID:    unitID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Birim silindi: %d", unitID),
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
