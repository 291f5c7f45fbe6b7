package audit

import (
	"fmt"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
	EntityType  string `json:"entity_type"`
	EntityID    uint   `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	BeforeData  string `json:"before_data"`
	AfterData   string `json:"after_data"`
	CreatedAt   string `json:"created_at"`
}

// GET /api/audit-logs?entity_type=lease&limit=50
// Kullanıcı sadece kendi işlemlerinin izini görür
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		limit := 50
		if limitStr := c.Query("limit"); limitStr != "" {
			if _, err := fmt.Sscan(limitStr, &limit); err != nil || limit <= 0 || limit > 500 {
				return apperr.InvalidInput("limit geçersiz")
			}
		}

		dbq := database.DB.
			Where("user_id = ?", callerID).
			Order("created_at DESC").
			Limit(limit)

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := dbq.Find(&logs).Error; err != nil {
			return apperr.Internal("Denetim kayıtları listelenemedi", err)
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			res = append(res, AuditLogResponse{
				ID:          l.ID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      string(l.Action),
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
