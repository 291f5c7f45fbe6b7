package dashboard

import (
	"fmt"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"

	"github.com/gofiber/fiber/v2"
)

// GET /api/dashboard[?horizon_days=90]
func SummaryHandler(defaultHorizonDays int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		horizonDays := defaultHorizonDays
		if hd := c.Query("horizon_days"); hd != "" {
			if _, err := fmt.Sscan(hd, &horizonDays); err != nil || horizonDays <= 0 {
				return apperr.InvalidInput("horizon_days geçersiz")
			}
		}

		summary, err := Build(database.DB, callerID, time.Now(), horizonDays)
		if err != nil {
			return err
		}

		return c.JSON(summary)
	}
}
