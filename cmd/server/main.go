package main

import (
	"errors"
	"log"
	"strings"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/config"
	"immobilien-backend/internal/dashboard"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/document"
	"immobilien-backend/internal/expense"
	"immobilien-backend/internal/lease"
	"immobilien-backend/internal/meter"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/payment"
	"immobilien-backend/internal/property"
	"immobilien-backend/internal/tenant"
	"immobilien-backend/internal/unit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Servis katmanının tipli hataları tek yerde HTTP'ye çevrilir
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				if appErr.Kind == apperr.KindInternal {
					log.Println("Internal error:", appErr.Message, appErr.Err)
				}
				fe := apperr.ToFiber(appErr)
				return c.Status(fe.Code).JSON(fiber.Map{
					"error": fe.Message,
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Mutasyonlar readonly role kapalı
	writer := protected.Group("", auth.RequireRole(models.RoleAdmin, models.RoleLandlord))

	// Gayrimenkuller
	protected.Get("/properties", property.ListPropertiesHandler())
	protected.Get("/properties/:id", property.GetPropertyHandler())
	writer.Post("/properties", property.CreatePropertyHandler())
	writer.Put("/properties/:id", property.UpdatePropertyHandler())
	writer.Delete("/properties/:id", property.DeletePropertyHandler())

	// Birimler
	protected.Get("/units", unit.ListUnitsHandler())
	protected.Get("/units/property/:propertyId", unit.ListUnitsByPropertyHandler())
	protected.Get("/units/:id", unit.GetUnitHandler())
	writer.Post("/units", unit.CreateUnitHandler())
	writer.Put("/units/:id", unit.UpdateUnitHandler())
	writer.Delete("/units/:id", unit.DeleteUnitHandler())

	// Kiracılar
	protected.Get("/tenants", tenant.ListTenantsHandler())
	protected.Get("/tenants/:id", tenant.GetTenantHandler())
	writer.Post("/tenants", tenant.CreateTenantHandler())
	writer.Put("/tenants/:id", tenant.UpdateTenantHandler())
	writer.Delete("/tenants/:id", tenant.DeleteTenantHandler())

	// Sözleşmeler
	protected.Get("/leases", lease.ListLeasesHandler())
	protected.Get("/leases/active", lease.ListActiveLeasesHandler())
	protected.Get("/leases/expiring", lease.ListExpiringLeasesHandler())
	protected.Get("/leases/unit/:unitId", lease.ListLeasesByUnitHandler())
	protected.Get("/leases/tenant/:tenantId", lease.ListLeasesByTenantHandler())
	protected.Get("/leases/:id", lease.GetLeaseHandler())
	writer.Post("/leases", lease.CreateLeaseHandler())
	writer.Put("/leases/:id", lease.UpdateLeaseHandler())
	writer.Delete("/leases/:id", lease.DeleteLeaseHandler())

	// Ödemeler
	protected.Get("/payments", payment.ListPaymentsHandler())
	protected.Get("/payments/overdue", payment.ListOverduePaymentsHandler())
	protected.Get("/payments/lease/:leaseId", payment.ListPaymentsByLeaseHandler())
	protected.Get("/payments/:id", payment.GetPaymentHandler())
	writer.Post("/payments", payment.CreatePaymentHandler())
	writer.Put("/payments/:id", payment.UpdatePaymentHandler())
	writer.Delete("/payments/:id", payment.DeletePaymentHandler())

	// Giderler
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler())
	protected.Get("/expenses/:id", expense.GetExpenseHandler())
	writer.Post("/expenses", expense.CreateExpenseHandler())
	writer.Put("/expenses/:id", expense.UpdateExpenseHandler())
	writer.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Sayaç okumaları
	protected.Get("/meter-readings/unit/:unitId", meter.ListReadingsByUnitHandler())
	protected.Get("/meter-readings/:id", meter.GetReadingHandler())
	writer.Post("/meter-readings", meter.CreateReadingHandler())
	writer.Post("/meter-readings/import", meter.ImportReadingsHandler())
	writer.Put("/meter-readings/:id", meter.UpdateReadingHandler())
	writer.Delete("/meter-readings/:id", meter.DeleteReadingHandler())

	// Belgeler
	protected.Get("/documents", document.ListDocumentsHandler())
	protected.Get("/documents/:id", document.GetDocumentHandler())
	protected.Get("/documents/:id/download", document.DownloadDocumentHandler())
	writer.Post("/documents", document.UploadDocumentHandler(cfg.DocumentPath))
	writer.Delete("/documents/:id", document.DeleteDocumentHandler())

	// Dashboard
	protected.Get("/dashboard", dashboard.SummaryHandler(cfg.LeaseExpiryHorizon))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
