package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DocumentResponse struct {
	ID               uint   `json:"id"`
	OriginalFileName string `json:"original_file_name"`
	ContentType      string `json:"content_type"`
	FileSize         int64  `json:"file_size"`
	Category         string `json:"category"`
	Description      string `json:"description"`
	PropertyID       *uint  `json:"property_id"`
	UnitID           *uint  `json:"unit_id"`
	TenantID         *uint  `json:"tenant_id"`
	LeaseID          *uint  `json:"lease_id"`
	ExpenseID        *uint  `json:"expense_id"`
	UploadedBy       string `json:"uploaded_by"`
	CreatedAt        string `json:"created_at"`
}

func validDocCategory(cat models.DocumentCategory) bool {
	switch cat {
	case models.DocLeaseContract, models.DocHandoverProtocol, models.DocUtilityStatement,
		models.DocInvoice, models.DocInsurancePolicy, models.DocLandRegister,
		models.DocEnergyCertificate, models.DocCorrespondence, models.DocPhoto,
		models.DocOther:
		return true
	}
	return false
}

func toDocumentResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID,
		OriginalFileName: d.OriginalFileName,
		ContentType:      d.ContentType,
		FileSize:         d.FileSize,
		Category:         string(d.Category),
		Description:      d.Description,
		PropertyID:       d.PropertyID,
		UnitID:           d.UnitID,
		TenantID:         d.TenantID,
		LeaseID:          d.LeaseID,
		ExpenseID:        d.ExpenseID,
		UploadedBy:       d.UploadedBy.FullName(),
		CreatedAt:        d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// documentAccess - Belgeyi yükler ve erişimi doğrular. Property, birim veya
// sözleşme bağlantılı belgeler sahiplik zincirinden geçer; bağlantısız
// belgeler sadece yükleyen kullanıcıya açıktır.
func documentAccess(callerID, documentID uint, write bool) (*models.Document, error) {
	var doc models.Document
	if err := database.DB.Preload("UploadedBy").
		First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, apperr.NotFound("Belge bulunamadı")
	}

	mask := func(err error) error {
		if apperr.IsKind(err, apperr.KindNotFound) && !write {
			return apperr.NotFound("Belge bulunamadı")
		}
		return err
	}

	switch {
	case doc.UnitID != nil:
		if _, err := ownership.UnitAccess(database.DB, callerID, *doc.UnitID, write); err != nil {
			return nil, mask(err)
		}
	case doc.PropertyID != nil:
		if _, err := ownership.PropertyAccess(database.DB, callerID, *doc.PropertyID, write); err != nil {
			return nil, mask(err)
		}
	case doc.LeaseID != nil:
		if _, err := ownership.LeaseAccess(database.DB, callerID, *doc.LeaseID, write); err != nil {
			return nil, mask(err)
		}
	default:
		if doc.UploadedByID != callerID {
			if write {
				return nil, apperr.Forbidden("Bu kayıt üzerinde yetkiniz yok")
			}
			return nil, apperr.NotFound("Belge bulunamadı")
		}
	}

	return &doc, nil
}

// GET /api/documents[?category=invoice&property_id=1]
// Yükleyenin kendi belgeleri + sahip olunan entity'lere bağlı belgeler
func ListDocumentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		propertyIDs, err := ownership.OwnedPropertyIDs(database.DB, callerID)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("UploadedBy")
		if len(propertyIDs) == 0 {
			dbq = dbq.Where("uploaded_by_id = ?", callerID)
		} else {
			dbq = dbq.Where("uploaded_by_id = ? OR property_id IN ?", callerID, propertyIDs)
		}

		if cat := c.Query("category"); cat != "" {
			if !validDocCategory(models.DocumentCategory(cat)) {
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

		var docs []models.Document
		if err := dbq.Order("created_at DESC").Find(&docs).Error; err != nil {
			return apperr.Internal("Belgeler listelenemedi", err)
		}

		res := make([]DocumentResponse, 0, len(docs))
		for i := range docs {
			res = append(res, toDocumentResponse(&docs[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/documents
// Multipart: file + category/description + opsiyonel entity bağlantıları.
// Dosya üretilmiş bir isimle documentPath altına kaydedilir, orijinal isim
// sadece veritabanında tutulur.
func UploadDocumentHandler(documentPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.InvalidInput("Dosya yüklenemedi: " + err.Error())
		}

		category := models.DocOther
		if cat := c.FormValue("category"); cat != "" {
			category = models.DocumentCategory(cat)
			if !validDocCategory(category) {
				return apperr.InvalidInput("Geçersiz belge kategorisi")
			}
		}

		doc := models.Document{
			OriginalFileName: fileHeader.Filename,
			ContentType:      fileHeader.Header.Get("Content-Type"),
			FileSize:         fileHeader.Size,
			Category:         category,
			Description:      c.FormValue("description"),
			UploadedByID:     callerID,
		}

		parseRef := func(field string) (*uint, error) {
			v := c.FormValue(field)
			if v == "" {
				return nil, nil
			}
			var id uint
			if _, err := fmt.Sscan(v, &id); err != nil || id == 0 {
				return nil, apperr.InvalidInput(field + " geçersiz")
			}
			return &id, nil
		}

		if doc.PropertyID, err = parseRef("property_id"); err != nil {
			return err
		}
		if doc.UnitID, err = parseRef("unit_id"); err != nil {
			return err
		}
		if doc.TenantID, err = parseRef("tenant_id"); err != nil {
			return err
		}
		if doc.LeaseID, err = parseRef("lease_id"); err != nil {
			return err
		}
		if doc.ExpenseID, err = parseRef("expense_id"); err != nil {
			return err
		}

		// Bağlantı verilen entity'lerde sahiplik aranır
		if doc.PropertyID != nil {
			if _, err := ownership.PropertyAccess(database.DB, callerID, *doc.PropertyID, true); err != nil {
				return err
			}
		}
		if doc.UnitID != nil {
			if _, err := ownership.UnitAccess(database.DB, callerID, *doc.UnitID, true); err != nil {
				return err
			}
		}
		if doc.LeaseID != nil {
			if _, err := ownership.LeaseAccess(database.DB, callerID, *doc.LeaseID, true); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(documentPath, 0o755); err != nil {
			return apperr.Internal("Belge klasörü oluşturulamadı", err)
		}

		doc.FileName = uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
		doc.StoragePath = filepath.Join(documentPath, doc.FileName)

		if err := c.SaveFile(fileHeader, doc.StoragePath); err != nil {
			return apperr.Internal("Dosya kaydedilemedi", err)
		}

		if err := database.DB.Create(&doc).Error; err != nil {
			// Kaydedilemeyen metadata diske yazılmış dosyayı bırakmasın
			_ = os.Remove(doc.StoragePath)
			return apperr.Internal("Belge kaydedilemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "document",
			EntityID:    doc.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Belge yüklendi: %s", doc.OriginalFileName),
		})

		var full models.Document
		if err := database.DB.Preload("UploadedBy").First(&full, "id = ?", doc.ID).Error; err != nil {
			return apperr.Internal("Belge yüklenemedi", err)
		}
		return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(&full))
	}
}

// GET /api/documents/:id
func GetDocumentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var documentID uint
		if _, err := fmt.Sscan(c.Params("id"), &documentID); err != nil || documentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		doc, err := documentAccess(callerID, documentID, false)
		if err != nil {
			return err
		}
		return c.JSON(toDocumentResponse(doc))
	}
}

// GET /api/documents/:id/download
func DownloadDocumentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var documentID uint
		if _, err := fmt.Sscan(c.Params("id"), &documentID); err != nil || documentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		doc, err := documentAccess(callerID, documentID, false)
		if err != nil {
			return err
		}

		if _, err := os.Stat(doc.StoragePath); err != nil {
			return apperr.NotFound("Belge dosyası bulunamadı")
		}

		return c.Download(doc.StoragePath, doc.OriginalFileName)
	}
}

// DELETE /api/documents/:id
// Kayıt soft-delete edilir, dosya diskte bırakılır
func DeleteDocumentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		var documentID uint
		if _, err := fmt.Sscan(c.Params("id"), &documentID); err != nil || documentID == 0 {
			return apperr.InvalidInput("id geçersiz")
		}

		doc, err := documentAccess(callerID, documentID, true)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(doc).Error; err != nil {
			return apperr.Internal("Belge silinemedi", err)
		}

		writeAudit(callerID, audit.LogOptions{
			EntityType:  "document",
			EntityID:    documentID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Belge silindi: %s", doc.OriginalFileName),
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
