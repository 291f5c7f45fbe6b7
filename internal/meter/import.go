package meter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/auth"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Beklenen kolonlar: birim id | sayaç tipi | sayaç no | değer | tarih (YYYY-MM-DD)
// İlk satır başlık ise atlanır.

type importRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// POST /api/meter-readings/import
// XLSX dosyasından toplu sayaç okuması aktarır. Satırlar tek tek işlenir;
// hatalı satırlar diğerlerini engellemez, raporda döner.
func ImportReadingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CallerID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.InvalidInput("Dosya yüklenemedi: " + err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.InvalidInput("Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return apperr.Internal("Dosya açılamadı", err)
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return apperr.InvalidInput("Excel dosyası okunamadı: " + err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return apperr.InvalidInput("Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return apperr.InvalidInput("Sheet okunamadı: " + err.Error())
		}
		if len(rows) == 0 {
			return apperr.InvalidInput("Excel dosyası boş")
		}

		// İlk satır başlık mı?
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "UNIT") || strings.Contains(firstCell, "BİRİM") || strings.Contains(firstCell, "BIRIM") {
				startIndex = 1
			}
		}

		importedCount := 0
		rowErrors := make([]importRowError, 0)

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			rowNum := i + 1

			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			if len(row) < 5 {
				rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: "Eksik kolon (birim id, sayaç tipi, sayaç no, değer, tarih bekleniyor)"})
				continue
			}

			unitID, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 32)
			if err != nil || unitID == 0 {
				rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: "Birim id geçersiz"})
				continue
			}

			meterType := models.MeterType(strings.ToLower(strings.TrimSpace(row[1])))
			value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[3]), ",", "."), 64)
			if err != nil {
				rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: "Değer sayı değil"})
				continue
			}

			readingDate, err := time.Parse("2006-01-02", strings.TrimSpace(row[4]))
			if err != nil {
				rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: "Tarih formatı 'YYYY-MM-DD' olmalı"})
				continue
			}

			_, err = Record(database.DB, callerID, RecordInput{
				UnitID:      uint(unitID),
				MeterType:   meterType,
				MeterNumber: strings.TrimSpace(row[2]),
				Value:       value,
				ReadingDate: readingDate,
			})
			if err != nil {
				rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: err.Error()})
				continue
			}

			importedCount++
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"imported_count": importedCount,
			"errors":         rowErrors,
			"message":        fmt.Sprintf("%d okuma aktarıldı, %d satır hatalı.", importedCount, len(rowErrors)),
		})
	}
}
