package meter

import (
	"testing"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, uint, uint) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{},
		&models.MeterReading{}, &models.AuditLog{},
	))

	owner := models.User{
		Email: "vermieter@test.de", PasswordHash: "x",
		FirstName: "Max", LastName: "Mustermann",
		Role: models.RoleLandlord, IsActive: true,
	}
	require.NoError(t, db.Create(&owner).Error)

	prop := models.Property{
		OwnerID: owner.ID, Name: "Hauptstraße 1",
		Street: "Hauptstraße", HouseNumber: "1", ZipCode: "10115", City: "Berlin",
	}
	require.NoError(t, db.Create(&prop).Error)

	unit := models.Unit{
		PropertyID: prop.ID, Name: "Daire 1", Area: 65,
		Type: models.UnitApartment, Status: models.UnitVacant,
	}
	require.NoError(t, db.Create(&unit).Error)

	return db, owner.ID, unit.ID
}

func date(day int) time.Time {
	return time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
}

func TestRecordReadingChain(t *testing.T) {
	db, ownerID, unitID := setupTestDB(t)

	first, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 100, ReadingDate: date(1),
	})
	require.NoError(t, err)
	assert.Nil(t, first.PreviousValue)
	assert.Nil(t, models.Consumption(first))

	second, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 150, ReadingDate: date(10),
	})
	require.NoError(t, err)
	require.NotNil(t, second.PreviousValue)
	assert.Equal(t, 100.0, *second.PreviousValue)
	require.NotNil(t, models.Consumption(second))
	assert.Equal(t, 50.0, *models.Consumption(second))

	_, err = Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 90, ReadingDate: date(20),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestRecordReadingPerTypeIndependent(t *testing.T) {
	db, ownerID, unitID := setupTestDB(t)

	_, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 500, ReadingDate: date(1),
	})
	require.NoError(t, err)

	// Başka sayaç tipi kendi zincirini tutar, su okumasıyla karşılaştırılmaz
	gas, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterGas,
		Value: 10, ReadingDate: date(2),
	})
	require.NoError(t, err)
	assert.Nil(t, gas.PreviousValue)
}

func TestRecordReadingInvalidType(t *testing.T) {
	db, ownerID, unitID := setupTestDB(t)

	_, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: "plutonium",
		Value: 1, ReadingDate: date(1),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestUpdateReadingRevalidatesNeighbours(t *testing.T) {
	db, ownerID, unitID := setupTestDB(t)

	_, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 100, ReadingDate: date(1),
	})
	require.NoError(t, err)

	mid, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 150, ReadingDate: date(10),
	})
	require.NoError(t, err)

	_, err = Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 200, ReadingDate: date(20),
	})
	require.NoError(t, err)

	// Önceki okumanın altına düşemez
	low := 90.0
	_, err = Update(db, ownerID, mid.ID, UpdateInput{Value: &low})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	// Sonraki okumanın üstüne çıkamaz
	high := 250.0
	_, err = Update(db, ownerID, mid.ID, UpdateInput{Value: &high})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	// Aradaki değer geçerli
	ok := 170.0
	updated, err := Update(db, ownerID, mid.ID, UpdateInput{Value: &ok})
	require.NoError(t, err)
	assert.Equal(t, 170.0, updated.Value)
}

func TestDeleteReading(t *testing.T) {
	db, ownerID, unitID := setupTestDB(t)

	r, err := Record(db, ownerID, RecordInput{
		UnitID: unitID, MeterType: models.MeterWater,
		Value: 100, ReadingDate: date(1),
	})
	require.NoError(t, err)

	require.NoError(t, Delete(db, ownerID, r.ID))

	var count int64
	require.NoError(t, db.Model(&models.MeterReading{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
