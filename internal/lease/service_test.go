package lease

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

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{},
		&models.Lease{}, &models.Payment{}, &models.Expense{},
		&models.MeterReading{}, &models.Document{}, &models.AuditLog{},
	))
	return db
}

type fixture struct {
	owner    models.User
	stranger models.User
	property models.Property
	unit     models.Unit
	tenant   models.Tenant
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		owner: models.User{
			Email: "vermieter@test.de", PasswordHash: "x",
			FirstName: "Max", LastName: "Mustermann",
			Role: models.RoleLandlord, IsActive: true,
		},
		stranger: models.User{
			Email: "fremd@test.de", PasswordHash: "x",
			FirstName: "Erika", LastName: "Beispiel",
			Role: models.RoleLandlord, IsActive: true,
		},
	}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.stranger).Error)

	f.property = models.Property{
		OwnerID: f.owner.ID, Name: "Hauptstraße 1",
		Street: "Hauptstraße", HouseNumber: "1", ZipCode: "10115", City: "Berlin",
		Type: models.PropertyMultiFamily,
	}
	require.NoError(t, db.Create(&f.property).Error)

	f.unit = models.Unit{
		PropertyID: f.property.ID, Name: "Daire 1",
		Area: 65, Type: models.UnitApartment, Status: models.UnitVacant,
	}
	require.NoError(t, db.Create(&f.unit).Error)

	f.tenant = models.Tenant{
		FirstName: "Hans", LastName: "Meier", Email: "hans@test.de",
	}
	require.NoError(t, db.Create(&f.tenant).Error)

	return f
}

func createInput(f fixture) CreateInput {
	return CreateInput{
		TenantID:        f.tenant.ID,
		UnitID:          f.unit.ID,
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ColdRent:        1000,
		AdditionalCosts: 200,
		DepositAmount:   3000,
	}
}

func TestCreateLeaseOccupiesUnit(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	l, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	assert.Equal(t, models.LeaseActive, l.Status)
	assert.Equal(t, 1200.0, models.TotalRent(l))

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitOccupied, unit.Status)
}

func TestCreateLeaseSecondActiveConflicts(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	_, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	_, err = Create(db, f.owner.ID, createInput(f))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Reddedilen istek iz bırakmamalı
	var count int64
	require.NoError(t, db.Model(&models.Lease{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateLeaseMissingTenantRollsBack(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	in := createInput(f)
	in.TenantID = 9999
	_, err := Create(db, f.owner.ID, in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	var count int64
	require.NoError(t, db.Model(&models.Lease{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitVacant, unit.Status)
}

func TestCreateLeaseUnknownUnit(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	in := createInput(f)
	in.UnitID = 9999
	_, err := Create(db, f.owner.ID, in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateLeaseForeignUnitForbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	_, err := Create(db, f.stranger.ID, createInput(f))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestUpdateLeaseEndedVacatesUnit(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	l, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	ended := models.LeaseEnded
	_, err = Update(db, f.owner.ID, l.ID, UpdateInput{Status: &ended})
	require.NoError(t, err)

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitVacant, unit.Status)
}

func TestUpdateLeaseTerminatedKeepsUnitOccupied(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	l, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	terminated := models.LeaseTerminated
	_, err = Update(db, f.owner.ID, l.ID, UpdateInput{Status: &terminated})
	require.NoError(t, err)

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitOccupied, unit.Status)
}

func TestUpdateLeaseRentFieldsDontTouchUnit(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	l, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	// Birimi elle tadilata al, alan güncellemesi statüye dokunmasın
	require.NoError(t, db.Model(&models.Unit{}).
		Where("id = ?", f.unit.ID).
		Update("status", models.UnitUnderRenovation).Error)

	newRent := 1100.0
	updated, err := Update(db, f.owner.ID, l.ID, UpdateInput{ColdRent: &newRent})
	require.NoError(t, err)
	assert.Equal(t, 1100.0, updated.ColdRent)

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitUnderRenovation, unit.Status)
}

func TestUpdateLeaseReactivateConflictsWithOtherActive(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	first, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	ended := models.LeaseEnded
	_, err = Update(db, f.owner.ID, first.ID, UpdateInput{Status: &ended})
	require.NoError(t, err)

	second, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)
	_ = second

	active := models.LeaseActive
	_, err = Update(db, f.owner.ID, first.ID, UpdateInput{Status: &active})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestDeleteLeaseAlwaysVacates(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	l, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)

	// Statüden bağımsız boşaltma: birim tadilatta olsa bile
	require.NoError(t, db.Model(&models.Unit{}).
		Where("id = ?", f.unit.ID).
		Update("status", models.UnitUnderRenovation).Error)

	require.NoError(t, Delete(db, f.owner.ID, l.ID))

	var unit models.Unit
	require.NoError(t, db.First(&unit, f.unit.ID).Error)
	assert.Equal(t, models.UnitVacant, unit.Status)

	// Soft delete: kayıt normal sorguda görünmez, Unscoped ile durur
	var count int64
	require.NoError(t, db.Model(&models.Lease{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Unscoped().Model(&models.Lease{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRejectedCreateWritesAuditTrail(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	_, err := Create(db, f.owner.ID, createInput(f))
	require.NoError(t, err)
	_, err = Create(db, f.owner.ID, createInput(f))
	require.Error(t, err)

	var rejects int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditActionReject).
		Count(&rejects).Error)
	assert.Equal(t, int64(1), rejects)
}
