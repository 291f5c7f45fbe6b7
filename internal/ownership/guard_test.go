package ownership

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

type world struct {
	db       *gorm.DB
	ownerA   models.User
	ownerB   models.User
	property models.Property
	unit     models.Unit
	lease    models.Lease
	payment  models.Payment
	reading  models.MeterReading
}

// buildWorld - A'ya ait tam zincir: property -> unit -> lease -> payment/reading.
// B'nin hiçbir şeyi yok.
func buildWorld(t *testing.T) world {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{},
		&models.Lease{}, &models.Payment{}, &models.MeterReading{},
	))

	w := world{db: db}

	w.ownerA = models.User{Email: "a@test.de", PasswordHash: "x", FirstName: "A", LastName: "A", Role: models.RoleLandlord, IsActive: true}
	w.ownerB = models.User{Email: "b@test.de", PasswordHash: "x", FirstName: "B", LastName: "B", Role: models.RoleLandlord, IsActive: true}
	require.NoError(t, db.Create(&w.ownerA).Error)
	require.NoError(t, db.Create(&w.ownerB).Error)

	w.property = models.Property{OwnerID: w.ownerA.ID, Name: "Haus A", Street: "Weg", HouseNumber: "1", ZipCode: "10115", City: "Berlin"}
	require.NoError(t, db.Create(&w.property).Error)

	w.unit = models.Unit{PropertyID: w.property.ID, Name: "Daire 1", Area: 60, Status: models.UnitOccupied, Type: models.UnitApartment}
	require.NoError(t, db.Create(&w.unit).Error)

	tenant := models.Tenant{FirstName: "Hans", LastName: "Meier", Email: "hans@test.de"}
	require.NoError(t, db.Create(&tenant).Error)

	w.lease = models.Lease{
		TenantID: tenant.ID, UnitID: w.unit.ID,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ColdRent:  1000, DepositAmount: 3000, DepositStatus: models.DepositPending,
		NoticePeriodMonths: 3, PaymentDayOfMonth: 1, Status: models.LeaseActive,
	}
	require.NoError(t, db.Create(&w.lease).Error)

	w.payment = models.Payment{
		LeaseID: w.lease.ID, Amount: 1000,
		PaymentDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PaymentMonth: 8, PaymentYear: 2026,
		Type: models.PaymentRent, Method: models.MethodBankTransfer, Status: models.PaymentReceived,
	}
	require.NoError(t, db.Create(&w.payment).Error)

	w.reading = models.MeterReading{
		UnitID: w.unit.ID, MeterType: models.MeterWater, Value: 100,
		ReadingDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&w.reading).Error)

	return w
}

func TestOwnerResolvesFullChain(t *testing.T) {
	w := buildWorld(t)

	_, err := PropertyAccess(w.db, w.ownerA.ID, w.property.ID, false)
	assert.NoError(t, err)
	_, err = UnitAccess(w.db, w.ownerA.ID, w.unit.ID, true)
	assert.NoError(t, err)
	_, err = LeaseAccess(w.db, w.ownerA.ID, w.lease.ID, true)
	assert.NoError(t, err)
	_, err = PaymentAccess(w.db, w.ownerA.ID, w.payment.ID, false)
	assert.NoError(t, err)
	_, err = ReadingAccess(w.db, w.ownerA.ID, w.reading.ID, false)
	assert.NoError(t, err)
}

func TestNonOwnerReadsMaskedAsNotFound(t *testing.T) {
	w := buildWorld(t)

	// Varlık sızdırılmaz: sahip olmayan için okuma NotFound döner
	_, err := PropertyAccess(w.db, w.ownerB.ID, w.property.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = UnitAccess(w.db, w.ownerB.ID, w.unit.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = LeaseAccess(w.db, w.ownerB.ID, w.lease.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = PaymentAccess(w.db, w.ownerB.ID, w.payment.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = ReadingAccess(w.db, w.ownerB.ID, w.reading.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestNonOwnerWritesForbidden(t *testing.T) {
	w := buildWorld(t)

	_, err := PropertyAccess(w.db, w.ownerB.ID, w.property.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	_, err = UnitAccess(w.db, w.ownerB.ID, w.unit.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	_, err = LeaseAccess(w.db, w.ownerB.ID, w.lease.ID, true)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestMissingEntityAlwaysNotFound(t *testing.T) {
	w := buildWorld(t)

	_, err := PropertyAccess(w.db, w.ownerA.ID, 9999, true)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	_, err = LeaseAccess(w.db, w.ownerA.ID, 9999, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestOwnedIDSets(t *testing.T) {
	w := buildWorld(t)

	propIDs, err := OwnedPropertyIDs(w.db, w.ownerA.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{w.property.ID}, propIDs)

	unitIDs, err := OwnedUnitIDs(w.db, w.ownerA.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{w.unit.ID}, unitIDs)

	empty, err := OwnedUnitIDs(w.db, w.ownerB.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSoftDeletedPropertyBreaksChain(t *testing.T) {
	w := buildWorld(t)

	require.NoError(t, w.db.Delete(&w.property).Error)

	unitIDs, err := OwnedUnitIDs(w.db, w.ownerA.ID)
	require.NoError(t, err)
	assert.Empty(t, unitIDs)

	_, err = UnitAccess(w.db, w.ownerA.ID, w.unit.ID, false)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
