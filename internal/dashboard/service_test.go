package dashboard

import (
	"testing"
	"time"

	"immobilien-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Property{}, &models.Unit{}, &models.Tenant{},
		&models.Lease{}, &models.Payment{}, &models.Expense{},
		&models.MeterReading{}, &models.AuditLog{},
	))
	return db
}

func newUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{
		Email: email, PasswordHash: "x",
		FirstName: "Test", LastName: "User",
		Role: models.RoleLandlord, IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// seedOwnerWithPayment - Scenario: bir property, bir dolu birim, aktif
// sözleşme ve bu aya ait alınmış 1000'lik ödeme
func seedOwnerWithPayment(t *testing.T, db *gorm.DB, ownerID uint) models.Unit {
	t.Helper()

	prop := models.Property{
		OwnerID: ownerID, Name: "Hauptstraße 1",
		Street: "Hauptstraße", HouseNumber: "1", ZipCode: "10115", City: "Berlin",
	}
	require.NoError(t, db.Create(&prop).Error)

	unit := models.Unit{
		PropertyID: prop.ID, Name: "Daire 1", Area: 65,
		Type: models.UnitApartment, Status: models.UnitOccupied,
	}
	require.NoError(t, db.Create(&unit).Error)

	tenant := models.Tenant{FirstName: "Hans", LastName: "Meier", Email: "hans@test.de"}
	require.NoError(t, db.Create(&tenant).Error)

	l := models.Lease{
		TenantID: tenant.ID, UnitID: unit.ID,
		StartDate: testNow.AddDate(-1, 0, 0),
		ColdRent:  1000, AdditionalCosts: 0, DepositAmount: 3000,
		DepositStatus: models.DepositPending,
		NoticePeriodMonths: 3, PaymentDayOfMonth: 1,
		Status: models.LeaseActive,
	}
	require.NoError(t, db.Create(&l).Error)

	p := models.Payment{
		LeaseID: l.ID, Amount: 1000,
		PaymentDate: testNow.AddDate(0, 0, -3),
		DueDate:     testNow.AddDate(0, 0, -14),
		PaymentMonth: int(testNow.Month()), PaymentYear: testNow.Year(),
		Type: models.PaymentRent, Method: models.MethodBankTransfer,
		Status: models.PaymentReceived,
	}
	require.NoError(t, db.Create(&p).Error)

	return unit
}

func TestBuildOwnerWithIncome(t *testing.T) {
	db := setupTestDB(t)
	owner := newUser(t, db, "x@test.de")
	seedOwnerWithPayment(t, db, owner.ID)

	s, err := Build(db, owner.ID, testNow, 90)
	require.NoError(t, err)

	assert.Equal(t, 1, s.TotalProperties)
	assert.Equal(t, 1, s.TotalUnits)
	assert.Equal(t, 1, s.OccupiedUnits)
	assert.Equal(t, 0, s.VacantUnits)
	assert.Equal(t, 100.0, s.OccupancyRate)
	assert.Equal(t, 1000.0, s.MonthlyIncome)
	assert.Equal(t, 1000.0, s.MonthlyProfit)
	assert.Equal(t, 1000.0, s.YearlyIncome)
	require.Len(t, s.RecentPayments, 1)
	assert.Equal(t, "Hans Meier", s.RecentPayments[0].TenantName)
}

func TestBuildZeroPropertyOwner(t *testing.T) {
	db := setupTestDB(t)
	ownerX := newUser(t, db, "x@test.de")
	ownerY := newUser(t, db, "y@test.de")
	seedOwnerWithPayment(t, db, ownerX.ID)

	s, err := Build(db, ownerY.ID, testNow, 90)
	require.NoError(t, err)

	assert.Equal(t, 0, s.TotalProperties)
	assert.Equal(t, 0, s.TotalUnits)
	assert.Equal(t, 0.0, s.OccupancyRate)
	assert.Equal(t, 0.0, s.MonthlyIncome)
	assert.Equal(t, 0.0, s.YearlyIncome)
	assert.Equal(t, 0, s.OverduePayments)
	assert.Empty(t, s.RecentPayments)
	assert.Empty(t, s.ExpiringLeasesList)
}

func TestBuildOwnershipIsolation(t *testing.T) {
	db := setupTestDB(t)
	ownerX := newUser(t, db, "x@test.de")
	ownerY := newUser(t, db, "y@test.de")
	seedOwnerWithPayment(t, db, ownerX.ID)

	// Y'nin kendi boş birimi var ama X'in geliri ona sızmamalı
	propY := models.Property{
		OwnerID: ownerY.ID, Name: "Nebenstraße 2",
		Street: "Nebenstraße", HouseNumber: "2", ZipCode: "10117", City: "Berlin",
	}
	require.NoError(t, db.Create(&propY).Error)
	unitY := models.Unit{
		PropertyID: propY.ID, Name: "Daire 1", Area: 50,
		Type: models.UnitApartment, Status: models.UnitVacant,
	}
	require.NoError(t, db.Create(&unitY).Error)

	s, err := Build(db, ownerY.ID, testNow, 90)
	require.NoError(t, err)

	assert.Equal(t, 1, s.TotalUnits)
	assert.Equal(t, 0, s.OccupiedUnits)
	assert.Equal(t, 0.0, s.OccupancyRate)
	assert.Equal(t, 0.0, s.MonthlyIncome)
	assert.Empty(t, s.RecentPayments)
}

func TestBuildIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := newUser(t, db, "x@test.de")
	seedOwnerWithPayment(t, db, owner.ID)

	first, err := Build(db, owner.ID, testNow, 90)
	require.NoError(t, err)
	second, err := Build(db, owner.ID, testNow, 90)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildOverdueAndExpiring(t *testing.T) {
	db := setupTestDB(t)
	owner := newUser(t, db, "x@test.de")
	unit := seedOwnerWithPayment(t, db, owner.ID)

	// Sözleşmeye ufukta biten bir end_date ver
	end := testNow.AddDate(0, 0, 30)
	require.NoError(t, db.Model(&models.Lease{}).
		Where("unit_id = ?", unit.ID).
		Update("end_date", end).Error)

	var l models.Lease
	require.NoError(t, db.First(&l, "unit_id = ?", unit.ID).Error)

	// Vadesi geçmiş bekleyen ödeme
	overdue := models.Payment{
		LeaseID: l.ID, Amount: 1000,
		PaymentDate: testNow.AddDate(0, -1, 0),
		DueDate:     testNow.AddDate(0, 0, -10),
		PaymentMonth: int(testNow.AddDate(0, -1, 0).Month()), PaymentYear: testNow.Year(),
		Type: models.PaymentRent, Method: models.MethodBankTransfer,
		Status: models.PaymentPending,
	}
	require.NoError(t, db.Create(&overdue).Error)

	s, err := Build(db, owner.ID, testNow, 90)
	require.NoError(t, err)

	assert.Equal(t, 1, s.OverduePayments)
	assert.Equal(t, 1, s.ExpiringLeases)
	require.Len(t, s.ExpiringLeasesList, 1)
	assert.Equal(t, end.Format("2006-01-02"), s.ExpiringLeasesList[0].EndDate)

	// Ufuk dışında kalan sözleşme sayılmaz
	s, err = Build(db, owner.ID, testNow, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, s.ExpiringLeases)
}

func TestBuildMonthlyExpensesOwnedOrUnscoped(t *testing.T) {
	db := setupTestDB(t)
	ownerX := newUser(t, db, "x@test.de")
	ownerY := newUser(t, db, "y@test.de")
	seedOwnerWithPayment(t, db, ownerX.ID)

	var propX models.Property
	require.NoError(t, db.First(&propX, "owner_id = ?", ownerX.ID).Error)

	// X'in property'sine bağlı gider
	require.NoError(t, db.Create(&models.Expense{
		PropertyID: &propX.ID, Title: "Dachreparatur", Amount: 400,
		Date: testNow.AddDate(0, 0, -1), Category: models.ExpenseRepair,
		IsTaxDeductible: true,
	}).Error)
	// Bağlantısız genel gider, herkese sayılır
	require.NoError(t, db.Create(&models.Expense{
		Title: "Kontoführung", Amount: 50,
		Date: testNow.AddDate(0, 0, -2), Category: models.ExpenseBankFees,
		IsTaxDeductible: true,
	}).Error)

	sx, err := Build(db, ownerX.ID, testNow, 90)
	require.NoError(t, err)
	assert.Equal(t, 450.0, sx.MonthlyExpenses)
	assert.Equal(t, 550.0, sx.MonthlyProfit)
	assert.Equal(t, 450.0, sx.YearlyExpenses)

	// Y başkasının property giderini görmez, genel gideri görür
	sy, err := Build(db, ownerY.ID, testNow, 90)
	require.NoError(t, err)
	assert.Equal(t, 50.0, sy.MonthlyExpenses)
	assert.Equal(t, -50.0, sy.MonthlyProfit)
}

func TestBuildRecentPaymentsOnlyCurrentMonth(t *testing.T) {
	db := setupTestDB(t)
	owner := newUser(t, db, "x@test.de")
	unit := seedOwnerWithPayment(t, db, owner.ID)

	var l models.Lease
	require.NoError(t, db.First(&l, "unit_id = ?", unit.ID).Error)

	// Ocak ayına ait eski bir ödeme, son ödemeler listesine girmemeli
	old := models.Payment{
		LeaseID: l.ID, Amount: 1000,
		PaymentDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PaymentMonth: 1, PaymentYear: 2026,
		Type: models.PaymentRent, Method: models.MethodBankTransfer,
		Status: models.PaymentReceived,
	}
	require.NoError(t, db.Create(&old).Error)

	s, err := Build(db, owner.ID, testNow, 90)
	require.NoError(t, err)

	require.Len(t, s.RecentPayments, 1)
	assert.Equal(t, testNow.AddDate(0, 0, -3).Format("2006-01-02"), s.RecentPayments[0].PaymentDate)
	// Eski ödeme yıllık gelire girer ama bu ayın listesine girmez
	assert.Equal(t, 1000.0, s.MonthlyIncome)
	assert.Equal(t, 2000.0, s.YearlyIncome)
}
