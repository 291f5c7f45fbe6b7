package dashboard

import (
	"math"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"gorm.io/gorm"
)

// Summary - Ev sahibine özel özet. Tüm sayılar ve toplamlar sahiplik
// kümesine göre filtrelenir, başka sahiplerin verisi asla karışmaz.
type Summary struct {
	TotalProperties int     `json:"total_properties"`
	TotalUnits      int     `json:"total_units"`
	OccupiedUnits   int     `json:"occupied_units"`
	VacantUnits     int     `json:"vacant_units"`
	OccupancyRate   float64 `json:"occupancy_rate"` // yüzde, 1 ondalık

	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	MonthlyProfit   float64 `json:"monthly_profit"`
	YearlyIncome    float64 `json:"yearly_income"`
	YearlyExpenses  float64 `json:"yearly_expenses"`

	OverduePayments int `json:"overdue_payments"`
	ExpiringLeases  int `json:"expiring_leases"`

	RecentPayments     []PaymentSummary `json:"recent_payments"`
	ExpiringLeasesList []LeaseSummary   `json:"expiring_leases_list"`
}

// PaymentSummary - Özet içindeki ödeme projeksiyonu, ham entity dönmez
type PaymentSummary struct {
	ID          uint    `json:"id"`
	TenantName  string  `json:"tenant_name"`
	UnitName    string  `json:"unit_name"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
}

type LeaseSummary struct {
	ID         uint    `json:"id"`
	TenantName string  `json:"tenant_name"`
	UnitName   string  `json:"unit_name"`
	EndDate    string  `json:"end_date"`
	TotalRent  float64 `json:"total_rent"`
}

// monthRange - Verilen ay için [başlangıç, sonraki ay başlangıcı) aralığı
func monthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// incomeForMonth - Sahip olunan birimlerdeki, verilen aya ait (payment_month /
// payment_year alanlarıyla) ve alınmış (received) ödemelerin toplamı
func incomeForMonth(db *gorm.DB, unitIDs []uint, year int, month time.Month) (float64, error) {
	if len(unitIDs) == 0 {
		return 0, nil
	}
	var total float64
	err := db.Model(&models.Payment{}).
		Joins("JOIN leases ON leases.id = payments.lease_id AND leases.deleted_at IS NULL").
		Where("leases.unit_id IN ?", unitIDs).
		Where("payments.payment_month = ? AND payments.payment_year = ?", int(month), year).
		Where("payments.status = ?", models.PaymentReceived).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Internal("Gelir toplanamadı", err)
	}
	return total, nil
}

// expensesForRange - Sahip olunan property'lere bağlı veya hiçbir property'ye
// bağlı olmayan (genel işletme) giderlerin tarih aralığındaki toplamı
func expensesForRange(db *gorm.DB, propertyIDs []uint, from, to time.Time) (float64, error) {
	var total float64
	q := db.Model(&models.Expense{}).
		Where("date >= ? AND date < ?", from, to)
	if len(propertyIDs) == 0 {
		q = q.Where("property_id IS NULL")
	} else {
		q = q.Where("property_id IS NULL OR property_id IN ?", propertyIDs)
	}
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperr.Internal("Giderler toplanamadı", err)
	}
	return total, nil
}

// Build - Dashboard özetini hesaplar. Sahipsiz (sıfır property) kullanıcı
// için hata değil, sıfırlardan oluşan geçerli bir özet döner.
func Build(db *gorm.DB, ownerID uint, now time.Time, horizonDays int) (*Summary, error) {
	if horizonDays <= 0 {
		horizonDays = 90
	}

	propertyIDs, err := ownership.OwnedPropertyIDs(db, ownerID)
	if err != nil {
		return nil, err
	}
	unitIDs, err := ownership.OwnedUnitIDs(db, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalProperties:    len(propertyIDs),
		RecentPayments:     []PaymentSummary{},
		ExpiringLeasesList: []LeaseSummary{},
	}

	// Birim sayıları ve doluluk
	if len(unitIDs) > 0 {
		var units []models.Unit
		if err := db.Where("id IN ?", unitIDs).Find(&units).Error; err != nil {
			return nil, apperr.Internal("Birimler yüklenemedi", err)
		}
		summary.TotalUnits = len(units)
		for i := range units {
			if units[i].Status == models.UnitOccupied {
				summary.OccupiedUnits++
			}
		}
		summary.VacantUnits = summary.TotalUnits - summary.OccupiedUnits
		if summary.TotalUnits > 0 {
			rate := float64(summary.OccupiedUnits) / float64(summary.TotalUnits) * 100
			summary.OccupancyRate = math.Round(rate*10) / 10
		}
	}

	loc := now.Location()

	// Aylık gelir / gider
	summary.MonthlyIncome, err = incomeForMonth(db, unitIDs, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	monthStart, monthEnd := monthRange(now.Year(), now.Month(), loc)
	summary.MonthlyExpenses, err = expensesForRange(db, propertyIDs, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	summary.MonthlyProfit = summary.MonthlyIncome - summary.MonthlyExpenses

	// Yıllık gelir: 12 ay tek tek toplanır, aylık hesapla aynı ay/yıl
	// semantiğini kullansın diye
	for m := time.January; m <= time.December; m++ {
		income, err := incomeForMonth(db, unitIDs, now.Year(), m)
		if err != nil {
			return nil, err
		}
		summary.YearlyIncome += income
	}
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	summary.YearlyExpenses, err = expensesForRange(db, propertyIDs, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	if len(unitIDs) > 0 {
		// Vadesi geçmiş ödemeler
		var overdue int64
		if err := db.Model(&models.Payment{}).
			Joins("JOIN leases ON leases.id = payments.lease_id AND leases.deleted_at IS NULL").
			Where("leases.unit_id IN ?", unitIDs).
			Where("payments.status = ? AND payments.due_date < ?", models.PaymentPending, now).
			Count(&overdue).Error; err != nil {
			return nil, apperr.Internal("Vadesi geçmiş ödemeler sayılamadı", err)
		}
		summary.OverduePayments = int(overdue)

		// Yakında bitecek sözleşmeler
		horizon := now.AddDate(0, 0, horizonDays)
		var expiring []models.Lease
		if err := db.Preload("Tenant").Preload("Unit").
			Where("unit_id IN ?", unitIDs).
			Where("status = ?", models.LeaseActive).
			Where("end_date IS NOT NULL AND end_date >= ? AND end_date <= ?", now, horizon).
			Order("end_date ASC").
			Find(&expiring).Error; err != nil {
			return nil, apperr.Internal("Bitecek sözleşmeler listelenemedi", err)
		}
		summary.ExpiringLeases = len(expiring)
		for i := range expiring {
			l := &expiring[i]
			summary.ExpiringLeasesList = append(summary.ExpiringLeasesList, LeaseSummary{
				ID:         l.ID,
				TenantName: l.Tenant.FullName(),
				UnitName:   l.Unit.Name,
				EndDate:    l.EndDate.Format("2006-01-02"),
				TotalRent:  models.TotalRent(l),
			})
		}

		// Bu ayın son 10 ödemesi
		var recent []models.Payment
		if err := db.Preload("Lease.Tenant").Preload("Lease.Unit").
			Joins("JOIN leases ON leases.id = payments.lease_id AND leases.deleted_at IS NULL").
			Where("leases.unit_id IN ?", unitIDs).
			Where("payments.payment_month = ? AND payments.payment_year = ?", int(now.Month()), now.Year()).
			Order("payments.payment_date DESC, payments.id DESC").
			Limit(10).
			Find(&recent).Error; err != nil {
			return nil, apperr.Internal("Son ödemeler listelenemedi", err)
		}
		for i := range recent {
			p := &recent[i]
			summary.RecentPayments = append(summary.RecentPayments, PaymentSummary{
				ID:          p.ID,
				TenantName:  p.Lease.Tenant.FullName(),
				UnitName:    p.Lease.Unit.Name,
				Amount:      p.Amount,
				PaymentDate: p.PaymentDate.Format("2006-01-02"),
				Type:        string(p.Type),
				Status:      string(p.Status),
			})
		}
	}

	return summary, nil
}
