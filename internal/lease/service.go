package lease

import (
	"errors"
	"fmt"
	"log"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/audit"
	"immobilien-backend/internal/models"
	"immobilien-backend/internal/ownership"

	"gorm.io/gorm"
)

type CreateInput struct {
	TenantID           uint
	UnitID             uint
	StartDate          time.Time
	EndDate            *time.Time
	ColdRent           float64
	AdditionalCosts    float64
	DepositAmount      float64
	NoticePeriodMonths int
	PaymentDayOfMonth  int
	Notes              string
}

type UpdateInput struct {
	ColdRent        *float64
	AdditionalCosts *float64
	DepositAmount   *float64
	DepositPaid     *float64
	DepositStatus   *models.DepositStatus
	Status          *models.LeaseStatus
	EndDate         *time.Time
	TerminationDate *time.Time
	MoveOutDate     *time.Time
	NoticePeriodMonths *int
	PaymentDayOfMonth  *int
	Notes           *string
}

func validStatus(s models.LeaseStatus) bool {
	switch s {
	case models.LeaseActive, models.LeaseTerminated, models.LeaseEnded, models.LeaseDraft:
		return true
	}
	return false
}

func validDepositStatus(s models.DepositStatus) bool {
	switch s {
	case models.DepositPending, models.DepositPartial, models.DepositFull, models.DepositRefunded:
		return true
	}
	return false
}

// Create - Yeni kira sözleşmesi. Birim boş olmalı ve üzerinde aktif sözleşme
// bulunmamalı; sözleşme aktif statüyle açılır ve birim aynı transaction
// içinde dolu (occupied) işaretlenir. Reddedilen istekler hiçbir yan etki
// bırakmaz.
func Create(db *gorm.DB, callerID uint, in CreateInput) (*models.Lease, error) {
	if in.StartDate.IsZero() {
		return nil, apperr.InvalidInput("start_date zorunlu")
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		return nil, apperr.InvalidInput("end_date start_date'ten sonra olmalı")
	}
	if in.ColdRent < 0 || in.AdditionalCosts < 0 || in.DepositAmount < 0 {
		return nil, apperr.InvalidInput("Tutarlar negatif olamaz")
	}
	if in.PaymentDayOfMonth <= 0 {
		in.PaymentDayOfMonth = 1
	}
	if in.NoticePeriodMonths <= 0 {
		in.NoticePeriodMonths = 3
	}

	var lease models.Lease
	err := db.Transaction(func(tx *gorm.DB) error {
		unit, err := ownership.UnitAccess(tx, callerID, in.UnitID, true)
		if err != nil {
			return err
		}

		var tenant models.Tenant
		if err := tx.First(&tenant, "id = ?", in.TenantID).Error; err != nil {
			return apperr.NotFound("Kiracı bulunamadı")
		}

		// Aynı birimde ikinci aktif sözleşme olamaz. Kontrol transaction
		// içinde; eşzamanlı yarış için ayrıca partial unique index var.
		var activeCount int64
		if err := tx.Model(&models.Lease{}).
			Where("unit_id = ? AND status = ?", in.UnitID, models.LeaseActive).
			Count(&activeCount).Error; err != nil {
			return apperr.Internal("Sözleşme kontrolü yapılamadı", err)
		}
		if activeCount > 0 {
			return apperr.Conflict("Bu birimde zaten aktif bir sözleşme var")
		}

		lease = models.Lease{
			TenantID:           in.TenantID,
			UnitID:             in.UnitID,
			StartDate:          in.StartDate,
			EndDate:            in.EndDate,
			NoticePeriodMonths: in.NoticePeriodMonths,
			ColdRent:           in.ColdRent,
			AdditionalCosts:    in.AdditionalCosts,
			DepositAmount:      in.DepositAmount,
			DepositStatus:      models.DepositPending,
			PaymentDayOfMonth:  in.PaymentDayOfMonth,
			Status:             models.LeaseActive,
			Notes:              in.Notes,
		}
		if err := tx.Create(&lease).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Bu birimde zaten aktif bir sözleşme var")
			}
			return apperr.Internal("Sözleşme oluşturulamadı", err)
		}

		unit.Status = models.UnitOccupied
		if err := tx.Save(unit).Error; err != nil {
			return apperr.Internal("Birim durumu güncellenemedi", err)
		}

		return nil
	})
	if err != nil {
		logRejection(db, callerID, "lease", in.UnitID, err)
		return nil, err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "lease",
		EntityID:    lease.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Sözleşme oluşturuldu: birim %d, kiracı %d", lease.UnitID, lease.TenantID),
		After:       leaseSnapshot(&lease),
	})

	return &lease, nil
}

// Update - Alan güncellemeleri. Statü değişimi birim durumunu geçiş
// tablosuna göre etkiler; diğer alanlar birime dokunmaz.
func Update(db *gorm.DB, callerID, leaseID uint, in UpdateInput) (*models.Lease, error) {
	if in.Status != nil && !validStatus(*in.Status) {
		return nil, apperr.InvalidInput("Geçersiz sözleşme statüsü")
	}
	if in.DepositStatus != nil && !validDepositStatus(*in.DepositStatus) {
		return nil, apperr.InvalidInput("Geçersiz depozito statüsü")
	}

	var lease *models.Lease
	var before map[string]any
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		lease, err = ownership.LeaseAccess(tx, callerID, leaseID, true)
		if err != nil {
			return err
		}
		before = leaseSnapshot(lease)

		oldStatus := lease.Status

		if in.ColdRent != nil {
			lease.ColdRent = *in.ColdRent
		}
		if in.AdditionalCosts != nil {
			lease.AdditionalCosts = *in.AdditionalCosts
		}
		if in.DepositAmount != nil {
			lease.DepositAmount = *in.DepositAmount
		}
		if in.DepositPaid != nil {
			lease.DepositPaid = *in.DepositPaid
		}
		if in.DepositStatus != nil {
			lease.DepositStatus = *in.DepositStatus
		}
		if in.EndDate != nil {
			lease.EndDate = in.EndDate
		}
		if in.TerminationDate != nil {
			lease.TerminationDate = in.TerminationDate
		}
		if in.MoveOutDate != nil {
			lease.MoveOutDate = in.MoveOutDate
		}
		if in.NoticePeriodMonths != nil {
			lease.NoticePeriodMonths = *in.NoticePeriodMonths
		}
		if in.PaymentDayOfMonth != nil {
			lease.PaymentDayOfMonth = *in.PaymentDayOfMonth
		}
		if in.Notes != nil {
			lease.Notes = *in.Notes
		}
		if in.Status != nil {
			lease.Status = *in.Status
		}

		if lease.EndDate != nil && !lease.EndDate.After(lease.StartDate) {
			return apperr.InvalidInput("end_date start_date'ten sonra olmalı")
		}

		// Tekrar aktif edilen sözleşme de ikinci-aktif kuralına tabi
		if in.Status != nil && *in.Status == models.LeaseActive && oldStatus != models.LeaseActive {
			var activeCount int64
			if err := tx.Model(&models.Lease{}).
				Where("unit_id = ? AND status = ? AND id <> ?", lease.UnitID, models.LeaseActive, lease.ID).
				Count(&activeCount).Error; err != nil {
				return apperr.Internal("Sözleşme kontrolü yapılamadı", err)
			}
			if activeCount > 0 {
				return apperr.Conflict("Bu birimde zaten aktif bir sözleşme var")
			}
		}

		if err := tx.Save(lease).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Bu birimde zaten aktif bir sözleşme var")
			}
			return apperr.Internal("Sözleşme güncellenemedi", err)
		}

		if effect := TransitionEffect(oldStatus, lease.Status); effect != EffectNone {
			var unit models.Unit
			if err := tx.First(&unit, "id = ?", lease.UnitID).Error; err != nil {
				return apperr.Internal("Birim yüklenemedi", err)
			}
			unit.Status = ApplyEffect(unit.Status, effect)
			if err := tx.Save(&unit).Error; err != nil {
				return apperr.Internal("Birim durumu güncellenemedi", err)
			}
		}

		return nil
	})
	if err != nil {
		logRejection(db, callerID, "lease", leaseID, err)
		return nil, err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "lease",
		EntityID:    lease.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Sözleşme güncellendi: %d", lease.ID),
		Before:      before,
		After:       leaseSnapshot(lease),
	})

	return lease, nil
}

// Delete - Sözleşmeyi soft-delete eder, birimi önceki statüden bağımsız
// olarak boşa çıkarır. İkisi tek transaction'dadır.
func Delete(db *gorm.DB, callerID, leaseID uint) error {
	var before map[string]any
	err := db.Transaction(func(tx *gorm.DB) error {
		lease, err := ownership.LeaseAccess(tx, callerID, leaseID, true)
		if err != nil {
			return err
		}
		before = leaseSnapshot(lease)

		if err := tx.Delete(lease).Error; err != nil {
			return apperr.Internal("Sözleşme silinemedi", err)
		}

		if err := tx.Model(&models.Unit{}).
			Where("id = ?", lease.UnitID).
			Update("status", models.UnitVacant).Error; err != nil {
			return apperr.Internal("Birim durumu güncellenemedi", err)
		}

		return nil
	})
	if err != nil {
		logRejection(db, callerID, "lease", leaseID, err)
		return err
	}

	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  "lease",
		EntityID:    leaseID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Sözleşme silindi: %d", leaseID),
		Before:      before,
	})

	return nil
}

// leaseSnapshot - Audit için sade alan kümesi (navigasyon alanları hariç)
func leaseSnapshot(l *models.Lease) map[string]any {
	return map[string]any{
		"id":               l.ID,
		"tenant_id":        l.TenantID,
		"unit_id":          l.UnitID,
		"start_date":       l.StartDate.Format("2006-01-02"),
		"end_date":         l.EndDate,
		"cold_rent":        l.ColdRent,
		"additional_costs": l.AdditionalCosts,
		"deposit_amount":   l.DepositAmount,
		"deposit_paid":     l.DepositPaid,
		"deposit_status":   l.DepositStatus,
		"status":           l.Status,
	}
}

func writeAudit(db *gorm.DB, callerID uint, opts audit.LogOptions) {
	opts.UserID = callerID
	var user models.User
	if err := db.First(&user, "id = ?", callerID).Error; err == nil {
		opts.UserName = user.FullName()
	}
	if err := audit.WriteLog(db, opts); err != nil {
		// Audit hatası işlemi geri döndürmez, sadece loglanır
		log.Printf("Audit log yazılamadı: %v", err)
	}
}

// logRejection - Reddedilen kural ihlallerini denetim izine yazar.
// Beklenmeyen (internal) hatalar için sadece process log'u yeterli.
func logRejection(db *gorm.DB, callerID uint, entityType string, entityID uint, cause error) {
	var e *apperr.Error
	if !errors.As(cause, &e) || e.Kind == apperr.KindInternal {
		log.Printf("%s işlemi başarısız (entity=%d, user=%d): %v", entityType, entityID, callerID, cause)
		return
	}
	writeAudit(db, callerID, audit.LogOptions{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      models.AuditActionReject,
		Description: fmt.Sprintf("İşlem reddedildi (%s): %s", e.Kind, e.Message),
	})
}
