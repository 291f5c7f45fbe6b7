package ownership

import (
	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/models"

	"gorm.io/gorm"
)

// Sahiplik zinciri: Property.OwnerID -> Unit.PropertyID -> Lease/Payment/MeterReading.
// Tek kayıt okumalarında sahip olmayan kullanıcıya kaydın varlığı sızdırılmaz:
// yetki yoksa okuma NotFound döner, yazma ise Forbidden (kayıt sahipli bir
// üst nesne üzerinden zaten biliniyorsa).

func denied(write bool, msg string) error {
	if write {
		return apperr.Forbidden("Bu kayıt üzerinde yetkiniz yok")
	}
	return apperr.NotFound(msg)
}

// OwnedPropertyIDs - Kullanıcının sahip olduğu property id'leri
func OwnedPropertyIDs(db *gorm.DB, callerID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.Property{}).
		Where("owner_id = ?", callerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, apperr.Internal("Sahiplik bilgisi alınamadı", err)
	}
	return ids, nil
}

// OwnedUnitIDs - Kullanıcının property'leri üzerinden sahip olduğu birim id'leri
func OwnedUnitIDs(db *gorm.DB, callerID uint) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.Unit{}).
		Joins("JOIN properties ON properties.id = units.property_id AND properties.deleted_at IS NULL").
		Where("properties.owner_id = ?", callerID).
		Pluck("units.id", &ids).Error; err != nil {
		return nil, apperr.Internal("Sahiplik bilgisi alınamadı", err)
	}
	return ids, nil
}

// PropertyAccess - Property'yi yükler ve sahipliği doğrular
func PropertyAccess(db *gorm.DB, callerID, propertyID uint, write bool) (*models.Property, error) {
	var prop models.Property
	if err := db.First(&prop, "id = ?", propertyID).Error; err != nil {
		return nil, apperr.NotFound("Gayrimenkul bulunamadı")
	}
	if prop.OwnerID != callerID {
		return nil, denied(write, "Gayrimenkul bulunamadı")
	}
	return &prop, nil
}

// UnitAccess - Birimi yükler, property üzerinden sahipliği doğrular
func UnitAccess(db *gorm.DB, callerID, unitID uint, write bool) (*models.Unit, error) {
	var unit models.Unit
	if err := db.First(&unit, "id = ?", unitID).Error; err != nil {
		return nil, apperr.NotFound("Birim bulunamadı")
	}
	var prop models.Property
	if err := db.First(&prop, "id = ?", unit.PropertyID).Error; err != nil {
		return nil, apperr.NotFound("Birim bulunamadı")
	}
	if prop.OwnerID != callerID {
		return nil, denied(write, "Birim bulunamadı")
	}
	return &unit, nil
}

// LeaseAccess - Sözleşmeyi yükler, birim -> property zinciriyle sahipliği doğrular
func LeaseAccess(db *gorm.DB, callerID, leaseID uint, write bool) (*models.Lease, error) {
	var lease models.Lease
	if err := db.First(&lease, "id = ?", leaseID).Error; err != nil {
		return nil, apperr.NotFound("Sözleşme bulunamadı")
	}
	if _, err := UnitAccess(db, callerID, lease.UnitID, write); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) && !write {
			return nil, apperr.NotFound("Sözleşme bulunamadı")
		}
		return nil, err
	}
	return &lease, nil
}

// PaymentAccess - Ödemeyi yükler, sözleşme zinciriyle sahipliği doğrular
func PaymentAccess(db *gorm.DB, callerID, paymentID uint, write bool) (*models.Payment, error) {
	var payment models.Payment
	if err := db.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, apperr.NotFound("Ödeme bulunamadı")
	}
	if _, err := LeaseAccess(db, callerID, payment.LeaseID, write); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) && !write {
			return nil, apperr.NotFound("Ödeme bulunamadı")
		}
		return nil, err
	}
	return &payment, nil
}

// ReadingAccess - Sayaç okumasını yükler, birim zinciriyle sahipliği doğrular
func ReadingAccess(db *gorm.DB, callerID, readingID uint, write bool) (*models.MeterReading, error) {
	var reading models.MeterReading
	if err := db.First(&reading, "id = ?", readingID).Error; err != nil {
		return nil, apperr.NotFound("Sayaç okuması bulunamadı")
	}
	if _, err := UnitAccess(db, callerID, reading.UnitID, write); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) && !write {
			return nil, apperr.NotFound("Sayaç okuması bulunamadı")
		}
		return nil, err
	}
	return &reading, nil
}
