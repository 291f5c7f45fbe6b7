package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionReject AuditAction = "reject" // Kural ihlali nedeniyle reddedilen işlem
)

// AuditLog - Tüm mutasyonların ve reddedilen kural ihlallerinin izi.
// Before/After JSON string olarak tutulur (jsonb).
type AuditLog struct {
	ID          uint        `gorm:"primaryKey"`
	UserID      uint        `gorm:"index;not null"`
	UserName    string      `gorm:"size:200"`
	EntityType  string      `gorm:"size:50;index;not null"`
	EntityID    uint        `gorm:"index"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:500"`
	BeforeData  string      `gorm:"type:jsonb;default:null"`
	AfterData   string      `gorm:"type:jsonb;default:null"`
	CreatedAt   time.Time
}
