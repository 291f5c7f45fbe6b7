package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleLandlord UserRole = "landlord"
	RoleReadonly UserRole = "readonly"
)

// User - Ev sahibi / yönetici hesabı
type User struct {
	ID           uint     `gorm:"primaryKey"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	FirstName    string   `gorm:"size:100;not null"`
	LastName     string   `gorm:"size:100;not null"`
	Phone        string   `gorm:"size:50"`
	Company      string   `gorm:"size:200"` // Şirket üzerinden yönetiliyorsa
	Street       string   `gorm:"size:200"`
	ZipCode      string   `gorm:"size:10"`
	City         string   `gorm:"size:100"`
	TaxID        string   `gorm:"size:50"` // Vergi numarası
	Role         UserRole `gorm:"size:20;not null;default:landlord"`
	IsActive     bool     `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
