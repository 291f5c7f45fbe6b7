package models

import (
	"time"

	"gorm.io/gorm"
)

type ExpenseCategory string

const (
	ExpenseRepair        ExpenseCategory = "repair"
	ExpenseMaintenance   ExpenseCategory = "maintenance"
	ExpenseInsurance     ExpenseCategory = "insurance"
	ExpensePropertyTax   ExpenseCategory = "property_tax"
	ExpenseManagement    ExpenseCategory = "management"
	ExpenseWater         ExpenseCategory = "water"
	ExpenseHeating       ExpenseCategory = "heating"
	ExpenseElectricity   ExpenseCategory = "electricity"
	ExpenseGarbage       ExpenseCategory = "garbage"
	ExpenseChimneySweep  ExpenseCategory = "chimney_sweep"
	ExpenseGardening     ExpenseCategory = "gardening"
	ExpenseCleaning      ExpenseCategory = "cleaning"
	ExpenseElevator      ExpenseCategory = "elevator"
	ExpenseBankFees      ExpenseCategory = "bank_fees"
	ExpenseInterest      ExpenseCategory = "interest"
	ExpenseRenovation    ExpenseCategory = "renovation"
	ExpenseLegal         ExpenseCategory = "legal"
	ExpenseOtherCategory ExpenseCategory = "other"
)

type RecurringInterval string

const (
	IntervalMonthly    RecurringInterval = "monthly"
	IntervalQuarterly  RecurringInterval = "quarterly"
	IntervalSemiannual RecurringInterval = "semiannual"
	IntervalYearly     RecurringInterval = "yearly"
)

// Expense - Gider kaydı. Property/Unit bağlantısı opsiyonel,
// bağlantısız giderler genel işletme gideri sayılır.
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	PropertyID  *uint     `gorm:"index"`
	Property    *Property `gorm:"foreignKey:PropertyID"`
	UnitID      *uint     `gorm:"index"`
	Unit        *Unit     `gorm:"foreignKey:UnitID"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:1000"`
	Amount      float64   `gorm:"not null"`
	Date        time.Time `gorm:"index;not null"`
	DueDate     *time.Time
	Category    ExpenseCategory    `gorm:"size:30;not null"`
	IsRecurring bool               `gorm:"not null;default:false"`
	RecurringInterval *RecurringInterval `gorm:"size:20"`
	IsAllocatable     bool   `gorm:"not null;default:false"` // Kiracılara yansıtılabilir mi (yan gider)
	IsTaxDeductible   bool   `gorm:"not null;default:true"`
	Vendor            string `gorm:"size:200"` // Tedarikçi / usta
	InvoiceNumber     string `gorm:"size:100"`
	Notes             string `gorm:"size:2000"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
