package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeKind is one of the four fixed fee line items tracked per application.
type FeeKind string

const (
	FeeApplication FeeKind = "applicationFee"
	FeeAdmission   FeeKind = "admissionFee"
	FeeVisa        FeeKind = "visaFee"
	FeeOther       FeeKind = "other"
)

// FeeKinds lists the kinds in creation order.
var FeeKinds = []FeeKind{FeeApplication, FeeAdmission, FeeVisa, FeeOther}

// DefaultAmount returns the amount a freshly materialized record of this
// kind carries.
func (k FeeKind) DefaultAmount() decimal.Decimal {
	switch k {
	case FeeApplication:
		return decimal.NewFromInt(100)
	case FeeAdmission:
		return decimal.NewFromInt(1000)
	case FeeVisa:
		return decimal.NewFromInt(200)
	default:
		return decimal.Zero
	}
}

// FeeStatus tracks manual payment verification. The only transition taken
// automatically is notUpdated -> pending on first receipt upload; staff set
// everything else by hand.
type FeeStatus string

const (
	FeeNotUpdated    FeeStatus = "notUpdated"
	FeeNotApplicable FeeStatus = "notApplicable"
	FeePending       FeeStatus = "pending"
	FeePaid          FeeStatus = "paid"
)

func (s FeeStatus) Valid() bool {
	switch s {
	case FeeNotUpdated, FeeNotApplicable, FeePending, FeePaid:
		return true
	}
	return false
}

// FeeRecord is one fee line item per (application, kind). The four kinds
// are materialized lazily the first time fees are queried; the unique index
// keeps concurrent materialization from creating duplicates.
type FeeRecord struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ApplicationID   string          `gorm:"size:255;not null;uniqueIndex:idx_app_fee_kind"`
	FeeKind         FeeKind         `gorm:"size:32;not null;uniqueIndex:idx_app_fee_kind"`
	Status          FeeStatus       `gorm:"size:32;not null;default:notUpdated"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency        string          `gorm:"size:8;not null;default:USD"`
	AccountDetails  string          `gorm:"size:1024"`
	Notes           string          `gorm:"size:1024"`
	LastUpdatedByID *string         `gorm:"column:last_updated_by;size:255"`

	Receipts []Receipt `gorm:"foreignKey:FeeRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (f *FeeRecord) TableName() string { return "payments" }

func (f *FeeRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
