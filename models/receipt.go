package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt is a proof-of-payment file attached to a FeeRecord. Rows are
// append-only; correcting a receipt means uploading another one.
type Receipt struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	CreatedAt    time.Time
	FeeRecordID  string `gorm:"column:payment_id;size:255;not null;index"`
	Name         string `gorm:"size:255;not null"`
	StorageURL   string `gorm:"size:512;not null"`
	ThumbURL     string `gorm:"size:512"`
	MimeType     string `gorm:"size:128;not null"`
	UploadedByID string `gorm:"column:uploaded_by;size:255;not null"`
}

func (r *Receipt) TableName() string { return "payment_receipts" }

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
