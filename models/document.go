package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is a supporting file attached to an Application (transcripts,
// IDs, etc.). Deleting the application deletes its documents.
type Document struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	CreatedAt     time.Time
	ApplicationID string `gorm:"size:255;not null;index"`
	Name          string `gorm:"size:255;not null"`
	StorageURL    string `gorm:"size:512;not null"`
	ThumbURL      string `gorm:"size:512"`
	MimeType      string `gorm:"size:128;not null"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
