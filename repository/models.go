package repository

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordStatus tracks a CDR record through its review lifecycle.
type RecordStatus string

const (
	StatusExtracted RecordStatus = "extracted"
	StatusConfirmed RecordStatus = "confirmed"
	StatusFailed    RecordStatus = "failed"
)

// File is the metadata row for one uploaded document.
type File struct {
	ID          string    `gorm:"primaryKey"`
	Filename    string    `gorm:"not null"`
	ContentType string    `gorm:"size:100"`
	Size        int64     `gorm:"not null"`
	Path        string    `gorm:"not null"` // storage-relative path
	Source      string    `gorm:"size:10"`  // native or ocr
	UploadedAt  time.Time `gorm:"not null;index"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	return nil
}

func (File) TableName() string {
	return "files"
}

// CDRRecord holds the extraction result for one file: the field mapping and
// diagnostics as produced by the engine, plus the reviewer's confirmed values
// once the record has been signed off.
type CDRRecord struct {
	ID              uint           `gorm:"primaryKey;autoIncrement"`
	FileID          string         `gorm:"not null;index"`
	Status          RecordStatus   `gorm:"not null;index"`
	Fields          datatypes.JSON `gorm:"type:json"`
	Diagnostics     datatypes.JSON `gorm:"type:json"`
	Confidence      float64        `gorm:"not null;default:0"`
	ConfirmedFields datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

func (r *CDRRecord) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (r *CDRRecord) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return nil
}

func (CDRRecord) TableName() string {
	return "cdr_records"
}
