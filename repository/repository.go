package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Open connects to the sqlite database at the given DSN, creating the parent
// directory when needed, and migrates the schema.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormLogger := logger.New(
		&logrusWriter{log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&File{}, &CDRRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// logrusWriter forwards gorm's log lines to logrus.
type logrusWriter struct {
	logger *logrus.Logger
}

func (w *logrusWriter) Printf(format string, args ...interface{}) {
	w.logger.Tracef(format, args...)
}

// Repository is the persistence layer for files and their extraction records.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFile(file *File) error {
	if file.ID == "" {
		return errors.New("file ID cannot be empty")
	}
	return r.db.Create(file).Error
}

func (r *Repository) GetFile(id string) (*File, error) {
	var file File
	err := r.db.Where("id = ?", id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &file, nil
}

func (r *Repository) ListFiles(offset, limit int) ([]*File, int64, error) {
	var files []*File
	var total int64

	query := r.db.Model(&File{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *Repository) CreateRecord(rec *CDRRecord) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetRecord(id uint) (*CDRRecord, error) {
	var rec CDRRecord
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cdr record %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &rec, nil
}

// GetRecordByFile returns the newest extraction record for a file.
func (r *Repository) GetRecordByFile(fileID string) (*CDRRecord, error) {
	var rec CDRRecord
	err := r.db.Where("file_id = ?", fileID).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no cdr record for file %s", ErrNotFound, fileID)
		}
		return nil, err
	}
	return &rec, nil
}

// Confirm stores the reviewer-approved field values and flips the record to
// confirmed.
func (r *Repository) Confirm(id uint, confirmed []byte) error {
	res := r.db.Model(&CDRRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           StatusConfirmed,
			"confirmed_fields": confirmed,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: cdr record %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) DeleteFile(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(&CDRRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&File{}).Error
	})
}
