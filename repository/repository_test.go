package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:memdb_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to open in-memory database")

	require.NoError(t, db.AutoMigrate(&File{}, &CDRRecord{}))
	return New(db)
}

func TestFileCreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	file := &File{
		ID:          "file-1",
		Filename:    "design.pdf",
		ContentType: "application/pdf",
		Size:        2048,
		Path:        "2026/08/28/file-1.pdf",
		Source:      "native",
	}
	require.NoError(t, repo.CreateFile(file))

	got, err := repo.GetFile("file-1")
	require.NoError(t, err)
	assert.Equal(t, "design.pdf", got.Filename)
	assert.False(t, got.UploadedAt.IsZero(), "upload time is set on create")
}

func TestFileCreateRejectsEmptyID(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.CreateFile(&File{Filename: "x.pdf"})
	assert.Error(t, err)
}

func TestGetFileNotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetFile("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordLifecycle(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.CreateFile(&File{ID: "file-1", Filename: "a.pdf", Path: "p"}))

	rec := &CDRRecord{
		FileID:     "file-1",
		Status:     StatusExtracted,
		Fields:     datatypes.JSON(`{"purpose":{"value":"modernize"}}`),
		Confidence: 0.92,
	}
	require.NoError(t, repo.CreateRecord(rec))
	require.NotZero(t, rec.ID)

	got, err := repo.GetRecordByFile("file-1")
	require.NoError(t, err)
	assert.Equal(t, StatusExtracted, got.Status)
	assert.Equal(t, 0.92, got.Confidence)

	confirmed := []byte(`{"purpose":"modernize the billing stack"}`)
	require.NoError(t, repo.Confirm(rec.ID, confirmed))

	got, err = repo.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.JSONEq(t, string(confirmed), string(got.ConfirmedFields))
}

func TestConfirmMissingRecord(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.Confirm(42, []byte(`{}`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRecordByFilePrefersNewest(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.CreateFile(&File{ID: "file-1", Filename: "a.pdf", Path: "p"}))

	first := &CDRRecord{FileID: "file-1", Status: StatusExtracted, Confidence: 0.5}
	require.NoError(t, repo.CreateRecord(first))
	// force distinct creation timestamps
	require.NoError(t, repo.db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	second := &CDRRecord{FileID: "file-1", Status: StatusExtracted, Confidence: 0.8}
	require.NoError(t, repo.CreateRecord(second))

	got, err := repo.GetRecordByFile("file-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestDeleteFileCascades(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.CreateFile(&File{ID: "file-1", Filename: "a.pdf", Path: "p"}))
	require.NoError(t, repo.CreateRecord(&CDRRecord{FileID: "file-1", Status: StatusExtracted}))

	require.NoError(t, repo.DeleteFile("file-1"))

	_, err := repo.GetFile("file-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetRecordByFile("file-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
