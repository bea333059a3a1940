package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/sirupsen/logrus"

	"github.com/Aashish23092/cdr-extraction/client"
	"github.com/Aashish23092/cdr-extraction/dto"
	"github.com/Aashish23092/cdr-extraction/extraction"
	"github.com/Aashish23092/cdr-extraction/repository"
	"github.com/Aashish23092/cdr-extraction/storage"
)

var ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

// cdrKeywords indicate that extracted text really is a design record and not
// OCR noise.
var cdrKeywords = []string{
	"purpose", "decision", "architect", "context", "rationale", "author",
}

// CDRService owns the document lifecycle: persist the upload, get raw text
// out of it (native PDF layer first, OCR fallback), run the extraction
// engine and store the result for review.
type CDRService struct {
	repo        *repository.Repository
	store       storage.Storage
	pdf         PDFProcessor
	tesseract   *client.TesseractClient
	remote      *client.RemoteOCRClient
	engine      *extraction.Engine
	log         *logrus.Logger
	maxFileSize int64
}

func NewCDRService(
	repo *repository.Repository,
	store storage.Storage,
	pdf PDFProcessor,
	tesseract *client.TesseractClient,
	remote *client.RemoteOCRClient,
	engine *extraction.Engine,
	log *logrus.Logger,
	maxFileSize int64,
) *CDRService {
	return &CDRService{
		repo:        repo,
		store:       store,
		pdf:         pdf,
		tesseract:   tesseract,
		remote:      remote,
		engine:      engine,
		log:         log,
		maxFileSize: maxFileSize,
	}
}

// ProcessUpload stores the document, extracts its text and fields, and
// records the result. Extraction never fails the upload: unreadable
// documents produce a zero-confidence record flagged for review.
func (s *CDRService) ProcessUpload(fileHeader *multipart.FileHeader) (*dto.UploadResponse, error) {
	if s.maxFileSize > 0 && fileHeader.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	info, err := s.store.Save(bytes.NewReader(data), fileHeader.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	text, source := s.extractText(data, fileHeader.Filename)

	fileRow := &repository.File{
		ID:          info.ID,
		Filename:    fileHeader.Filename,
		ContentType: info.MimeType,
		Size:        info.Size,
		Path:        info.Path,
		Source:      string(source),
	}
	if err := s.repo.CreateFile(fileRow); err != nil {
		return nil, fmt.Errorf("failed to persist file metadata: %w", err)
	}

	result := s.engine.Extract(extraction.NewDocument(text, source))

	if ref := s.scanDocumentRef(data, fileHeader.Filename); ref != "" {
		result.Diagnostics.Notes = append(result.Diagnostics.Notes,
			"document reference: "+ref)
	}

	record, cdrResp, err := s.persistResult(info.ID, result)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"file_id":    info.ID,
		"record_id":  record.ID,
		"source":     source,
		"confidence": result.Confidence,
	}).Info("Document processed")

	return &dto.UploadResponse{
		FileID:   info.ID,
		Filename: fileHeader.Filename,
		Size:     info.Size,
		Record:   cdrResp,
	}, nil
}

// extractText pulls raw text out of the upload. PDFs get the native text
// layer first; when that layer is missing or reads like noise, embedded page
// images go through OCR. Plain images go straight to OCR.
func (s *CDRService) extractText(data []byte, filename string) (string, extraction.SourceKind) {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == ".pdf" || ext == "" {
		text, err := s.pdf.ExtractText(data)
		if err == nil && s.textLooksUsable(text) {
			return text, extraction.SourceNative
		}
		if err != nil {
			s.log.WithField("error", err.Error()).Warn("Native PDF text extraction failed, trying OCR")
		} else {
			s.log.Warn("Native PDF text layer unusable, trying OCR")
		}

		if ocrText := s.ocrPDFImages(data); ocrText != "" {
			return ocrText, extraction.SourceOCR
		}
		if s.remote != nil && s.remote.Enabled() {
			if remoteText, err := s.remote.ExtractTextFromBytes(data); err == nil {
				return remoteText, extraction.SourceOCR
			} else {
				s.log.WithField("error", err.Error()).Warn("Remote OCR failed")
			}
		}
		return text, extraction.SourceNative
	}

	// image upload
	text, quality, err := s.tesseract.ExtractText(bytes.NewReader(data), filename)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("OCR extraction failed")
		if s.remote != nil && s.remote.Enabled() {
			if remoteText, rerr := s.remote.ExtractTextFromBytes(data); rerr == nil {
				return remoteText, extraction.SourceOCR
			}
		}
		return "", extraction.SourceOCR
	}
	s.log.WithField("ocr_quality", quality).Debug("OCR extraction complete")
	return text, extraction.SourceOCR
}

// ocrPDFImages runs OCR over every image embedded in the PDF and joins the
// page texts in order.
func (s *CDRService) ocrPDFImages(data []byte) string {
	images, err := s.pdf.ExtractImages(data)
	if err != nil || len(images) == 0 {
		return ""
	}

	var parts []string
	for _, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			continue
		}
		text, _, err := s.tesseract.ExtractText(&buf, "page.png")
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// textLooksUsable rejects text layers that are too short or carry none of the
// vocabulary a design record always has.
func (s *CDRService) textLooksUsable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 40 {
		return false
	}
	low := strings.ToLower(trimmed)
	for _, kw := range cdrKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// scanDocumentRef looks for a QR code on the document pages. Printed design
// records carry one linking back to the document registry.
func (s *CDRService) scanDocumentRef(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	var images []image.Image
	if ext == ".pdf" || ext == "" {
		imgs, err := s.pdf.ExtractImages(data)
		if err != nil {
			return ""
		}
		images = imgs
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return ""
		}
		images = []image.Image{img}
	}

	reader := qrcode.NewQRCodeReader()
	for _, img := range images {
		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			continue
		}
		result, err := reader.Decode(bmp, nil)
		if err != nil {
			continue
		}
		if text := result.GetText(); text != "" {
			return text
		}
	}
	return ""
}

// persistResult stores the extraction result and returns it in API form.
func (s *CDRService) persistResult(fileID string, result extraction.ExtractionResult) (*repository.CDRRecord, *dto.CDRResponse, error) {
	fields := toFieldValues(result.Fields)
	diags := dto.Diagnostics{
		Preamble:          result.Diagnostics.Preamble,
		UnmatchedHeadings: result.Diagnostics.UnmatchedHeadings,
		DuplicateFields:   result.Diagnostics.DuplicateFields,
		MissingRequired:   result.Diagnostics.MissingRequired,
		Notes:             result.Diagnostics.Notes,
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	diagsJSON, err := json.Marshal(diags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	record := &repository.CDRRecord{
		FileID:      fileID,
		Status:      repository.StatusExtracted,
		Fields:      fieldsJSON,
		Diagnostics: diagsJSON,
		Confidence:  result.Confidence,
	}
	if err := s.repo.CreateRecord(record); err != nil {
		return nil, nil, fmt.Errorf("failed to persist extraction record: %w", err)
	}

	return record, &dto.CDRResponse{
		RecordID:    record.ID,
		FileID:      fileID,
		Status:      string(record.Status),
		Fields:      fields,
		Diagnostics: diags,
		Confidence:  result.Confidence,
		Source:      string(result.Source),
	}, nil
}

func toFieldValues(fields map[string]extraction.ExtractedField) map[string]dto.FieldValue {
	out := make(map[string]dto.FieldValue, len(fields))
	for name, f := range fields {
		out[name] = dto.FieldValue{
			Value:      f.Value,
			Raw:        f.RawValue,
			Confidence: f.Confidence,
			Flags:      f.Flags,
		}
	}
	return out
}

// GetFile returns file metadata together with its newest extraction record.
func (s *CDRService) GetFile(id string) (*dto.FileResponse, error) {
	file, err := s.repo.GetFile(id)
	if err != nil {
		return nil, err
	}

	resp := &dto.FileResponse{
		ID:          file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Source:      file.Source,
		UploadedAt:  file.UploadedAt,
	}

	record, err := s.repo.GetRecordByFile(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	cdr, err := recordToResponse(record)
	if err != nil {
		return nil, err
	}
	resp.Record = cdr
	return resp, nil
}

// ListFiles returns one page of uploaded files, newest first. Records are not
// loaded; the per-file endpoint carries those.
func (s *CDRService) ListFiles(offset, limit int) (*dto.FileListResponse, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	files, total, err := s.repo.ListFiles(offset, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.FileListResponse{
		Files:  make([]dto.FileResponse, 0, len(files)),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
	for _, f := range files {
		resp.Files = append(resp.Files, dto.FileResponse{
			ID:          f.ID,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			Source:      f.Source,
			UploadedAt:  f.UploadedAt,
		})
	}
	return resp, nil
}

// DownloadFile opens the stored document for streaming back to the client.
func (s *CDRService) DownloadFile(id string) (io.ReadCloser, *repository.File, error) {
	file, err := s.repo.GetFile(id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(file.Path)
	if err != nil {
		return nil, nil, err
	}
	return rc, file, nil
}

// Confirm records the reviewer-approved values for an extraction record.
func (s *CDRService) Confirm(recordID uint, fields map[string]dto.FieldValue) (*dto.CDRResponse, error) {
	confirmed, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode confirmed fields: %w", err)
	}
	if err := s.repo.Confirm(recordID, confirmed); err != nil {
		return nil, err
	}
	record, err := s.repo.GetRecord(recordID)
	if err != nil {
		return nil, err
	}
	return recordToResponse(record)
}

// ExtractAPM parses APM details from a raw text block without touching
// storage.
func (s *CDRService) ExtractAPM(text string) *dto.APMResponse {
	return &dto.APMResponse{Fields: extraction.ExtractAPM(text)}
}

func recordToResponse(record *repository.CDRRecord) (*dto.CDRResponse, error) {
	var fields map[string]dto.FieldValue
	if len(record.Fields) > 0 {
		if err := json.Unmarshal(record.Fields, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode stored fields: %w", err)
		}
	}
	var confirmed map[string]dto.FieldValue
	if len(record.ConfirmedFields) > 0 {
		if err := json.Unmarshal(record.ConfirmedFields, &confirmed); err != nil {
			return nil, fmt.Errorf("failed to decode confirmed fields: %w", err)
		}
	}
	var diags dto.Diagnostics
	if len(record.Diagnostics) > 0 {
		if err := json.Unmarshal(record.Diagnostics, &diags); err != nil {
			return nil, fmt.Errorf("failed to decode stored diagnostics: %w", err)
		}
	}
	return &dto.CDRResponse{
		RecordID:        record.ID,
		FileID:          record.FileID,
		Status:          string(record.Status),
		Fields:          fields,
		ConfirmedFields: confirmed,
		Diagnostics:     diags,
		Confidence:      record.Confidence,
	}, nil
}
