package client

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
)

type TesseractClient struct {
	dataPath  string
	languages string
}

func NewTesseractClient(dataPath, languages string) *TesseractClient {
	if languages == "" {
		languages = "eng"
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
	}
}

// ExtractText runs Tesseract over raw image content, staging it in a
// temporary file. The filename supplies the extension so Tesseract picks the
// right decoder.
func (tc *TesseractClient) ExtractText(content io.Reader, filename string) (string, float64, error) {
	tempFile, err := tc.CreateTempFile(content, filename)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	return tc.ExtractTextAndQuality(tempFile)
}

// CreateTempFile stages image content in a temporary file, preserving the
// original extension. The caller removes the file when done.
func (tc *TesseractClient) CreateTempFile(content io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "ocr-*"+ext)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, content); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	return tempFile.Name(), nil
}

// ExtractTextAndQuality runs Tesseract on an image file and returns the
// recognized text together with the mean word confidence (0-100).
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.languages); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// bounding boxes are best-effort; the text itself is still usable
		return text, 0, nil
	}

	var totalConf float64
	var count int
	for _, box := range boxes {
		totalConf += box.Confidence
		count++
	}

	avgConf := 0.0
	if count > 0 {
		avgConf = totalConf / float64(count)
	}
	return text, avgConf, nil
}
