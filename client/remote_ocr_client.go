package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteOCRClient calls an external OCR HTTP service. It is the fallback for
// scans the local Tesseract install reads badly.
type RemoteOCRClient struct {
	baseURL string
	client  *http.Client
}

func NewRemoteOCRClient(baseURL string, timeout time.Duration) *RemoteOCRClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteOCRClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a remote endpoint is configured at all.
func (r *RemoteOCRClient) Enabled() bool {
	return r.baseURL != ""
}

// ExtractTextFromBytes sends the document to the remote OCR service and
// returns the recognized lines joined with newlines.
func (r *RemoteOCRClient) ExtractTextFromBytes(data []byte) (string, error) {
	if !r.Enabled() {
		return "", fmt.Errorf("remote OCR is not configured")
	}

	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(data)},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := r.client.Post(r.baseURL, "application/json", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to call remote OCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("remote OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode remote OCR response: %w", err)
	}

	var textBuilder strings.Builder
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			textBuilder.WriteString(line.Text)
			textBuilder.WriteString("\n")
		}
	}

	extracted := textBuilder.String()
	if extracted == "" {
		return "", fmt.Errorf("remote OCR extracted no text")
	}
	return extracted, nil
}
