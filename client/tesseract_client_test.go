package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempFileKeepsExtension(t *testing.T) {
	tc := NewTesseractClient("", "eng")

	path, err := tc.CreateTempFile(strings.NewReader("fake image bytes"), "scan.png")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestNewTesseractClientDefaultsLanguage(t *testing.T) {
	tc := NewTesseractClient("/usr/share/tessdata", "")
	assert.Equal(t, "eng", tc.languages)
}
