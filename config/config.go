package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration, loaded once at startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxFileSize int64  `mapstructure:"max_file_size"` // bytes
}

type StorageConfig struct {
	Path string `mapstructure:"path"` // local upload directory
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // sqlite file path
}

// OCRConfig configures the text extraction backends. Tesseract runs locally;
// the remote endpoint is an optional fallback for scans tesseract handles badly.
type OCRConfig struct {
	TesseractDataPath string        `mapstructure:"tesseract_data_path"`
	Languages         string        `mapstructure:"languages"`
	RemoteURL         string        `mapstructure:"remote_url"`
	RemoteTimeout     time.Duration `mapstructure:"remote_timeout"`
}

// EngineConfig tunes the field extraction engine. The heading catalog file
// carries its own match threshold, so only the per-field review knobs live
// here.
type EngineConfig struct {
	CatalogPath   string  `mapstructure:"catalog_path"` // empty means built-in catalog
	DateOrder     string  `mapstructure:"date_order"`   // dmy or mdy
	LowConfidence float64 `mapstructure:"low_confidence"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the given file, falling back to defaults when
// the file is absent. Environment variables override file values, with dots
// replaced by underscores (SERVER_PORT, OCR_REMOTE_URL, ...).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_file_size", 10*1024*1024)

	v.SetDefault("storage.path", "./uploads")

	v.SetDefault("database.dsn", "data/cdr.db")

	v.SetDefault("ocr.tesseract_data_path", "/usr/share/tesseract-ocr/4.00/tessdata")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.remote_url", "")
	v.SetDefault("ocr.remote_timeout", "30s")

	v.SetDefault("engine.catalog_path", "")
	v.SetDefault("engine.date_order", "dmy")
	v.SetDefault("engine.low_confidence", 0.6)
}
