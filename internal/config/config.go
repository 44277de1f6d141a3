package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gazette/internal/extract"
	"gazette/internal/logger"
)

// OCR backends
const (
	BackendDocumentAI = "documentai"
	BackendVision     = "vision"
	BackendTesseract  = "tesseract"
)

type Config struct {
	// OCR Configuration
	OCREnabled       bool
	OCRBackend       string
	OCRTimeout       time.Duration
	OCRRateEvery     time.Duration
	OCRRateBurst     int
	OCRMaxConcurrent int
	TesseractLang    string
	TesseractDPI     float64

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Batch Configuration
	BatchWorkers int

	// Region of interest and line merging
	ROIFirstPage      extract.Region
	ROIOtherPages     extract.Region
	SameLineTolerance float64
	LineHeightFactor  float64
	LineHeightBucket  float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Option overrides a loaded value before validation, typically from a
// command-line flag.
type Option func(*Config)

// WithOCREnabled overrides OCR_ENABLED.
func WithOCREnabled(enabled bool) Option {
	return func(c *Config) { c.OCREnabled = enabled }
}

// WithBackend overrides OCR_BACKEND. An empty name keeps the loaded value.
func WithBackend(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.OCRBackend = strings.ToLower(name)
		}
	}
}

// WithBatchWorkers overrides BATCH_WORKERS. Zero keeps the loaded value.
func WithBatchWorkers(n int) Option {
	return func(c *Config) {
		if n != 0 {
			c.BatchWorkers = n
		}
	}
}

// WithWorksheet overrides GOOGLE_SHEET_WORKSHEET. An empty name keeps the
// loaded value.
func WithWorksheet(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.GoogleSheetWorksheet = name
		}
	}
}

func Load(opts ...Option) (*Config, error) {
	layout := extract.DefaultLayout()

	config := &Config{
		OCREnabled:                 getEnvBool("OCR_ENABLED", true),
		OCRBackend:                 strings.ToLower(getEnv("OCR_BACKEND", BackendDocumentAI)),
		OCRTimeout:                 getEnvDuration("OCR_TIMEOUT", 120*time.Second),
		OCRRateEvery:               getEnvDuration("OCR_RATE_EVERY", 500*time.Millisecond),
		OCRRateBurst:               getEnvInt("OCR_RATE_BURST", 5),
		OCRMaxConcurrent:           getEnvInt("OCR_MAX_CONCURRENT", 4),
		TesseractLang:              getEnv("TESSERACT_LANG", "nld+fra"),
		TesseractDPI:               getEnvFloat("TESSERACT_DPI", 300),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "eu"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Extractions"),
		BatchWorkers:               getEnvInt("BATCH_WORKERS", 8),
		SameLineTolerance:          getEnvFloat("SAME_LINE_TOLERANCE", layout.SameLineTolerance),
		LineHeightFactor:           getEnvFloat("LINE_HEIGHT_FACTOR", layout.LineHeightFactor),
		LineHeightBucket:           getEnvFloat("LINE_HEIGHT_BUCKET", layout.HeightBucket),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.ROIFirstPage, err = getEnvRegion("ROI_PAGE0", layout.FirstPage); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.ROIOtherPages, err = getEnvRegion("ROI_PAGEN", layout.OtherPages); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if err := c.GetLayout().Validate(); err != nil {
		return err
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive")
	}
	if !c.OCREnabled {
		return nil
	}
	// Backend credentials and processor settings are checked when the client
	// is created on the first scanned page.
	switch c.OCRBackend {
	case BackendDocumentAI, BackendVision, BackendTesseract:
	default:
		return fmt.Errorf("OCR_BACKEND must be one of %s, %s, %s; got %q",
			BackendDocumentAI, BackendVision, BackendTesseract, c.OCRBackend)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetLayout returns the extraction layout from the main config
func (c *Config) GetLayout() extract.Layout {
	return extract.Layout{
		FirstPage:         c.ROIFirstPage,
		OtherPages:        c.ROIOtherPages,
		SameLineTolerance: c.SameLineTolerance,
		LineHeightFactor:  c.LineHeightFactor,
		HeightBucket:      c.LineHeightBucket,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f < 0 {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// getEnvRegion parses "left,top,right,bottom" fractions.
func getEnvRegion(key string, defaultValue extract.Region) (extract.Region, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return extract.Region{}, fmt.Errorf("%s must be left,top,right,bottom; got %q", key, value)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return extract.Region{}, fmt.Errorf("%s: %w", key, err)
		}
		v[i] = f
	}
	return extract.Region{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
}
