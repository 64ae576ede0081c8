package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	InputDir   string
	OutputPath string
	Catalog    string // vendor catalog JSON path, "" = embedded default

	OCR   OCRConfig
	Batch BatchConfig

	LogLevel slog.Level
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Enabled     bool
	DPI         int
	PopplerDir  string // directory with pdftotext/pdftoppm, "" = $PATH
	Tesseract   string
	PageSleep   time.Duration
	TessdataDir string
}

// BatchConfig holds driver pacing configuration
type BatchConfig struct {
	ChildTimeout  time.Duration
	ThrottleEvery int
	ThrottleSleep time.Duration
}

// LoadConfig loads defaults from environment variables; flags override them.
func LoadConfig() *Config {
	return &Config{
		Catalog: getEnv("FACTURAS_CATALOG", ""),
		OCR: OCRConfig{
			Enabled:     getEnvAsBool("FACTURAS_OCR", true),
			DPI:         getEnvAsInt("FACTURAS_DPI", 150),
			PopplerDir:  getEnv("FACTURAS_POPPLER", ""),
			Tesseract:   getEnv("FACTURAS_TESSERACT", "tesseract"),
			PageSleep:   getEnvAsDuration("FACTURAS_PAGE_SLEEP", 0),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Batch: BatchConfig{
			ChildTimeout:  getEnvAsDuration("FACTURAS_CHILD_TIMEOUT", 60*time.Second),
			ThrottleEvery: getEnvAsInt("FACTURAS_THROTTLE_EVERY", 6),
			ThrottleSleep: getEnvAsDuration("FACTURAS_THROTTLE_SLEEP", 800*time.Millisecond),
		},
		LogLevel: ParseLogLevel(getEnv("FACTURAS_LOG", "info")),
	}
}

// Clamp enforces the operational floors: rendering below 72 DPI produces
// unreadable rasters and a child timeout under 30s kills healthy OCR runs.
func (c *Config) Clamp() {
	if c.OCR.DPI < 72 {
		c.OCR.DPI = 72
	}
	if c.Batch.ChildTimeout < 30*time.Second {
		c.Batch.ChildTimeout = 30 * time.Second
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return NewAppError("CONFIG_ERROR", "input directory is required", ErrInvalidInput)
	}
	st, err := os.Stat(c.InputDir)
	if err != nil || !st.IsDir() {
		return NewAppError("CONFIG_ERROR", "input is not a readable directory: "+c.InputDir, ErrInvalidInput)
	}
	return nil
}

// ParseLogLevel maps a flag value onto a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
