package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Vocab    VocabConfig
	Export   ExportConfig
	Ingest   IngestConfig
	Auth     AuthConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	PdftoppmBin  string
	TesseractBin string
	Lang         string
	DPI          int
	MaxPages     int
}

// VocabConfig holds the annex-vocabulary store configuration
type VocabConfig struct {
	SQLitePath string // empty -> in-memory only
}

// ExportConfig holds spreadsheet-export configuration
type ExportConfig struct {
	TemplatePath string
}

// IngestConfig holds upload/folder configuration
type IngestConfig struct {
	OutputRoot string
	SpoolDir   string
}

// AuthConfig holds credential-file configuration
type AuthConfig struct {
	UsersFile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  int64(getEnvAsInt("HTTP_MAX_UPLOAD_MB", 64)) << 20,
		},
		OCR: OCRConfig{
			PdftoppmBin:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),
			Lang:         getEnv("TESSERACT_LANG", "spa"),
			DPI:          getEnvAsInt("OCR_DPI", 300),
			MaxPages:     getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Vocab: VocabConfig{
			SQLitePath: getEnv("VOCAB_DB_PATH", "./data/anexos.db"),
		},
		Export: ExportConfig{
			TemplatePath: getEnv("CEDULA_TEMPLATE_PATH", "./plantillas/cedula.xlsx"),
		},
		Ingest: IngestConfig{
			OutputRoot: getEnv("OUTPUT_ROOT", "./output"),
			SpoolDir:   getEnv("SPOOL_DIR", "./tmp"),
		},
		Auth: AuthConfig{
			UsersFile: getEnv("USERS_FILE", "./data/usuarios.json"),
		},
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
