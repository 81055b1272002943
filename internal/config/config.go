// Package config loads application settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Extract  ExtractConfig
	Output   OutputConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the optional Postgres output settings. Records are
// only written to Postgres when URL is set.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Table receives upserted records (default: extracted_records)
	Table string `env:"DB_RECORDS_TABLE" default:"extracted_records"`

	// EnsureSchema creates Table on startup when missing
	EnsureSchema bool `env:"DB_ENSURE_SCHEMA" default:"true"`
}

// ExtractConfig holds extraction defaults and limits.
type ExtractConfig struct {
	// Layout is the registered layout key used when none is given
	Layout string `env:"EXTRACT_LAYOUT" default:"tepco-trunk"`

	// LayoutFile loads an extra YAML layout and registers it at startup
	LayoutFile string `env:"EXTRACT_LAYOUT_FILE"`

	// Pages overrides the layout's page selection ("7-9", "1,3")
	Pages string `env:"EXTRACT_PAGES"`

	// TableArea overrides the layout's clipping rectangle ("l,t,r,b")
	TableArea string `env:"EXTRACT_TABLE_AREA"`

	// CSVEncoding names the character set of CSV input (default: UTF-8)
	CSVEncoding string `env:"EXTRACT_CSV_ENCODING"`

	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix (default: 32MB)
	MaxFileSize int64 `env:"EXTRACT_MAX_FILE_SIZE" default:"32MB" unit:"bytes"`

	MaxConcurrent int           `env:"EXTRACT_MAX_CONCURRENT" default:"2"`
	MaxWaitTime   time.Duration `env:"EXTRACT_MAX_WAIT_TIME" default:"30s"`
	Timeout       time.Duration `env:"EXTRACT_TIMEOUT" default:"5m"`

	// AllowPartial writes outputs even when the source failed part way
	AllowPartial bool `env:"EXTRACT_ALLOW_PARTIAL" default:"false"`

	// PreviewRows is how many records the HTML preview shows
	PreviewRows int `env:"EXTRACT_PREVIEW_ROWS" default:"25"`
}

// OutputConfig selects where the server writes each result besides the
// HTTP response. Every destination is optional.
type OutputConfig struct {
	// JSONPath and XLSXPath may contain {layout} and {run_id}
	JSONPath string `env:"OUTPUT_JSON"`
	XLSXPath string `env:"OUTPUT_XLSX"`

	GCSBucket   string `env:"OUTPUT_GCS_BUCKET"`
	GCSObject   string `env:"OUTPUT_GCS_OBJECT" default:"linecap/{layout}/{run_id}.json"`
	GCSIfAbsent bool   `env:"OUTPUT_GCS_IF_ABSENT" default:"false"`

	FirestoreProject    string `env:"OUTPUT_FIRESTORE_PROJECT" envAlt:"GOOGLE_CLOUD_PROJECT"`
	FirestoreCollection string `env:"OUTPUT_FIRESTORE_COLLECTION"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabase reports whether Postgres output is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasFirestore reports whether Firestore output is configured.
func (c *Config) HasFirestore() bool { return c.Output.FirestoreCollection != "" }
