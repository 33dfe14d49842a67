package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRetention      = 24 * time.Hour
	defaultReapInterval   = time.Hour
	defaultOrphanGrace    = time.Hour
	defaultMaxUploadBytes = 100 << 20 // 100MB
	defaultS3Prefix       = "lanshare/blobs"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Host             string
	Env              string
	PublicBaseURL    string
	FrontendURL      string
	CORSAllowOrigin  []string
	DataDir          string
	ObjectStoreType  string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	LedgerType       string
	SQLitePath       string
	DatabaseURL      string
	Retention        time.Duration
	ReapInterval     time.Duration
	OrphanSweep      bool
	OrphanGrace      time.Duration
	MaxUploadBytes   int64
	UploadRatePerSec float64
	UploadBurst      int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dataDir := getEnv("DATA_DIR", "./data")
	ledgerType := normalizeLedgerType(getEnv("LEDGER", "file"))
	dbURL := os.Getenv("DATABASE_URL")

	if ledgerType == "postgres" && dbURL == "" {
		log.Printf("LEDGER=postgres requires DATABASE_URL")
	}

	return Config{
		Port:             getEnv("PORT", "3000"),
		Host:             getEnv("HOST", "0.0.0.0"),
		Env:              env,
		PublicBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		DataDir:          dataDir,
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", defaultS3Prefix),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		LedgerType:       ledgerType,
		SQLitePath:       getEnv("SQLITE_PATH", filepath.Join(dataDir, "ledger.db")),
		DatabaseURL:      dbURL,
		Retention:        getDuration("RETENTION", defaultRetention),
		ReapInterval:     getDuration("REAP_INTERVAL", defaultReapInterval),
		OrphanSweep:      getBool("ORPHAN_SWEEP", true),
		OrphanGrace:      getDuration("ORPHAN_GRACE", defaultOrphanGrace),
		MaxUploadBytes:   getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		UploadRatePerSec: getFloat("UPLOAD_RATE_PER_SEC", 5),
		UploadBurst:      int(getInt64("UPLOAD_BURST", 20)),
	}
}

// Validate rejects settings the share store cannot honor.
func (c Config) Validate() error {
	if c.Retention <= 0 {
		return errors.New("RETENTION must be positive")
	}
	if c.ReapInterval <= 0 {
		return errors.New("REAP_INTERVAL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	switch c.ObjectStoreType {
	case "", "local":
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			return errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		if c.OrphanSweep && strings.Trim(strings.TrimSpace(c.S3Prefix), "/") == "" {
			return errors.New("ORPHAN_SWEEP on S3 requires a dedicated S3_PREFIX")
		}
	default:
		return fmt.Errorf("unknown OBJECT_STORE %q", c.ObjectStoreType)
	}
	switch c.LedgerType {
	case "", "file", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("LEDGER=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown LEDGER %q", c.LedgerType)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid number %q, using %g", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// normalizeStoreType lowercases the value; unknown names pass through so
// Validate can reject them.
func normalizeStoreType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeLedgerType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return strings.ToLower(strings.TrimSpace(raw))
	}
}
