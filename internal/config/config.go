package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	RegionModeUniform = "uniform"
	RegionModeQuota   = "quota"

	CountSourceCatalog    = "catalog"
	CountSourceCollection = "collection"
)

type Config struct {
	Env string

	// Collection
	CollectionPath string
	BackupPath     string
	QuotaProfile   string
	DryRun         bool

	// Generation
	Seed        int64
	RegionMode  string // "uniform" | "quota"
	CountSource string // "catalog" | "collection"

	// Database (run ledger)
	LedgerEnabled bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	// Redis (run lock)
	LockEnabled   bool
	LockTTL       time.Duration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Backup S3 - offsite copy of the pre-run collection
	BackupS3Endpoint        string
	BackupS3Region          string
	BackupS3AccessKeyID     string
	BackupS3SecretAccessKey string
	BackupS3UsePathStyle    bool
	BackupBucket            string
	BackupPrefix            string
}

func New() *Config {
	collectionPath := getEnv("COLLECTION_PATH", filepath.Join("public", "images.json"))

	return &Config{
		Env: getEnv("ENV", "development"),

		// Collection
		CollectionPath: collectionPath,
		BackupPath:     getEnv("BACKUP_PATH", DefaultBackupPath(collectionPath)),
		QuotaProfile:   getEnv("QUOTA_PROFILE", ""),
		DryRun:         getEnvAsBool("DRY_RUN", false),

		// Generation
		Seed:        getEnvAsInt64("SEED", 0),
		RegionMode:  getEnv("REGION_MODE", RegionModeUniform),
		CountSource: getEnv("COUNT_SOURCE", CountSourceCatalog),

		// Database
		LedgerEnabled: getEnvAsBool("LEDGER_ENABLED", false),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5433"),
		DBUser:        getEnv("DB_USER", "synesthesie"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "synesthesie_db"),
		DBSSLMode:     getEnv("DB_SSL_MODE", "disable"),

		// Redis
		LockEnabled:   getEnvAsBool("LOCK_ENABLED", false),
		LockTTL:       getEnvAsDuration("LOCK_TTL", "5m"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Backup S3
		BackupS3Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		BackupS3Region:          getEnv("BACKUP_S3_REGION", "us-east-1"),
		BackupS3AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		BackupS3SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		BackupS3UsePathStyle:    getEnvAsBool("BACKUP_S3_USE_PATH_STYLE", true),
		BackupBucket:            getEnv("BACKUP_BUCKET", ""),
		BackupPrefix:            getEnv("BACKUP_PREFIX", "collections"),
	}
}

// DefaultBackupPath places the untouched copy next to the collection, e.g.
// public/images.json -> public/images_original.json.
func DefaultBackupPath(collectionPath string) string {
	ext := filepath.Ext(collectionPath)
	base := strings.TrimSuffix(collectionPath, ext)
	if ext == "" {
		ext = ".json"
	}
	return base + "_original" + ext
}

// Validate rejects unknown mode strings. Everything else has a usable default.
func (c *Config) Validate() error {
	switch c.RegionMode {
	case RegionModeUniform, RegionModeQuota:
	default:
		return &InvalidValueError{Key: "REGION_MODE", Value: c.RegionMode}
	}
	switch c.CountSource {
	case CountSourceCatalog, CountSourceCollection:
	default:
		return &InvalidValueError{Key: "COUNT_SOURCE", Value: c.CountSource}
	}
	if strings.TrimSpace(c.CollectionPath) == "" {
		return &InvalidValueError{Key: "COLLECTION_PATH", Value: c.CollectionPath}
	}
	return nil
}

type InvalidValueError struct {
	Key   string
	Value string
}

func (e *InvalidValueError) Error() string {
	return "invalid value for " + e.Key + ": " + strconv.Quote(e.Value)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Minute
}
