package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LOGI"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "LOGI_APP_ENV"
	EnvPort     = "LOGI_APP_PORT"
	EnvDBDSN    = "LOGI_DB_DSN"
	EnvDBHost   = "LOGI_DB_HOST"
	EnvDBUser   = "LOGI_DB_USER"
	EnvDBName   = "LOGI_DB_NAME"
	EnvRedisURL = "LOGI_REDIS_URL"

	EnvJWTSecret  = "LOGI_JWT_SECRET"
	EnvJWTIssuer  = "LOGI_JWT_ISSUER"
	EnvJWTExpMins = "LOGI_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID       = "LOGI_GCP_PROJECT_ID"
	EnvGCSBucket          = "LOGI_GCS_BUCKET_NAME"
	EnvPubSubStorageSub   = "LOGI_PUBSUB_STORAGE_SUBSCRIPTION"
	EnvBigQueryDataset    = "LOGI_BIGQUERY_DATASET"
	EnvRetentionWorkflow  = "LOGI_RETENTION_WORKFLOW_DAYS"
	EnvRetentionDocuments = "LOGI_RETENTION_DOCUMENT_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Upload       UploadConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Retention    RetentionConfig
	Cleanup      CleanupConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOGI_APP_ENV" required:"true"`
	Port         string `envconfig:"LOGI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOGI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOGI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOGI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOGI_DB_DSN"`
	Driver string `envconfig:"LOGI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOGI_DB_HOST"`
	LegacyPort     int    `envconfig:"LOGI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOGI_DB_USER"`
	LegacyPassword string `envconfig:"LOGI_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOGI_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOGI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOGI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOGI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOGI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOGI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOGI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOGI_REDIS_ADDR"`
	Password     string        `envconfig:"LOGI_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOGI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOGI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOGI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOGI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOGI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOGI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies bearer tokens minted by the external identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"LOGI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOGI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOGI_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOGI_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOGI_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LOGI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOGI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"LOGI_GCS_BUCKET_NAME" required:"true"`
}

type UploadConfig struct {
	MaxFileBytes int64 `envconfig:"LOGI_UPLOAD_MAX_FILE_BYTES" default:"5242880"`
	MaxFiles     int   `envconfig:"LOGI_UPLOAD_MAX_FILES" default:"5"`
}

type PubSubConfig struct {
	// StorageSubscription receives GCS object notifications (OBJECT_DELETE).
	StorageSubscription string `envconfig:"LOGI_PUBSUB_STORAGE_SUBSCRIPTION" required:"true"`
	StorageTopic        string `envconfig:"LOGI_PUBSUB_STORAGE_TOPIC"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"LOGI_BIGQUERY_DATASET" default:"logi_backoffice"`
	CleanupReportsTable string `envconfig:"LOGI_BIGQUERY_CLEANUP_REPORTS_TABLE" default:"cleanup_reports"`
}

// RetentionConfig carries the deletion horizons applied when a job reaches
// payment-received. The day counts are business policy, not derived.
type RetentionConfig struct {
	WorkflowDays int `envconfig:"LOGI_RETENTION_WORKFLOW_DAYS" default:"30"`
	DocumentDays int `envconfig:"LOGI_RETENTION_DOCUMENT_DAYS" default:"90"`
}

type CleanupConfig struct {
	Interval     time.Duration `envconfig:"LOGI_CLEANUP_INTERVAL" default:"24h"`
	OrphanPrefix string        `envconfig:"LOGI_CLEANUP_ORPHAN_PREFIX" default:"jobs/"`
	ExpiryBatch  int           `envconfig:"LOGI_CLEANUP_EXPIRY_BATCH" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
