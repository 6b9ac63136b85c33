package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Import        ImportConfig
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
	Env          string `envconfig:"RENEWALS_APP_ENV" required:"true"`
	Port         string `envconfig:"RENEWALS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RENEWALS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENEWALS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RENEWALS_DB_DSN"`
	Driver string `envconfig:"RENEWALS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RENEWALS_DB_HOST"`
	LegacyPort     int    `envconfig:"RENEWALS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENEWALS_DB_USER"`
	LegacyPassword string `envconfig:"RENEWALS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENEWALS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENEWALS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENEWALS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENEWALS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENEWALS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENEWALS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENEWALS_REDIS_URL" required:"true"`
	Password     string        `envconfig:"RENEWALS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENEWALS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENEWALS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENEWALS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENEWALS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENEWALS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENEWALS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RENEWALS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RENEWALS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RENEWALS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RENEWALS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type HTTPConfig struct {
	AllowedOrigins []string `envconfig:"RENEWALS_HTTP_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"RENEWALS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"RENEWALS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"RENEWALS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RENEWALS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RENEWALS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RENEWALS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RENEWALS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RENEWALS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENEWALS_AUTO_MIGRATE" default:"false"`
	SeedOnBoot  bool `envconfig:"RENEWALS_SEED_ON_BOOT" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RENEWALS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RENEWALS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RENEWALS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"RENEWALS_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"RENEWALS_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"RENEWALS_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type ImportConfig struct {
	MaxUploadMB int `envconfig:"RENEWALS_IMPORT_MAX_UPLOAD_MB" default:"10"`
	MaxRows     int `envconfig:"RENEWALS_IMPORT_MAX_ROWS" default:"5000"`
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
