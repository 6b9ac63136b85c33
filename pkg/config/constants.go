package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified env tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "RENEWALS_APP_ENV"
	EnvPort                   = "RENEWALS_APP_PORT"
	EnvDBDSN                  = "RENEWALS_DB_DSN"
	EnvDBHost                 = "RENEWALS_DB_HOST"
	EnvDBUser                 = "RENEWALS_DB_USER"
	EnvDBName                 = "RENEWALS_DB_NAME"
	EnvRedisURL               = "RENEWALS_REDIS_URL"
	EnvJWTSecret              = "RENEWALS_JWT_SECRET"
	EnvJWTIssuer              = "RENEWALS_JWT_ISSUER"
	EnvJWTExpMins             = "RENEWALS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "RENEWALS_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCSBucket              = "RENEWALS_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry        = "RENEWALS_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry      = "RENEWALS_GCS_DOWNLOAD_URL_EXPIRY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
