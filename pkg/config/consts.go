package config

// EnvPrefix is passed to envconfig.Process; individual fields carry the full
// variable name so the prefix stays empty here.
const EnvPrefix = ""

// App environments recognized by the helpers on AppConfig.
const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv   = "FLEETDESK_APP_ENV"
	EnvPort     = "FLEETDESK_APP_PORT"
	EnvDBDSN    = "FLEETDESK_DB_DSN"
	EnvDBHost   = "FLEETDESK_DB_HOST"
	EnvDBUser   = "FLEETDESK_DB_USER"
	EnvDBName   = "FLEETDESK_DB_NAME"
	EnvRedisURL = "FLEETDESK_REDIS_URL"

	EnvJWTSecret              = "FLEETDESK_JWT_SECRET"
	EnvJWTIssuer              = "FLEETDESK_JWT_ISSUER"
	EnvJWTExpMins             = "FLEETDESK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FLEETDESK_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID       = "FLEETDESK_GCP_PROJECT_ID"
	EnvPubSubDomainTopic  = "FLEETDESK_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub    = "FLEETDESK_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
