package config

const EnvPrefix = "STUDIO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DatastorePostgres  = "postgres"
	DatastoreFirestore = "firestore"
)

const (
	EnvAppEnv           = "STUDIO_APP_ENV"
	EnvPort             = "STUDIO_APP_PORT"
	EnvLogLevel         = "STUDIO_LOG_LEVEL"
	EnvDBDSN            = "STUDIO_DB_DSN"
	EnvDBHost           = "STUDIO_DB_HOST"
	EnvDBUser           = "STUDIO_DB_USER"
	EnvDBName           = "STUDIO_DB_NAME"
	EnvDBPassword       = "STUDIO_DB_PASSWORD"
	EnvRedisURL         = "STUDIO_REDIS_URL"
	EnvDatastoreBackend = "STUDIO_DATASTORE_BACKEND"
	EnvGCPProjectID     = "STUDIO_GCP_PROJECT_ID"
	EnvStripeAPIKey     = "STUDIO_STRIPE_API_KEY"
	EnvStripeSecret     = "STUDIO_STRIPE_WEBHOOK_SECRET"
	EnvStripeEnv        = "STUDIO_STRIPE_ENV"
	EnvWebhookEventTTL  = "STUDIO_WEBHOOK_EVENT_TTL"
	EnvPubSubPurchases  = "STUDIO_PUBSUB_PURCHASES_TOPIC"
	EnvJWTSecret        = "STUDIO_JWT_SECRET"
	EnvJWTIssuer        = "STUDIO_JWT_ISSUER"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
