package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Datastore DatastoreConfig
	GCP       GCPConfig
	Stripe    StripeConfig
	Webhook   WebhookConfig
	PubSub    PubSubConfig
	JWT       JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Datastore.validate(); err != nil {
		return nil, err
	}
	switch cfg.Datastore.Kind() {
	case DatastorePostgres:
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	case DatastoreFirestore:
		if strings.TrimSpace(cfg.GCP.ProjectID) == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvDatastoreBackend, DatastoreFirestore)
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STUDIO_APP_ENV" required:"true"`
	Port         string `envconfig:"STUDIO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STUDIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STUDIO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"STUDIO_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STUDIO_DB_DSN"`

	Host     string `envconfig:"STUDIO_DB_HOST"`
	Port     int    `envconfig:"STUDIO_DB_PORT" default:"5432"`
	User     string `envconfig:"STUDIO_DB_USER"`
	Password string `envconfig:"STUDIO_DB_PASSWORD"`
	Name     string `envconfig:"STUDIO_DB_NAME"`
	SSLMode  string `envconfig:"STUDIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STUDIO_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STUDIO_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STUDIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STUDIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; an empty URL and address disables the processed-event guard.
type RedisConfig struct {
	URL          string        `envconfig:"STUDIO_REDIS_URL"`
	Address      string        `envconfig:"STUDIO_REDIS_ADDR"`
	Password     string        `envconfig:"STUDIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"STUDIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STUDIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STUDIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STUDIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STUDIO_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STUDIO_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type DatastoreConfig struct {
	Backend           string `envconfig:"STUDIO_DATASTORE_BACKEND" default:"postgres"`
	FirestoreDatabase string `envconfig:"STUDIO_FIRESTORE_DATABASE" default:"(default)"`
}

// Kind returns the normalized backend name.
func (d DatastoreConfig) Kind() string {
	kind := strings.ToLower(strings.TrimSpace(d.Backend))
	if kind == "" {
		return DatastorePostgres
	}
	return kind
}

func (d DatastoreConfig) validate() error {
	switch d.Kind() {
	case DatastorePostgres, DatastoreFirestore:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDatastoreBackend, DatastorePostgres, DatastoreFirestore, d.Backend)
	}
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STUDIO_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"STUDIO_GCP_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"STUDIO_GOOGLE_APPLICATION_CREDENTIALS"`
}

// StripeConfig carries the payment provider secrets. An empty APIKey disables
// payments; an empty Secret makes every webhook delivery a client error.
type StripeConfig struct {
	APIKey string `envconfig:"STUDIO_STRIPE_API_KEY"`
	Secret string `envconfig:"STUDIO_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"STUDIO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// PaymentsEnabled reports whether an API key is configured.
func (s StripeConfig) PaymentsEnabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type WebhookConfig struct {
	EventTTL           time.Duration `envconfig:"STUDIO_WEBHOOK_EVENT_TTL" default:"72h"`
	SignatureTolerance time.Duration `envconfig:"STUDIO_WEBHOOK_SIGNATURE_TOLERANCE" default:"5m"`
	MaxBodyBytes       int64         `envconfig:"STUDIO_WEBHOOK_MAX_BODY_BYTES" default:"1048576"`
	Scope              string        `envconfig:"STUDIO_WEBHOOK_SCOPE" default:"stripe-webhook"`
}

type PubSubConfig struct {
	PurchasesTopic string `envconfig:"STUDIO_PUBSUB_PURCHASES_TOPIC"`
}

// JWTConfig guards the admin read surface. An empty secret disables those routes.
type JWTConfig struct {
	Secret string `envconfig:"STUDIO_JWT_SECRET"`
	Issuer string `envconfig:"STUDIO_JWT_ISSUER" default:"studio"`
}

// Enabled reports whether admin tokens can be verified.
func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
