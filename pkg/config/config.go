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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Catalog       CatalogConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
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
	Env          string `envconfig:"DRONEMART_APP_ENV" required:"true"`
	Port         string `envconfig:"DRONEMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DRONEMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DRONEMART_LOG_WARN_STACK" default:"false"`
	// CORSOrigins extends the local dev origins, comma separated.
	CORSOrigins []string `envconfig:"DRONEMART_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DRONEMART_DB_DSN"`
	Driver string `envconfig:"DRONEMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DRONEMART_DB_HOST"`
	LegacyPort     int    `envconfig:"DRONEMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DRONEMART_DB_USER"`
	LegacyPassword string `envconfig:"DRONEMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"DRONEMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"DRONEMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DRONEMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DRONEMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DRONEMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DRONEMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Statements slower than this are logged at warn. Zero disables it.
	SlowQuery time.Duration `envconfig:"DRONEMART_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"DRONEMART_REDIS_URL"`
	Address      string        `envconfig:"DRONEMART_REDIS_ADDR"`
	Password     string        `envconfig:"DRONEMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"DRONEMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DRONEMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DRONEMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DRONEMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DRONEMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DRONEMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DRONEMART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DRONEMART_JWT_ISSUER" default:"dronemart"`
	ExpirationMinutes      int    `envconfig:"DRONEMART_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"DRONEMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DRONEMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DRONEMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DRONEMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DRONEMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DRONEMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DRONEMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DRONEMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DRONEMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DRONEMART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DRONEMART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DRONEMART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DRONEMART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DRONEMART_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DRONEMART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DRONEMART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"DRONEMART_GCS_BUCKET_NAME"`
	DownloadURLExpiry time.Duration `envconfig:"DRONEMART_GCS_DOWNLOAD_URL_EXPIRY" default:"15m"`
}

type CatalogConfig struct {
	CacheTTL            time.Duration `envconfig:"DRONEMART_CATALOG_CACHE_TTL" default:"5m"`
	RecommendationLimit int           `envconfig:"DRONEMART_CATALOG_RECOMMENDATION_LIMIT" default:"3"`
}

// CartConfig bounds how long an untouched cart slot survives in Redis. Zero
// keeps slots forever.
type CartConfig struct {
	TTL time.Duration `envconfig:"DRONEMART_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	Atomic bool `envconfig:"DRONEMART_CHECKOUT_ATOMIC" default:"false"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"DRONEMART_PUBSUB_ORDERS_TOPIC"`
	OrdersSubscription string `envconfig:"DRONEMART_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"DRONEMART_BIGQUERY_DATASET" default:"dronemart"`
	OrderEventsTable string `envconfig:"DRONEMART_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
