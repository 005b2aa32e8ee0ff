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
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"RIDERS_APP_ENV" required:"true"`
	Port         string `envconfig:"RIDERS_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"RIDERS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"RIDERS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"RIDERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RIDERS_DB_DSN"`
	Driver string `envconfig:"RIDERS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RIDERS_DB_HOST"`
	Port     int    `envconfig:"RIDERS_DB_PORT" default:"5432"`
	User     string `envconfig:"RIDERS_DB_USER"`
	Password string `envconfig:"RIDERS_DB_PASSWORD"`
	Name     string `envconfig:"RIDERS_DB_NAME"`
	SSLMode  string `envconfig:"RIDERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RIDERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RIDERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RIDERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RIDERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"RIDERS_DB_SLOW_QUERY" default:"250ms"`
}

// IsSQLite reports whether the database is backed by a local sqlite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"RIDERS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RIDERS_REDIS_ADDR"`
	Password     string        `envconfig:"RIDERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RIDERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RIDERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RIDERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RIDERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RIDERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RIDERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RIDERS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RIDERS_JWT_ISSUER" default:"riderschoice"`
	ExpirationMinutes int    `envconfig:"RIDERS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the lifetime of an issued access token.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RIDERS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RIDERS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RIDERS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RIDERS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RIDERS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RIDERS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RIDERS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RIDERS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RIDERS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RIDERS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RIDERS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RIDERS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:4200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RIDERS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"RIDERS_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"RIDERS_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic  string `envconfig:"RIDERS_PUBSUB_ORDERS_TOPIC" default:"riders-order-events"`
	CatalogTopic string `envconfig:"RIDERS_PUBSUB_CATALOG_TOPIC" default:"riders-catalog-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RIDERS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RIDERS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RIDERS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
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
