package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TOKOPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"TOKOPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TOKOPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOKOPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TOKOPOS_DB_DSN"`
	Driver string `envconfig:"TOKOPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TOKOPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"TOKOPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TOKOPOS_DB_USER"`
	LegacyPassword string `envconfig:"TOKOPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TOKOPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TOKOPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TOKOPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TOKOPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TOKOPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOKOPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOKOPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOKOPOS_REDIS_ADDR"`
	Password     string        `envconfig:"TOKOPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOKOPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOKOPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOKOPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOKOPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOKOPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOKOPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TOKOPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TOKOPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TOKOPOS_JWT_EXPIRATION_MINUTES" required:"true"`
}

// GatewayConfig points at the external payment gateway's session API.
type GatewayConfig struct {
	BaseURL    string        `envconfig:"TOKOPOS_GATEWAY_BASE_URL" required:"true"`
	ServerKey  string        `envconfig:"TOKOPOS_GATEWAY_SERVER_KEY" required:"true"`
	Timeout    time.Duration `envconfig:"TOKOPOS_GATEWAY_TIMEOUT" default:"10s"`
	SessionTTL time.Duration `envconfig:"TOKOPOS_GATEWAY_SESSION_TTL" default:"24h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TOKOPOS_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"TOKOPOS_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TOKOPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TOKOPOS_AUTO_MIGRATE" default:"false"`
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
