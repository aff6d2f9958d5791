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
	Drafts       DraftsConfig
	Leasing      LeasingConfig
	Sessions     SessionsConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Drafts.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONFIGURATOR_APP_ENV" required:"true"`
	Port         string `envconfig:"CONFIGURATOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CONFIGURATOR_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CONFIGURATOR_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CONFIGURATOR_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"CONFIGURATOR_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"CONFIGURATOR_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CONFIGURATOR_DB_DSN"`

	LegacyHost     string `envconfig:"CONFIGURATOR_DB_HOST"`
	LegacyPort     int    `envconfig:"CONFIGURATOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CONFIGURATOR_DB_USER"`
	LegacyPassword string `envconfig:"CONFIGURATOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"CONFIGURATOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"CONFIGURATOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CONFIGURATOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CONFIGURATOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONFIGURATOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONFIGURATOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CONFIGURATOR_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CONFIGURATOR_REDIS_URL"`
	Address      string        `envconfig:"CONFIGURATOR_REDIS_ADDR"`
	Password     string        `envconfig:"CONFIGURATOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONFIGURATOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONFIGURATOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONFIGURATOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONFIGURATOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONFIGURATOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONFIGURATOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// DraftsConfig selects the backing store for saved configuration drafts.
type DraftsConfig struct {
	Driver string `envconfig:"CONFIGURATOR_DRAFTS_DRIVER" default:"redis"`
}

// NormalizedDriver returns the lower-cased driver name.
func (d DraftsConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(d.Driver))
}

func (d DraftsConfig) validate() error {
	switch d.NormalizedDriver() {
	case DraftsDriverRedis, DraftsDriverPostgres, DraftsDriverMemory:
		return nil
	}
	return fmt.Errorf("%s must be one of %s, %s, %s", EnvDraftsDriver, DraftsDriverRedis, DraftsDriverPostgres, DraftsDriverMemory)
}

type LeasingConfig struct {
	DefaultTermMonths int `envconfig:"CONFIGURATOR_LEASING_DEFAULT_TERM_MONTHS" default:"36"`
}

// SessionsConfig bounds how long idle configuration sessions stay in memory.
type SessionsConfig struct {
	IdleTimeout     time.Duration `envconfig:"CONFIGURATOR_SESSIONS_IDLE_TIMEOUT" default:"30m"`
	JanitorInterval time.Duration `envconfig:"CONFIGURATOR_SESSIONS_JANITOR_INTERVAL" default:"1m"`
}

type VerificationConfig struct {
	CodeLength          int           `envconfig:"CONFIGURATOR_VERIFICATION_CODE_LENGTH" default:"6"`
	CodeTTL             time.Duration `envconfig:"CONFIGURATOR_VERIFICATION_CODE_TTL" default:"15m"`
	PollInitialInterval time.Duration `envconfig:"CONFIGURATOR_VERIFICATION_POLL_INITIAL" default:"1s"`
	PollMaxInterval     time.Duration `envconfig:"CONFIGURATOR_VERIFICATION_POLL_MAX" default:"10s"`
	PollTimeout         time.Duration `envconfig:"CONFIGURATOR_VERIFICATION_POLL_TIMEOUT" default:"2m"`
	MaxAttempts         int           `envconfig:"CONFIGURATOR_VERIFICATION_MAX_ATTEMPTS" default:"5"`
	IssueLimit          int64         `envconfig:"CONFIGURATOR_VERIFICATION_ISSUE_LIMIT" default:"5"`
	IssueWindow         time.Duration `envconfig:"CONFIGURATOR_VERIFICATION_ISSUE_WINDOW" default:"1h"`
}

// RateLimitConfig throttles the customer endpoints per client IP and per email.
type RateLimitConfig struct {
	Window     time.Duration `envconfig:"CONFIGURATOR_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit    int           `envconfig:"CONFIGURATOR_RATE_LIMIT_IP" default:"30"`
	EmailLimit int           `envconfig:"CONFIGURATOR_RATE_LIMIT_EMAIL" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CONFIGURATOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CONFIGURATOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CONFIGURATOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CONFIGURATOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CONFIGURATOR_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CONFIGURATOR_AUTO_MIGRATE" default:"false"`
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
