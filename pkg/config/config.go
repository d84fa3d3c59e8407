package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GRANDUER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GRANDUER_DB_DSN"
	EnvDBHost = "GRANDUER_DB_HOST"
	EnvDBUser = "GRANDUER_DB_USER"
	EnvDBName = "GRANDUER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Flutterwave FlutterwaveConfig
	Checkout    CheckoutConfig
	JWT         JWTConfig
	Password    PasswordConfig
	SMTP        SMTPConfig
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
	Env          string `envconfig:"GRANDUER_APP_ENV" required:"true"`
	Port         string `envconfig:"GRANDUER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GRANDUER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRANDUER_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"GRANDUER_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GRANDUER_DB_DSN"`
	Driver string `envconfig:"GRANDUER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRANDUER_DB_HOST"`
	LegacyPort     int    `envconfig:"GRANDUER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRANDUER_DB_USER"`
	LegacyPassword string `envconfig:"GRANDUER_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRANDUER_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRANDUER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GRANDUER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRANDUER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRANDUER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRANDUER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRANDUER_REDIS_URL"`
	Address      string        `envconfig:"GRANDUER_REDIS_ADDR"`
	Password     string        `envconfig:"GRANDUER_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRANDUER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRANDUER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRANDUER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRANDUER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRANDUER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRANDUER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FlutterwaveConfig struct {
	SecretKey   string        `envconfig:"GRANDUER_FLW_SECRET_KEY" required:"true"`
	BaseURL     string        `envconfig:"GRANDUER_FLW_BASE_URL" default:"https://api.flutterwave.com"`
	Timeout     time.Duration `envconfig:"GRANDUER_FLW_TIMEOUT" default:"15s"`
	RedirectURL string        `envconfig:"GRANDUER_FLW_REDIRECT_URL" required:"true"`
}

type CheckoutConfig struct {
	Currency         string `envconfig:"GRANDUER_CHECKOUT_CURRENCY" default:"NGN"`
	PaymentTitle     string `envconfig:"GRANDUER_CHECKOUT_PAYMENT_TITLE" default:"Granduer"`
	PaymentStatement string `envconfig:"GRANDUER_CHECKOUT_PAYMENT_STATEMENT" default:"Payment for items in cart"`
}

type JWTConfig struct {
	Secret                   string `envconfig:"GRANDUER_JWT_SECRET" required:"true"`
	Issuer                   string `envconfig:"GRANDUER_JWT_ISSUER" default:"granduer"`
	VerificationTokenMinutes int    `envconfig:"GRANDUER_VERIFICATION_TOKEN_MINUTES" default:"1440"`
}

// VerificationTokenTTL returns the email verification token TTL.
func (j JWTConfig) VerificationTokenTTL() time.Duration {
	if j.VerificationTokenMinutes <= 0 {
		return 0
	}
	return time.Duration(j.VerificationTokenMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GRANDUER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GRANDUER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GRANDUER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GRANDUER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GRANDUER_ARGON_KEY_LEN" default:"32"`
}

type SMTPConfig struct {
	Host      string `envconfig:"GRANDUER_SMTP_HOST"`
	Port      int    `envconfig:"GRANDUER_SMTP_PORT" default:"587"`
	Username  string `envconfig:"GRANDUER_SMTP_USERNAME"`
	Password  string `envconfig:"GRANDUER_SMTP_PASSWORD"`
	From      string `envconfig:"GRANDUER_SMTP_FROM"`
	VerifyURL string `envconfig:"GRANDUER_SMTP_VERIFY_URL"`
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
