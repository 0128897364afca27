package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Razorpay     RazorpayConfig
	Payment      PaymentConfig
	Checkout     CheckoutConfig
	Outbox       OutboxConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOM_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOM_DB_DSN"`
	Driver string `envconfig:"ECOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOM_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOM_DB_USER"`
	LegacyPassword string `envconfig:"ECOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOM_REDIS_URL" required:"true"`
	Password     string        `envconfig:"ECOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"ECOM_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"ECOM_RAZORPAY_KEY_SECRET" required:"true"`
	// PublicKeyID is returned to the storefront so it can open the
	// checkout widget; defaults to KeyID when unset.
	PublicKeyID string `envconfig:"ECOM_RAZORPAY_PUBLIC_KEY_ID"`
}

func (r RazorpayConfig) WidgetKeyID() string {
	if r.PublicKeyID != "" {
		return r.PublicKeyID
	}
	return r.KeyID
}

type PaymentConfig struct {
	Currency string `envconfig:"ECOM_PAYMENT_CURRENCY" default:"INR"`
	// TrustClientCharges keeps the original behavior of accepting
	// tax/shipping/discount from the submitted cart metadata. When
	// disabled, charges are derived server-side from TaxRate and
	// FlatShippingFee instead.
	TrustClientCharges bool   `envconfig:"ECOM_PAYMENT_TRUST_CLIENT_CHARGES" default:"true"`
	TaxRate            string `envconfig:"ECOM_PAYMENT_TAX_RATE" default:"0"`
	FlatShippingFee    string `envconfig:"ECOM_PAYMENT_FLAT_SHIPPING_FEE" default:"0"`
	OrderNumberRetries int    `envconfig:"ECOM_PAYMENT_ORDER_NUMBER_RETRIES" default:"3"`
}

// TaxRateDecimal parses the configured tax rate, falling back to zero.
func (p PaymentConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(p.TaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// FlatShippingFeeDecimal parses the configured shipping fee, falling back to zero.
func (p PaymentConfig) FlatShippingFeeDecimal() decimal.Decimal {
	fee, err := decimal.NewFromString(p.FlatShippingFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

type CheckoutConfig struct {
	RecoveryTTL time.Duration `envconfig:"ECOM_CHECKOUT_RECOVERY_TTL" default:"24h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ECOM_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ECOM_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ECOM_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECOM_AUTO_MIGRATE" default:"false"`
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
