package config

// EnvPrefix is the envconfig prefix; individual fields carry fully
// qualified envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv            = "ECOM_APP_ENV"
	EnvPort              = "ECOM_APP_PORT"
	EnvDBDSN             = "ECOM_DB_DSN"
	EnvDBHost            = "ECOM_DB_HOST"
	EnvDBUser            = "ECOM_DB_USER"
	EnvDBName            = "ECOM_DB_NAME"
	EnvRedisURL          = "ECOM_REDIS_URL"
	EnvRazorpayKeyID     = "ECOM_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "ECOM_RAZORPAY_KEY_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
