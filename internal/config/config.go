/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 * - github.com/shopspring/decimal: Validation of money-valued settings.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the core-connector.
// These values are loaded from environment variables.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	SupportedIDType      string `mapstructure:"SUPPORTED_ID_TYPE"`
	SupportedCurrency    string `mapstructure:"SUPPORTED_CURRENCY"`
	ServiceCharge        string `mapstructure:"SERVICE_CHARGE"`
	QuoteExpirationHours int    `mapstructure:"QUOTE_EXPIRATION_HOURS"`

	MomoBaseURL         string `mapstructure:"MOMO_BASE_URL"`
	MomoClientID        string `mapstructure:"MOMO_CLIENT_ID"`
	MomoClientSecret    string `mapstructure:"MOMO_CLIENT_SECRET"`
	MomoGrantType       string `mapstructure:"MOMO_GRANT_TYPE"`
	MomoCountry         string `mapstructure:"MOMO_COUNTRY"`
	MomoCurrency        string `mapstructure:"MOMO_CURRENCY"`
	MomoDisbursementPIN string `mapstructure:"MOMO_DISBURSEMENT_PIN"`

	CoreBankBaseURL       string `mapstructure:"COREBANK_BASE_URL"`
	CoreBankTenantID      string `mapstructure:"COREBANK_TENANT_ID"`
	CoreBankUsername      string `mapstructure:"COREBANK_USERNAME"`
	CoreBankPassword      string `mapstructure:"COREBANK_PASSWORD"`
	CoreBankLocale        string `mapstructure:"COREBANK_LOCALE"`
	CoreBankDateFormat    string `mapstructure:"COREBANK_DATE_FORMAT"`
	CoreBankPaymentTypeID string `mapstructure:"COREBANK_PAYMENT_TYPE_ID"`

	BankCountryCode string `mapstructure:"BANK_COUNTRY_CODE"`
	CheckDigits     string `mapstructure:"CHECK_DIGITS"`
	BankID          string `mapstructure:"BANK_ID"`
	AccountPrefix   string `mapstructure:"ACCOUNT_PREFIX"`

	SDKBaseURL string `mapstructure:"SDK_BASE_URL"`

	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	RefundAlertExchange string `mapstructure:"REFUND_ALERT_EXCHANGE"`

	JWKSURL        string `mapstructure:"JWKS_URL"`
	JWTIssuer      string `mapstructure:"JWT_ISSUER"`
	JWTAudience    string `mapstructure:"JWT_AUDIENCE"`
	InternalAPIKey string `mapstructure:"INTERNAL_API_KEY"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "3003")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SUPPORTED_ID_TYPE", "MSISDN")
	viper.SetDefault("SUPPORTED_CURRENCY", "ZMW")
	viper.SetDefault("SERVICE_CHARGE", "0")
	viper.SetDefault("QUOTE_EXPIRATION_HOURS", 1)
	viper.SetDefault("MOMO_GRANT_TYPE", "client_credentials")
	viper.SetDefault("COREBANK_LOCALE", "en")
	viper.SetDefault("COREBANK_DATE_FORMAT", "dd MM yy")
	viper.SetDefault("COREBANK_PAYMENT_TYPE_ID", "1")
	viper.SetDefault("REDIS_KEY_PREFIX", "core_connector")
	viper.SetDefault("REFUND_ALERT_EXCHANGE", "core_connector.alerts")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("ENVIRONMENT")
	_ = viper.BindEnv("SUPPORTED_ID_TYPE")
	_ = viper.BindEnv("SUPPORTED_CURRENCY")
	_ = viper.BindEnv("SERVICE_CHARGE")
	_ = viper.BindEnv("QUOTE_EXPIRATION_HOURS")
	_ = viper.BindEnv("MOMO_BASE_URL")
	_ = viper.BindEnv("MOMO_CLIENT_ID")
	_ = viper.BindEnv("MOMO_CLIENT_SECRET")
	_ = viper.BindEnv("MOMO_GRANT_TYPE")
	_ = viper.BindEnv("MOMO_COUNTRY")
	_ = viper.BindEnv("MOMO_CURRENCY")
	_ = viper.BindEnv("MOMO_DISBURSEMENT_PIN")
	_ = viper.BindEnv("COREBANK_BASE_URL")
	_ = viper.BindEnv("COREBANK_TENANT_ID")
	_ = viper.BindEnv("COREBANK_USERNAME")
	_ = viper.BindEnv("COREBANK_PASSWORD")
	_ = viper.BindEnv("COREBANK_LOCALE")
	_ = viper.BindEnv("COREBANK_DATE_FORMAT")
	_ = viper.BindEnv("COREBANK_PAYMENT_TYPE_ID")
	_ = viper.BindEnv("BANK_COUNTRY_CODE")
	_ = viper.BindEnv("CHECK_DIGITS")
	_ = viper.BindEnv("BANK_ID")
	_ = viper.BindEnv("ACCOUNT_PREFIX")
	_ = viper.BindEnv("SDK_BASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_KEY_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REFUND_ALERT_EXCHANGE")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("JWT_ISSUER")
	_ = viper.BindEnv("JWT_AUDIENCE")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "CORE_CONNECTOR_INTERNAL_API_KEY")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("CORE_CONNECTOR_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisKeyPrefix = strings.TrimSpace(config.RedisKeyPrefix)
	if config.RedisKeyPrefix == "" {
		config.RedisKeyPrefix = "core_connector"
	}

	// The service charge is money; it must parse as an exact decimal and may
	// not be negative.
	config.ServiceCharge = strings.TrimSpace(config.ServiceCharge)
	charge, parseErr := decimal.NewFromString(config.ServiceCharge)
	if parseErr != nil {
		log.Printf("level=warn component=config msg=\"invalid SERVICE_CHARGE; coercing to zero\" value=%q err=%v", config.ServiceCharge, parseErr)
		config.ServiceCharge = "0"
	} else if charge.IsNegative() {
		log.Printf("level=warn component=config msg=\"negative SERVICE_CHARGE configured; coercing to zero\" value=%q", config.ServiceCharge)
		config.ServiceCharge = "0"
	}

	if config.QuoteExpirationHours <= 0 {
		config.QuoteExpirationHours = 1
	}

	return
}
