package config

import (
	"flag"
	"os"
	"strconv"
	"sync"
)

const (
	defaultServerAddress   = ":8080"
	defaultDatabaseDSN     = ""
	defaultSwiftBaseURL    = "https://swiftwallet.co.ke/pay-app/v2"
	defaultCallbackURL     = "https://api.beifity.com/api/payments/webhook"
	defaultCommissionRate  = 0.0
	defaultPlatformAccount = "beifity-platform"
	defaultSwiftChannelID  = 1
	defaultLogLevel        = "debug"
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	SwiftBaseURL      string
	SwiftAPIKey       string
	SwiftWebhookKey   string
	SwiftChannelID    int
	CallbackURL       string
	CommissionRate    float64
	PlatformAccountID string
	AuthTokenKey      string
	LogLevel          string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "beifity server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "beifity database DSN")
		flag.StringVar(&cfg.SwiftBaseURL, "g", defaultSwiftBaseURL, "swift gateway base URL")
		flag.StringVar(&cfg.CallbackURL, "c", defaultCallbackURL, "public webhook callback URL")
		flag.Float64Var(&cfg.CommissionRate, "r", defaultCommissionRate, "platform commission rate")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		cfg.SwiftChannelID = defaultSwiftChannelID
		cfg.PlatformAccountID = defaultPlatformAccount

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if swiftBaseURLEnv := os.Getenv("SWIFT_BASE_URL"); swiftBaseURLEnv != "" {
			cfg.SwiftBaseURL = swiftBaseURLEnv
		}
		if swiftAPIKeyEnv := os.Getenv("SWIFT_API_KEY"); swiftAPIKeyEnv != "" {
			cfg.SwiftAPIKey = swiftAPIKeyEnv
		}
		if swiftWebhookKeyEnv := os.Getenv("SWIFT_WEBHOOK_KEY"); swiftWebhookKeyEnv != "" {
			cfg.SwiftWebhookKey = swiftWebhookKeyEnv
		}
		if swiftChannelIDEnv := os.Getenv("SWIFT_CHANNEL_ID"); swiftChannelIDEnv != "" {
			if id, err := strconv.Atoi(swiftChannelIDEnv); err == nil {
				cfg.SwiftChannelID = id
			}
		}
		if callbackURLEnv := os.Getenv("CALLBACK_URL"); callbackURLEnv != "" {
			cfg.CallbackURL = callbackURLEnv
		}
		if commissionRateEnv := os.Getenv("COMMISSION_RATE"); commissionRateEnv != "" {
			if rate, err := strconv.ParseFloat(commissionRateEnv, 64); err == nil {
				cfg.CommissionRate = rate
			}
		}
		if platformAccountEnv := os.Getenv("PLATFORM_ACCOUNT_ID"); platformAccountEnv != "" {
			cfg.PlatformAccountID = platformAccountEnv
		}
		if authTokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); authTokenKeyEnv != "" {
			cfg.AuthTokenKey = authTokenKeyEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}
