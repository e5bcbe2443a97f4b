package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for the storefront client. Every value
// can be overridden through an environment variable of the same name.
type Config struct {
	// APIBaseURL is the root of the storefront backend API.
	APIBaseURL string
	// StateDBPath is the SQLite file backing the durable session state.
	StateDBPath string
	// CallbackAddr is the local listen address for payment return URLs.
	CallbackAddr string
	// Currency is the ISO code charged at checkout.
	Currency string
	// HTTPTimeout bounds every backend request.
	HTTPTimeout time.Duration
	// ConfirmationDelay is how long the payment confirmation stays on
	// screen before the order history is shown.
	ConfirmationDelay time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults for local development.
func Load() Config {
	viper.SetDefault("API_BASE_URL", "http://127.0.0.1:8000")
	viper.SetDefault("STATE_DB_PATH", "malonda.db")
	viper.SetDefault("CALLBACK_ADDR", ":8350")
	viper.SetDefault("CURRENCY", "MWK")
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("CONFIRMATION_DELAY", "3s")
	viper.AutomaticEnv()

	return Config{
		APIBaseURL:        viper.GetString("API_BASE_URL"),
		StateDBPath:       viper.GetString("STATE_DB_PATH"),
		CallbackAddr:      viper.GetString("CALLBACK_ADDR"),
		Currency:          viper.GetString("CURRENCY"),
		HTTPTimeout:       viper.GetDuration("HTTP_TIMEOUT"),
		ConfirmationDelay: viper.GetDuration("CONFIRMATION_DELAY"),
	}
}
