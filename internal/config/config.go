package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                    string   `mapstructure:"PORT"`
	Env                     string   `mapstructure:"ENV"`
	CORSOrigins             []string `mapstructure:"CORS_ORIGINS"`
	ResponderBaseURL        string   `mapstructure:"RESPONDER_BASE_URL"`
	ResponderAPIKey         string   `mapstructure:"RESPONDER_API_KEY"`
	ResponderTimeoutSeconds int      `mapstructure:"RESPONDER_TIMEOUT_SECONDS"`
	DispatchWorkers         int      `mapstructure:"DISPATCH_WORKERS"`
	DefaultDifficulty       string   `mapstructure:"DEFAULT_DIFFICULTY"`
	RateLimitRPS            float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int      `mapstructure:"RATE_LIMIT_BURST"`
	TLSEnabled              bool     `mapstructure:"TLS_ENABLED"`
	TLSCertFile             string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile              string   `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RESPONDER_TIMEOUT_SECONDS", 10)
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DEFAULT_DIFFICULTY", "intermediate")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RESPONDER_BASE_URL")
	v.BindEnv("RESPONDER_API_KEY")
	v.BindEnv("RESPONDER_TIMEOUT_SECONDS")
	v.BindEnv("DISPATCH_WORKERS")
	v.BindEnv("DEFAULT_DIFFICULTY")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.ResponderBaseURL == "" && cfg.IsDev() {
		log.Println("WARNING: RESPONDER_BASE_URL is not set; narrative roles will use static canned responses.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResponderTimeout returns the configured gateway timeout as a duration.
func (c *Config) ResponderTimeout() time.Duration {
	if c.ResponderTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ResponderTimeoutSeconds) * time.Second
}

var validDifficulties = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// Validate checks that the configuration is safe to run. Production requires
// a narrative gateway so sessions never silently degrade to canned dialogue.
func (c *Config) Validate() error {
	if !validDifficulties[c.DefaultDifficulty] {
		return fmt.Errorf("DEFAULT_DIFFICULTY must be \"beginner\", \"intermediate\", or \"advanced\", got %q", c.DefaultDifficulty)
	}

	if c.IsProduction() && c.ResponderBaseURL == "" {
		return fmt.Errorf("RESPONDER_BASE_URL is required in production")
	}

	if c.DispatchWorkers < 1 {
		return fmt.Errorf("DISPATCH_WORKERS must be at least 1, got %d", c.DispatchWorkers)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
