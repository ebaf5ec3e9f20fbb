package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"cohort/pkg/logger"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	BackendBaseURL string        `yaml:"backend_base_url"`
	BackendTimeout time.Duration `yaml:"backend_timeout"`
	BackendMaxResp int           `yaml:"backend_max_response_size"`

	CheckoutKeyID         string        `yaml:"checkout_key_id"`
	CheckoutCurrency      string        `yaml:"checkout_currency"`
	CheckoutThemeColor    string        `yaml:"checkout_theme_color"`
	CheckoutMerchantName  string        `yaml:"checkout_merchant_name"`
	CheckoutScriptURL     string        `yaml:"checkout_script_url"`
	CheckoutOrderTimeout  time.Duration `yaml:"checkout_order_timeout"`
	CheckoutVerifyTimeout time.Duration `yaml:"checkout_verify_timeout"`
	CheckoutSubmitTimeout time.Duration `yaml:"checkout_submit_timeout"`
	CheckoutSessionTTL    time.Duration `yaml:"checkout_session_ttl"`
	ScriptProbeTimeout    time.Duration `yaml:"checkout_script_probe_timeout"`

	AvailabilityRefreshInterval time.Duration `yaml:"availability_refresh_interval"`

	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
	MaxRequestSize int           `yaml:"max_request_size"`
	ResumeMaxSize  int           `yaml:"resume_max_size"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	KafkaEnabled       bool   `yaml:"kafka_enabled"`
	KafkaEventsTopic   string `yaml:"kafka_events_topic"`
	KafkaBookingsTopic string `yaml:"kafka_bookings_topic"`
	KafkaDLQTopic      string `yaml:"kafka_dlq_topic"`
	KafkaGroupID       string `yaml:"kafka_group_id"`

	Log *logger.Logger `yaml:"-"`
}

func Defaults() *Config {
	return &Config{
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,

		BackendBaseURL: DefaultBackendBaseURL,
		BackendTimeout: DefaultBackendTimeout,
		BackendMaxResp: DefaultBackendMaxResp,

		CheckoutCurrency:      DefaultCheckoutCurrency,
		CheckoutThemeColor:    DefaultCheckoutThemeColor,
		CheckoutMerchantName:  DefaultCheckoutMerchant,
		CheckoutScriptURL:     DefaultCheckoutScriptURL,
		CheckoutOrderTimeout:  DefaultCheckoutOrderTO,
		CheckoutVerifyTimeout: DefaultCheckoutVerifyTO,
		CheckoutSubmitTimeout: DefaultCheckoutSubmitTO,
		CheckoutSessionTTL:    DefaultCheckoutSessionTTL,
		ScriptProbeTimeout:    DefaultScriptProbeTimeout,

		AvailabilityRefreshInterval: DefaultAvailabilityRefresh,

		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,

		RequestTimeout: DefaultRequestTimeout,
		IdempotencyTTL: DefaultIdempotencyTTL,
		MaxRequestSize: DefaultMaxRequestSize,
		ResumeMaxSize:  DefaultResumeMaxSize,

		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		KafkaEnabled:       DefaultKafkaEnabled,
		KafkaEventsTopic:   DefaultKafkaEventsTopic,
		KafkaBookingsTopic: DefaultKafkaBookingsTopic,
		KafkaDLQTopic:      DefaultKafkaDLQTopic,
		KafkaGroupID:       DefaultKafkaGroupID,
	}
}

// Load builds the configuration from defaults, then the optional YAML file named by
// CONFIG_FILE, then environment variables. Invalid configuration is fatal.
func Load(serviceName string) *Config {
	cfg := Defaults()

	fileErr := cfg.loadFile(os.Getenv(EnvConfigFile))
	cfg.applyEnv()

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if fileErr != nil {
		cfg.Log.Fatal("Failed to read configuration file", "path", os.Getenv(EnvConfigFile), "error", fileErr)
	}
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return cfg.decodeYAML(data)
}

func (cfg *Config) decodeYAML(data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv() {
	cfg.Port = getEnvStr(EnvPort, cfg.Port)
	cfg.LogLevel = getEnvStr(EnvLogLevel, cfg.LogLevel)

	cfg.BackendBaseURL = getEnvStr(EnvBackendBaseURL, cfg.BackendBaseURL)
	cfg.BackendTimeout = getEnvDuration(EnvBackendTimeout, cfg.BackendTimeout)
	cfg.BackendMaxResp = getEnvNum(EnvBackendMaxResp, cfg.BackendMaxResp)

	cfg.CheckoutKeyID = getEnvStr(EnvCheckoutKeyID, cfg.CheckoutKeyID)
	cfg.CheckoutCurrency = getEnvStr(EnvCheckoutCurrency, cfg.CheckoutCurrency)
	cfg.CheckoutThemeColor = getEnvStr(EnvCheckoutThemeColor, cfg.CheckoutThemeColor)
	cfg.CheckoutMerchantName = getEnvStr(EnvCheckoutMerchant, cfg.CheckoutMerchantName)
	cfg.CheckoutScriptURL = getEnvStr(EnvCheckoutScriptURL, cfg.CheckoutScriptURL)
	cfg.CheckoutOrderTimeout = getEnvDuration(EnvCheckoutOrderTimeout, cfg.CheckoutOrderTimeout)
	cfg.CheckoutVerifyTimeout = getEnvDuration(EnvCheckoutVerifyTO, cfg.CheckoutVerifyTimeout)
	cfg.CheckoutSubmitTimeout = getEnvDuration(EnvCheckoutSubmitTO, cfg.CheckoutSubmitTimeout)
	cfg.CheckoutSessionTTL = getEnvDuration(EnvCheckoutSessionTTL, cfg.CheckoutSessionTTL)
	cfg.ScriptProbeTimeout = getEnvDuration(EnvScriptProbeTimeout, cfg.ScriptProbeTimeout)

	cfg.AvailabilityRefreshInterval = getEnvDuration(EnvAvailabilityRefresh, cfg.AvailabilityRefreshInterval)

	cfg.RateLimitRequests = getEnvNum(EnvRateLimitRequests, cfg.RateLimitRequests)
	cfg.RateLimitWindow = getEnvDuration(EnvRateLimitWindow, cfg.RateLimitWindow)

	cfg.RequestTimeout = getEnvDuration(EnvRequestTimeout, cfg.RequestTimeout)
	cfg.IdempotencyTTL = getEnvDuration(EnvIdempotencyTTL, cfg.IdempotencyTTL)
	cfg.MaxRequestSize = getEnvNum(EnvMaxRequestSize, cfg.MaxRequestSize)
	cfg.ResumeMaxSize = getEnvNum(EnvResumeMaxSize, cfg.ResumeMaxSize)

	cfg.ReadTimeout = getEnvDuration(EnvReadTimeout, cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration(EnvWriteTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvDuration(EnvIdleTimeout, cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.KafkaEnabled = getEnvBool(EnvKafkaEnabled, cfg.KafkaEnabled)
	cfg.KafkaEventsTopic = getEnvStr(EnvKafkaEventsTopic, cfg.KafkaEventsTopic)
	cfg.KafkaBookingsTopic = getEnvStr(EnvKafkaBookingsTopic, cfg.KafkaBookingsTopic)
	cfg.KafkaDLQTopic = getEnvStr(EnvKafkaDLQTopic, cfg.KafkaDLQTopic)
	cfg.KafkaGroupID = getEnvStr(EnvKafkaGroupID, cfg.KafkaGroupID)
}

var (
	currencyRegex   = regexp.MustCompile(`^[A-Z]{3}$`)
	themeColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if u, err := url.Parse(cfg.BackendBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("BackendBaseURL must be an absolute http(s) URL, got: %s", cfg.BackendBaseURL))
	}
	if cfg.CheckoutScriptURL != "" {
		if u, err := url.Parse(cfg.CheckoutScriptURL); err != nil || u.Scheme != "https" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("CheckoutScriptURL must be an absolute https URL, got: %s", cfg.CheckoutScriptURL))
		}
	}

	if !currencyRegex.MatchString(cfg.CheckoutCurrency) {
		errors = append(errors, fmt.Sprintf("CheckoutCurrency must be a 3-letter ISO code, got: %s", cfg.CheckoutCurrency))
	}
	if !themeColorRegex.MatchString(cfg.CheckoutThemeColor) {
		errors = append(errors, fmt.Sprintf("CheckoutThemeColor must be a #RRGGBB color, got: %s", cfg.CheckoutThemeColor))
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"BackendTimeout", cfg.BackendTimeout},
		{"CheckoutOrderTimeout", cfg.CheckoutOrderTimeout},
		{"CheckoutVerifyTimeout", cfg.CheckoutVerifyTimeout},
		{"CheckoutSubmitTimeout", cfg.CheckoutSubmitTimeout},
		{"CheckoutSessionTTL", cfg.CheckoutSessionTTL},
		{"ScriptProbeTimeout", cfg.ScriptProbeTimeout},
		{"AvailabilityRefreshInterval", cfg.AvailabilityRefreshInterval},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.CheckoutSessionTTL < cfg.CheckoutOrderTimeout+cfg.CheckoutVerifyTimeout+cfg.CheckoutSubmitTimeout {
		errors = append(errors, fmt.Sprintf("CheckoutSessionTTL (%s) must cover order, verify and submit timeouts", cfg.CheckoutSessionTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.BackendMaxResp <= 0 {
		errors = append(errors, fmt.Sprintf("BackendMaxResp must be positive, got: %d", cfg.BackendMaxResp))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ResumeMaxSize <= 0 {
		errors = append(errors, fmt.Sprintf("ResumeMaxSize must be positive, got: %d", cfg.ResumeMaxSize))
	}

	if cfg.KafkaEnabled {
		if cfg.KafkaEventsTopic == "" {
			errors = append(errors, "KafkaEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaBookingsTopic == "" {
			errors = append(errors, "KafkaBookingsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaGroupID == "" {
			errors = append(errors, "KafkaGroupID cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"backend_base_url", cfg.BackendBaseURL,
		"backend_timeout", cfg.BackendTimeout,
		"backend_max_response_size", cfg.BackendMaxResp,
		"checkout_key_id", redactKey(cfg.CheckoutKeyID),
		"checkout_currency", cfg.CheckoutCurrency,
		"checkout_theme_color", cfg.CheckoutThemeColor,
		"checkout_script_url", cfg.CheckoutScriptURL,
		"checkout_order_timeout", cfg.CheckoutOrderTimeout,
		"checkout_verify_timeout", cfg.CheckoutVerifyTimeout,
		"checkout_submit_timeout", cfg.CheckoutSubmitTimeout,
		"checkout_session_ttl", cfg.CheckoutSessionTTL,
		"availability_refresh_interval", cfg.AvailabilityRefreshInterval,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"resume_max_size", cfg.ResumeMaxSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_events_topic", cfg.KafkaEventsTopic,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
	)
}

// redactKey keeps only the key prefix, e.g. "rzp_live_****".
func redactKey(key string) string {
	if len(key) <= 9 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:9] + "****"
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
