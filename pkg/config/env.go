package config

const (
	EnvConfigFile = "CONFIG_FILE"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvBackendBaseURL = "BACKEND_BASE_URL"
	EnvBackendTimeout = "BACKEND_TIMEOUT"
	EnvBackendMaxResp = "BACKEND_MAX_RESPONSE_SIZE"

	EnvCheckoutKeyID        = "CHECKOUT_KEY_ID"
	EnvCheckoutCurrency     = "CHECKOUT_CURRENCY"
	EnvCheckoutThemeColor   = "CHECKOUT_THEME_COLOR"
	EnvCheckoutMerchant     = "CHECKOUT_MERCHANT_NAME"
	EnvCheckoutScriptURL    = "CHECKOUT_SCRIPT_URL"
	EnvCheckoutOrderTimeout = "CHECKOUT_ORDER_TIMEOUT"
	EnvCheckoutVerifyTO     = "CHECKOUT_VERIFY_TIMEOUT"
	EnvCheckoutSubmitTO     = "CHECKOUT_SUBMIT_TIMEOUT"
	EnvCheckoutSessionTTL   = "CHECKOUT_SESSION_TTL"
	EnvScriptProbeTimeout   = "CHECKOUT_SCRIPT_PROBE_TIMEOUT"

	EnvAvailabilityRefresh = "AVAILABILITY_REFRESH_INTERVAL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvResumeMaxSize  = "RESUME_MAX_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvKafkaEventsTopic   = "KAFKA_EVENTS_TOPIC"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaDLQTopic      = "KAFKA_DLQ_TOPIC"
	EnvKafkaGroupID       = "KAFKA_GROUP_ID"
)
