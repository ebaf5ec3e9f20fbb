package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultBackendBaseURL = "http://localhost:3000"
	DefaultBackendTimeout = 10 * time.Second
	DefaultBackendMaxResp = 2 * 1024 * 1024 // 2MB

	DefaultCheckoutCurrency    = "INR"
	DefaultCheckoutThemeColor  = "#2563EB"
	DefaultCheckoutMerchant    = "Internship Program"
	DefaultCheckoutScriptURL   = "https://checkout.razorpay.com/v1/checkout.js"
	DefaultCheckoutOrderTO     = 5 * time.Second
	DefaultCheckoutVerifyTO    = 5 * time.Second
	DefaultCheckoutSubmitTO    = 10 * time.Second
	DefaultCheckoutSessionTTL  = 15 * time.Minute
	DefaultScriptProbeTimeout  = 3 * time.Second
	DefaultAvailabilityRefresh = 5 * time.Minute

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultResumeMaxSize  = 5 * 1024 * 1024 // 5MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaEnabled       = false
	DefaultKafkaEventsTopic   = "portal.events"
	DefaultKafkaBookingsTopic = "bookings.changed"
	DefaultKafkaDLQTopic      = "dlq-portal"
	DefaultKafkaGroupID       = "portal-availability"
)
