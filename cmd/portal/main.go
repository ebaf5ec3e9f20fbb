package main

import (
	"context"
	"errors"

	availabilityhandler "cohort/internal/availability/handler"
	availabilityservice "cohort/internal/availability/service"
	careerhandler "cohort/internal/careers/handler"
	careerservice "cohort/internal/careers/service"
	careervalidator "cohort/internal/careers/validator"
	checkouthandler "cohort/internal/checkout/handler"
	checkoutservice "cohort/internal/checkout/service"
	checkoutvalidator "cohort/internal/checkout/validator"
	"cohort/pkg/app"
	"cohort/pkg/client"
	"cohort/pkg/config"
	"cohort/pkg/events"
	"cohort/pkg/kafka"
	kafka_config "cohort/pkg/kafka/config"
	kafka_middleware "cohort/pkg/kafka/middleware"
	"cohort/pkg/metrics"
)

const ServiceName = "portal"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Portal service")
	m := metrics.New()
	serverApp := app.NewApplication(cfg, m)

	var kafkaCfg *kafka_config.Config
	if cfg.KafkaEnabled {
		kafkaCfg = loadKafkaConfig(cfg)
	}

	backend := client.NewBackend(cfg.BackendBaseURL, cfg.BackendTimeout, int64(cfg.BackendMaxResp))
	publisher := initPublisher(cfg, kafkaCfg, m, serverApp)

	availability := availabilityservice.NewAvailabilityService(backend, cfg, m)
	refresher := availabilityservice.NewRefresher(availability, cfg.AvailabilityRefreshInterval, cfg.BackendTimeout, cfg.Log)
	serverApp.AddWorker(refresher)
	serverApp.AddReadinessCheck("availability", func(context.Context) error {
		if !availability.Status().Loaded {
			return errors.New("booked dates not loaded yet")
		}
		return nil
	})
	initBookingsConsumer(cfg, kafkaCfg, m, serverApp, refresher)

	checkoutValidator := checkoutvalidator.NewCheckoutValidator(cfg.Log)
	sessions := checkoutservice.NewSessionRegistry(cfg, checkoutservice.Dependencies{
		Backend:   backend,
		Loader:    checkoutservice.NewScriptProbe(cfg.CheckoutScriptURL, cfg.ScriptProbeTimeout, cfg.Log),
		Validator: checkoutValidator,
		Publisher: publisher,
		Metrics:   m,
	})
	serverApp.AddWorker(sessions)

	careers := careerservice.NewCareerService(
		careervalidator.NewCareerValidator(int64(cfg.ResumeMaxSize), cfg.Log),
		publisher,
		cfg,
		m,
	)

	serverApp.SetApp(
		availabilityhandler.NewAvailabilityHandler(availability, cfg.Log),
		checkouthandler.NewCheckoutHandler(sessions, checkoutValidator, cfg.Log),
		careerhandler.NewCareerHandler(careers, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, serverApp *app.Application) events.Publisher {
	if kafkaCfg == nil {
		cfg.Log.Info("Kafka disabled, events are written to the log")
		return events.NewLogPublisher(cfg.Log)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaEventsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", cfg.KafkaEventsTopic, "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))

	publisher := events.NewKafkaPublisher(producer, ServiceName)
	serverApp.OnShutdown("kafka-producer", publisher.Close)
	cfg.Log.Info("Kafka event publisher initialized", "topic", cfg.KafkaEventsTopic)
	return publisher
}

func initBookingsConsumer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics, serverApp *app.Application, refresher *availabilityservice.Refresher) {
	if kafkaCfg == nil {
		return
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaGroupID, cfg.KafkaDLQTopic, refresher.HandleBookingChanged, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "topic", cfg.KafkaBookingsTopic, "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))

	serverApp.AddWorker(consumer)
	serverApp.OnShutdown("kafka-consumer", consumer.Close)
	cfg.Log.Info("Kafka bookings consumer initialized", "topic", cfg.KafkaBookingsTopic, "group_id", cfg.KafkaGroupID)
}

func loadKafkaConfig(cfg *config.Config) *kafka_config.Config {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)
	return kafkaCfg
}
