package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/config"
	gateway "github.com/MarcusPiperAllen/curve-sms-safety-project/internal/gateways"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/handlers"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/queue"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/services"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/prom"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if config.Get().AppDebugMetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics", "error", err)
		}
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	// welcome queue: the API only publishes, the processor consumes
	welcomeQ, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().QueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
	}

	carrier, err := gateway.NewClient(&gateway.Config{
		BaseURL:           config.Get().CarrierBaseUrl,
		FromNumber:        config.Get().CarrierFromNumber,
		StatusCallbackURL: config.Get().CarrierStatusCallbackUrl,
		Timeout:           config.Get().CarrierRequestTimeout,
	})
	if err != nil {
		logger.Error("failed creating carrier client", "error", err)
		return
	}

	subscriberRepo := repository.NewSubscriberRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// services
	subscriberService := services.NewSubscriberService(subscriberRepo, welcomeQ)
	broadcastService := services.NewBroadcastService(
		subscriberRepo,
		alertRepo,
		deliveryRepo,
		carrier,
		config.Get().BroadcastWorkers,
		config.Get().BroadcastRetryDelay,
	)
	deliveryService := services.NewDeliveryService(deliveryRepo, redisAdap)
	reportService := services.NewReportService(reportRepo, subscriberRepo, broadcastService)
	inboundService := services.NewInboundService(subscriberService, reportService)
	healthService := services.NewHealthService(db, redisAdap)

	// handlers
	smsHandler := handlers.NewSMSHandler(inboundService, deliveryService)
	subscriberHandler := handlers.NewSubscriberHandler(subscriberService)
	broadcastHandler := handlers.NewBroadcastHandler(broadcastService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthService)

	adminKey := config.Get().AdminAPIKey
	if adminKey == "" {
		logger.Warn("ADMIN_API_KEY is empty, admin endpoints will reject every request")
	}

	handlers.RegisterSMSRoutes(s.Router, smsHandler)
	handlers.RegisterSubscriberRoutes(s.Router, subscriberHandler)
	handlers.RegisterBroadcastRoutes(s.Router, broadcastHandler, adminKey)
	handlers.RegisterReportRoutes(s.Router, reportHandler, adminKey)
	handlers.RegisterHealthRoutes(s.Router, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	logger.Info("api started", "version", version, "commit", commit, "built", date)

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
