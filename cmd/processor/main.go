package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/config"
	gateway "github.com/MarcusPiperAllen/curve-sms-safety-project/internal/gateways"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/processor"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
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

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	client, err := gateway.NewClient(&gateway.Config{
		BaseURL:           config.Get().CarrierBaseUrl,
		FromNumber:        config.Get().CarrierFromNumber,
		StatusCallbackURL: config.Get().CarrierStatusCallbackUrl,
		Timeout:           config.Get().CarrierRequestTimeout,
	})
	if err != nil {
		logger.Error("failed to create carrier client", "error", err)
		return
	}

	idempotencyConfig := processor.DefaultIdempotencyConfig()
	idempotencyService := processor.NewIdempotencyService(redisAdap, idempotencyConfig)

	service, err := processor.NewProcessorService(redisAdap)
	if err != nil {
		logger.Error("failed to create the processor", "error", err)
		return
	}
	service.RegisterProcessor(processor.NewWelcomeProcessor(client, idempotencyService))

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start processor", "error", err)
		}
	}()

	logger.Info("welcome processor started", "version", version, "commit", commit, "built", date)

	select {
	case <-c:
		service.Stop()
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
