package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MessageStatus mirrors the carrier's delivery lifecycle vocabulary.
type MessageStatus string

const (
	StatusSent        MessageStatus = "sent"
	StatusDelivered   MessageStatus = "delivered"
	StatusUndelivered MessageStatus = "undelivered"
	StatusFailed      MessageStatus = "failed"
)

// SendMessageRequest is the payload the alerting service posts for each send.
type SendMessageRequest struct {
	To             string `json:"to" binding:"required"`
	From           string `json:"from" binding:"required"`
	Body           string `json:"body" binding:"required"`
	StatusCallback string `json:"status_callback"`
}

// SendMessageResponse acknowledges acceptance before delivery settles.
type SendMessageResponse struct {
	SID    string        `json:"sid"`
	Status MessageStatus `json:"status"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string    `json:"status"`
	CarrierID    string    `json:"carrier_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockCarrier simulates a Twilio-style SMS carrier: it accepts sends
// immediately and reports the final outcome asynchronously to the
// status callback URL, the way the real provider does.
type MockCarrier struct {
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	carrierID    string
	httpClient   *http.Client

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockCarrier(deliveryRate float64, minDelay, maxDelay time.Duration) *MockCarrier {
	return &MockCarrier{
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		carrierID:    "MOCK_CARRIER_" + uuid.New().String()[:8],
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newSID mints a message SID in the carrier's "SM..." format.
func (m *MockCarrier) newSID() string {
	return "SM" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (m *MockCarrier) randomDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockCarrier) shouldDeliver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.deliveryRate
}

// settle waits out the simulated network delay, then posts the final
// delivery status to the callback URL as a form-encoded webhook.
func (m *MockCarrier) settle(sid, to, callback string) {
	delay := m.randomDelay()
	time.Sleep(delay)

	status := StatusDelivered
	errorCode := ""
	if !m.shouldDeliver() {
		status = StatusUndelivered
		errorCode = "30005" // unknown destination handset
	}

	if callback == "" {
		log.Info().
			Str("sid", sid).
			Str("to", to).
			Str("status", string(status)).
			Msg("Message settled, no callback URL configured")
		return
	}

	form := url.Values{}
	form.Set("MessageSid", sid)
	form.Set("MessageStatus", string(status))
	form.Set("To", to)
	if errorCode != "" {
		form.Set("ErrorCode", errorCode)
	}

	resp, err := m.httpClient.PostForm(callback, form)
	if err != nil {
		log.Warn().Err(err).Str("sid", sid).Msg("Status callback failed")
		return
	}
	resp.Body.Close()

	log.Info().
		Str("sid", sid).
		Str("to", to).
		Str("status", string(status)).
		Dur("delay", delay).
		Int("callback_status", resp.StatusCode).
		Msg("Delivery status reported")
}

// Handler struct holds the mock carrier and routes
type Handler struct {
	carrier *MockCarrier
}

func NewHandler(carrier *MockCarrier) *Handler {
	return &Handler{carrier: carrier}
}

// SendMessage accepts a message for delivery and settles it asynchronously.
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	sid := h.carrier.newSID()

	log.Info().
		Str("sid", sid).
		Str("to", req.To).
		Str("from", req.From).
		Msg("Accepted message for delivery")

	go h.carrier.settle(sid, req.To, req.StatusCallback)

	c.JSON(http.StatusCreated, SendMessageResponse{
		SID:    sid,
		Status: StatusSent,
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		CarrierID:    h.carrier.carrierID,
		Timestamp:    time.Now(),
		DeliveryRate: h.carrier.deliveryRate,
	})
}

// UpdateConfig allows changing the delivery rate at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil {
		if *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
			h.carrier.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"delivery_rate": h.carrier.deliveryRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/messages", handler.SendMessage)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 500*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 3*time.Second)

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock SMS Carrier")

	carrier := NewMockCarrier(deliveryRate, minDelay, maxDelay)
	handler := NewHandler(carrier)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
