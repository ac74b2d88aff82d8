package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrCarrierRejected = errors.New("carrier rejected the message")
)

const sendPath = "/v1/messages"

// SendRequest is one outbound SMS handed to the carrier.
type SendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// SendResponse is the carrier's acceptance receipt. Status is the carrier's
// initial status, the final outcome arrives later on the status callback.
type SendResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type sendPayload struct {
	To             string `json:"to"`
	From           string `json:"from"`
	Body           string `json:"body"`
	StatusCallback string `json:"status_callback,omitempty"`
}

type Config struct {
	BaseURL           string
	FromNumber        string
	StatusCallbackURL string
	Timeout           time.Duration
	MaxConns          int
	ReadBufferSize    int
	WriteBufferSize   int
}

// Client talks to the upstream SMS carrier over its HTTP API.
type Client struct {
	config *Config
	client *fasthttp.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("carrier base url is required")
	}
	if config.FromNumber == "" {
		return nil, errors.New("carrier from number is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := &fasthttp.Client{
		MaxConnsPerHost:     config.MaxConns,
		ReadTimeout:         config.Timeout,
		WriteTimeout:        config.Timeout,
		MaxIdleConnDuration: 60 * time.Second,
		ReadBufferSize:      config.ReadBufferSize,
		WriteBufferSize:     config.WriteBufferSize,
	}

	logger.Info("Carrier client initialized", "base_url", config.BaseURL, "from", config.FromNumber, "timeout", config.Timeout)

	return &Client{
		config: config,
		client: httpClient,
	}, nil
}

// Send submits one SMS to the carrier. A nil error means the carrier accepted
// the message, not that it was delivered.
func (c *Client) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	payload := sendPayload{
		To:             req.To,
		From:           c.config.FromNumber,
		Body:           req.Body,
		StatusCallback: c.config.StatusCallbackURL,
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	response, err := c.doRequest(ctx, "POST", sendPath, reqBody)
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	logger.Info("SMS accepted by carrier", "to", req.To, "sid", resp.SID, "status", resp.Status)

	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusCreated && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("%w: status code %d, body: %s", ErrCarrierRejected, statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
