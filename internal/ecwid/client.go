// Package ecwid is the authenticated HTTP boundary to the Ecwid commerce platform.
//
// The client performs a single attempt per call. It never retries and never caches;
// retry policy belongs to the caller.
package ecwid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const (
	DefaultAPIBase = "https://app.ecwid.com/api/v3"
	DefaultTimeout = 10 * time.Second
)

// Config holds the deployment settings of the gateway.
type Config struct {
	APIBase string        `env:"ECWID_API_BASE" envDefault:"https://app.ecwid.com/api/v3"`
	StoreID string        `env:"ECWID_STORE_ID"`
	Token   string        `env:"ECWID_API_TOKEN"`
	Timeout time.Duration `env:"ECWID_TIMEOUT" envDefault:"10s"`
}

// Missing lists the environment variables of required settings that are empty.
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.StoreID) == "" {
		missing = append(missing, "ECWID_STORE_ID")
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "ECWID_API_TOKEN")
	}
	return missing
}

// Client talks to {APIBase}/{StoreID}.
type Client struct {
	http     *resty.Client
	requests metric.Int64Counter
}

// NewClient refuses to build a client that would send unauthenticated requests.
func NewClient(cfg Config) (*Client, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}

	base := cfg.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	requests, err := otel.Meter("designerae/ecwid").Int64Counter(
		"ecwid.requests",
		metric.WithDescription("Requests issued to the Ecwid API"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ecwid request counter: %w", err)
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(base, "/")+"/"+cfg.StoreID).
		SetAuthToken(cfg.Token).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-store").
		OnBeforeRequest(injectTraceContext)

	return &Client{
		http:     httpClient,
		requests: requests,
	}, nil
}

// Get reads a resource. The body must be JSON.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(path)

	body, err := c.finish(ctx, http.MethodGet, path, resp, err)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &GatewayError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode(), Message: "empty response body"}
	}
	return body, nil
}

// Put writes a resource with a JSON payload. A json.RawMessage payload is sent as is;
// anything else is marshaled. An empty successful response yields a nil body.
func (c *Client) Put(ctx context.Context, path string, payload any) ([]byte, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		payload = []byte(raw)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Put(path)

	return c.finish(ctx, http.MethodPut, path, resp, err)
}

func (c *Client) finish(ctx context.Context, method, path string, resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		c.record(ctx, method, "error")
		msg := err.Error()
		if isTimeout(err) {
			msg = "request timed out"
		}
		return nil, &GatewayError{Method: method, Path: path, Message: msg, Err: err}
	}

	c.record(ctx, method, fmt.Sprintf("%dxx", resp.StatusCode()/100))

	if !resp.IsSuccess() {
		return nil, &GatewayError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
		}
	}

	body := resp.Body()
	if resp.StatusCode() == http.StatusNoContent || len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &GatewayError{Method: method, Path: path, StatusCode: resp.StatusCode(), Message: "response body is not valid JSON"}
	}

	return body, nil
}

func (c *Client) record(ctx context.Context, method, statusClass string) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status_class", statusClass),
	))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func injectTraceContext(_ *resty.Client, req *resty.Request) error {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	return nil
}
