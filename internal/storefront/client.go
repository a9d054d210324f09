package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/config"
	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

var errServerStatus = errors.New("storefront server error")

type requestIDKey struct{}

// WithRequestID attaches the inbound request id so outbound calls carry the same X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Response]
	logger     *zap.Logger
}

// Response is a fully read storefront response
type Response struct {
	StatusCode int
	Body       []byte
}

// NewClient creates a storefront HTTP client. Outbound calls share one cookie jar (session and
// CSRF cookies), go through the CSRF decorator and a circuit breaker.
func NewClient(cfg config.StorefrontConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid storefront base URL %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	csrf := cfg.CSRF
	defaults := config.DefaultCSRFConfig()
	if csrf.CookieName == "" {
		csrf.CookieName = defaults.CookieName
	}
	if csrf.HeaderName == "" {
		csrf.HeaderName = defaults.HeaderName
	}
	if csrf.TokenPath == "" {
		csrf.TokenPath = defaults.TokenPath
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	transport := NewCSRFTransport(otelhttp.NewTransport(http.DefaultTransport), jar, baseURL+csrf.TokenPath, csrf, logger)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: transport,
		},
		breaker: gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
			Name:    "storefront",
			Timeout: cfg.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Storefront circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
		logger: logger,
	}, nil
}

// Do executes a request against the storefront and reads the whole body.
// Any non-2xx status is returned as *errors.ErrTransport together with the response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := requestIDFromContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		out := &Response{StatusCode: httpResp.StatusCode, Body: data}
		if httpResp.StatusCode >= http.StatusInternalServerError {
			return out, errServerStatus
		}
		return out, nil
	})
	if err != nil && resp == nil {
		c.logger.Warn("Storefront request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, &apperrors.ErrTransport{Op: op, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("Storefront returned non-2xx",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return resp, &apperrors.ErrTransport{Op: op, StatusCode: resp.StatusCode, Body: resp.Body}
	}

	return resp, nil
}

// DoJSON executes a request and decodes a 2xx body into out
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &apperrors.ErrParse{Op: method + " " + path, Err: err}
	}
	return nil
}

// DecodeErrorBody decodes the body carried by a non-2xx transport error into out.
// It reports false when err carries no decodable body.
func DecodeErrorBody(err error, out interface{}) bool {
	var terr *apperrors.ErrTransport
	if !errors.As(err, &terr) || len(bytes.TrimSpace(terr.Body)) == 0 {
		return false
	}
	return json.Unmarshal(terr.Body, out) == nil
}
