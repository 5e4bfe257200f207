package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"ruangpulih/internal/config"
	"ruangpulih/internal/domain"
	"ruangpulih/internal/metrics"
	"ruangpulih/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	cachePrefix     = "ruangpulih:"
)

// Client talks JSON to the RuangPulih backend. The session cookie set by
// Login is kept in the client's jar and sent with every later request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger

	cache    domain.Cache
	cacheTTL time.Duration

	mu   sync.RWMutex
	user *models.User
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a client for cfg.BaseURL.
func NewClient(cfg config.APIConfig, logger *zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	if c.logger == nil {
		nop := zerolog.Nop()
		c.logger = &nop
	}
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 5
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

// UseCache enables read-through caching for GetCached.
func (c *Client) UseCache(cache domain.Cache, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request and decodes a 2xx JSON body into out. A nil out
// discards the body; otherwise an empty body is a decode failure.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: %s %s: empty response body", ErrDecode, method, path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}
	return nil
}

// GetCached is Do(GET) behind the configured cache. Cache errors are
// logged and treated as misses.
func (c *Client) GetCached(ctx context.Context, path string, out any) error {
	if c.cache == nil || c.cacheTTL <= 0 {
		return c.Do(ctx, http.MethodGet, path, nil, out)
	}

	key := cachePrefix + path
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok {
		if err := json.Unmarshal(cached, out); err == nil {
			c.logger.Debug().Str("path", path).Msg("cache hit")
			return nil
		}
	}

	raw, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrDecode, path, err)
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return nil
}

// InvalidateCache drops every cached response whose path starts with
// pathPrefix.
func (c *Client) InvalidateCache(ctx context.Context, pathPrefix string) error {
	if c.cache == nil {
		return nil
	}
	if err := c.cache.DeletePrefix(ctx, cachePrefix+pathPrefix); err != nil {
		return fmt.Errorf("invalidate cache %s: %w", pathPrefix, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := c.addHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncHTTP(method, "error")
		c.logger.Debug().Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncHTTP(method, "error")
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}

	metrics.IncHTTP(method, strconv.Itoa(resp.StatusCode))
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, apiErr)
		}
		apiErr.Message = eb.Error
		return nil, apiErr
	}

	return raw, nil
}

func (c *Client) addHeaders(req *http.Request) string {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return requestID
}
