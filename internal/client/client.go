// the client package is used by the cardsense commands to call the CardSense backend API.
// Every domain function returns a Response: the client translates transport failures and the
// backend's inconsistent error and payload shapes into a single result type, so callers never
// handle Go errors from this package directly (see client/normalize.go).
package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cardsense "github.com/cardsense/cardsense"
	"github.com/cardsense/cardsense/internal/metrics"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Client handles communication with the CardSense API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiURL     *url.URL
	httpClient *http.Client
	session    *Session
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    *metrics.ClientMetrics
	logger     *slog.Logger
	userAgent  string
}

// Options configures a Client. Only BaseURL is required.
type Options struct {
	// BaseURL is the API root ending in /api, see ResolveBaseURL
	BaseURL string

	// Timeout bounds each HTTP attempt (default: cardsense.DefaultRequestTimeout)
	Timeout time.Duration

	// HTTPClient is used instead of the default client. A cookie jar is added when it has none,
	// the session cookie has to travel with every request.
	HTTPClient *http.Client

	// Jar overrides the cookie jar, e.g. one restored by the sessionstore package
	Jar http.CookieJar

	// RateLimit is the maximum number of requests per second, 0 disables pacing
	RateLimit float64
	RateBurst int

	Metrics   *metrics.ClientMetrics
	Logger    *slog.Logger
	UserAgent string
}

// NewClient creates a client for the API at opts.BaseURL with an empty CSRF session.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	apiURL, err := url.Parse(base)
	if err != nil || apiURL.Scheme == "" || apiURL.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cardsense.DefaultRequestTimeout
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	if opts.Jar != nil {
		httpClient.Jar = opts.Jar
	}
	if httpClient.Jar == nil {
		jar, err := NewCookieJar()
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		apiURL:     apiURL,
		httpClient: httpClient,
		session:    &Session{},
		timeout:    timeout,
		limiter:    limiter,
		metrics:    opts.Metrics,
		logger:     logger.With(slog.String("component", "api_client")),
		userAgent:  opts.UserAgent,
	}, nil
}

// NewCookieJar returns the jar used for session credentials.
func NewCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// BaseURL returns the API root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIURL returns the parsed API root, used as the key for cookie lookups
func (c *Client) APIURL() *url.URL {
	u := *c.apiURL
	return &u
}

// Jar returns the cookie jar holding the session credentials
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// Session returns the CSRF token cache owned by this client
func (c *Client) Session() *Session {
	return c.session
}
