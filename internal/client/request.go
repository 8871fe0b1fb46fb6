package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	cardsense "github.com/cardsense/cardsense"
	"github.com/google/uuid"
)

// RequestOptions describes a call made through Client.Request
type RequestOptions struct {
	Method string      // defaults to GET
	Body   any         // encoded as JSON when not nil
	Query  url.Values  // appended to the endpoint
	Header http.Header // merged over the default JSON headers
}

// RawResponse is a fully read HTTP response
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Request sends a request to endpoint (relative to the API root, e.g. "/budgets/").
//
// Unsafe methods get a CSRF token first when the session has none. A 403 to an unsafe method
// invalidates the token, fetches a new one and resends the request exactly once; the second response
// is returned whatever its status. Every response that is returned also refreshes the cached token
// when it carries a newer one.
//
// An error is only returned when no response was received, see TransportError.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*RawResponse, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	unsafe := IsUnsafeMethod(method)
	fullURL := c.endpointURL(endpoint, opts.Query)

	var payload []byte
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	state := initialState(c.session)
	for {
		if state == stateNoToken {
			if unsafe {
				c.EnsureToken(ctx)
			}
			state = stateTokenCached
		}

		res, err := c.send(ctx, method, fullURL, payload, c.baseHeader(opts.Header))
		if err != nil {
			return nil, err
		}

		next, done := nextState(state, unsafe, res.StatusCode)
		if done {
			c.observeToken(res)
			return res, nil
		}

		c.logger.Debug("request forbidden, retrying with a fresh csrf token",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
		)
		c.metrics.RecordRetry()
		// the rejected response is not observed, the token is replaced by a fresh fetch
		c.session.Invalidate()
		c.EnsureToken(ctx)
		state = next
	}
}

// baseHeader builds the headers for one attempt. The CSRF header is read from the session each
// time so a retry carries the refreshed token.
func (c *Client) baseHeader(extra http.Header) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	for k, vs := range extra {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if tok := c.session.Token(); tok != "" {
		h.Set(cardsense.CSRFHeaderName, tok)
	}
	return h
}

func (c *Client) endpointURL(endpoint string, query url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := c.baseURL + endpoint
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// send performs a single HTTP attempt bounded by the client timeout and reads the whole body.
func (c *Client) send(ctx context.Context, method, fullURL string, payload []byte, header http.Header) (*RawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newTransportError("wait for rate limiter", fullURL, err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, fullURL, body)
	if err != nil {
		return nil, newTransportError("create request", fullURL, err)
	}
	req.Header = header.Clone()

	requestID := uuid.NewString()
	req.Header.Set(cardsense.RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		c.logger.Debug("api request failed",
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("url", fullURL),
			slog.String("error", err.Error()),
		)
		return nil, newTransportError(strings.ToLower(method), fullURL, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		return nil, newTransportError("read response from", fullURL, err)
	}

	duration := time.Since(start)
	c.metrics.ObserveRequest(method, res.StatusCode, duration)
	c.logger.Debug("api request",
		slog.String("request_id", requestID),
		slog.String("method", method),
		slog.String("url", fullURL),
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", duration),
	)

	return &RawResponse{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       data,
	}, nil
}
