package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	cardsense "github.com/cardsense/cardsense"
	"github.com/cardsense/cardsense/internal/metrics"
)

const csrfEndpoint = "/auth/csrf/"

// EnsureToken makes sure the session holds a CSRF token, fetching one from the backend when it does not.
//
// Failures are logged and otherwise ignored: the request that needed the token is still sent and the
// backend decides whether to accept it.
func (c *Client) EnsureToken(ctx context.Context) {
	if c.session.HasToken() {
		return
	}

	tok, source, err := c.fetchToken(ctx)
	if err != nil {
		c.metrics.RecordTokenFetch(metrics.TokenFetchFailed)
		c.logger.Warn("could not fetch csrf token", slog.String("error", err.Error()))
		return
	}
	c.metrics.RecordTokenFetch(source)
	if tok == "" {
		c.logger.Warn("csrf endpoint returned no token")
		return
	}

	c.session.SetToken(tok)
	c.logger.Debug("csrf token cached", slog.String("source", source))
}

// fetchToken calls the csrf endpoint and extracts the token, trying in order the response header,
// the body, the cookie jar and finally the raw Set-Cookie headers.
// The returned source is one of the metrics.TokenFrom* values, or metrics.TokenMissing.
func (c *Client) fetchToken(ctx context.Context) (string, string, error) {
	res, err := c.send(ctx, http.MethodGet, c.baseURL+csrfEndpoint, nil, c.baseHeader(nil))
	if err != nil {
		return "", "", err
	}
	if !res.OK() {
		c.logger.Warn("csrf endpoint returned an error", slog.Int("status", res.StatusCode))
		return "", metrics.TokenMissing, nil
	}

	if tok := tokenFromHeader(res.Header); tok != "" {
		return tok, metrics.TokenFromHeader, nil
	}
	if tok := tokenFromBody(res.Body); tok != "" {
		return tok, metrics.TokenFromBody, nil
	}
	if tok := c.tokenFromJar(); tok != "" {
		return tok, metrics.TokenFromCookieJar, nil
	}
	if tok := tokenFromSetCookie(res.Header); tok != "" {
		return tok, metrics.TokenFromSetCookie, nil
	}
	return "", metrics.TokenMissing, nil
}

// observeToken refreshes the cached token from a response that carries a newer one
func (c *Client) observeToken(res *RawResponse) {
	tok := tokenFromHeader(res.Header)
	if tok == "" {
		tok = tokenFromSetCookie(res.Header)
	}
	if tok != "" && tok != c.session.Token() {
		c.session.SetToken(tok)
		c.logger.Debug("csrf token refreshed from response")
	}
}

func tokenFromHeader(h http.Header) string {
	return h.Get(cardsense.CSRFHeaderName)
}

func tokenFromBody(body []byte) string {
	var payload map[string]any
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	tok, _ := payload[cardsense.CSRFBodyField].(string)
	return tok
}

func (c *Client) tokenFromJar() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.apiURL) {
		if cookie.Name == cardsense.CSRFCookieName && cookie.Value != "" {
			if v, err := url.QueryUnescape(cookie.Value); err == nil {
				return v
			}
			return cookie.Value
		}
	}
	return ""
}

func tokenFromSetCookie(h http.Header) string {
	for _, line := range h.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}
		if cookie.Name == cardsense.CSRFCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}
