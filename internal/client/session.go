package client

import (
	"net/http"
	"strings"
	"sync"

	cardsense "github.com/cardsense/cardsense"
)

// Session is the CSRF token cache for one client.
//
// The token starts empty, is set by the first successful token fetch, is invalidated when an unsafe
// request is rejected with a 403 and is refreshed opportunistically from any response that carries a
// newer one. It lives only in memory.
//
// Two goroutines can both find the cache empty and both fetch a token; the last write wins, which is
// harmless because the backend accepts any token it issued for the session.
type Session struct {
	mu    sync.RWMutex
	token string
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// SetToken caches tok. Empty values are ignored so a failed extraction never clears a good token.
func (s *Session) SetToken(tok string) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// IsUnsafeMethod reports whether method can change server state and therefore needs a CSRF token.
// An empty method is treated as GET.
func IsUnsafeMethod(method string) bool {
	if method == "" {
		return false
	}
	return !cardsense.SafeMethods[strings.ToUpper(method)]
}

// csrfState tracks a single call through the request wrapper.
//
//	stateNoToken --(unsafe: fetch token)--> stateTokenCached --send--+--> done
//	                                                                  |
//	                       unsafe && 403: invalidate, fetch token     v
//	                                                   stateRetryExhausted --send--> done
//
// stateTokenCached means token acquisition has been attempted, a request may leave without a
// token when the backend did not provide one.
type csrfState int

const (
	stateNoToken csrfState = iota
	stateTokenCached
	stateRetryExhausted
)

func (s csrfState) String() string {
	switch s {
	case stateNoToken:
		return "no_token"
	case stateTokenCached:
		return "token_cached"
	case stateRetryExhausted:
		return "retry_exhausted"
	default:
		return "unknown"
	}
}

func initialState(s *Session) csrfState {
	if s.HasToken() {
		return stateTokenCached
	}
	return stateNoToken
}

// nextState returns the state that follows a response with the given status.
// done is true when the response is final and must be returned to the caller.
func nextState(state csrfState, unsafe bool, status int) (next csrfState, done bool) {
	if state == stateTokenCached && unsafe && status == http.StatusForbidden {
		return stateRetryExhausted, false
	}
	return state, true
}
