package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	cardsense "github.com/cardsense/cardsense"
	"github.com/cardsense/cardsense/internal/logger"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "lkIB53@6O^Y"
	testUserID   = 42
)

type recordedCall struct {
	Method     string
	Path       string
	CSRFHeader string
}

// fakeBackend is a small Django-like API: a gorilla/sessions cookie carries the login and unsafe
// methods must echo the csrftoken cookie in the X-CSRFToken header.
type fakeBackend struct {
	server *httptest.Server
	store  *sessions.CookieStore

	mu          sync.Mutex
	csrfFetches int
	calls       []recordedCall
	rejectCSRF  int // upcoming unsafe requests answered with a CSRF 403 regardless of the token
	budgets     map[string]map[string]any
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	f := &fakeBackend{
		store:   sessions.NewCookieStore([]byte("test-session-key-0123456789abcdef")),
		budgets: map[string]map[string]any{},
	}
	f.store.Options = &sessions.Options{Path: "/", HttpOnly: true, MaxAge: 3600}

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(f.record)
		r.Get("/auth/csrf/", f.handleCSRF)
		r.Get("/accounts/health/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		})

		r.Group(func(r chi.Router) {
			r.Use(f.csrfProtect)
			r.Post("/auth/login/", f.handleLogin)
			r.Post("/auth/logout/", f.handleLogout)
			r.Get("/auth/me/", f.handleMe)
			r.Get("/budgets/", f.handleListBudgets)
			r.Post("/budgets/", f.handleCreateBudget)
			r.Delete("/budgets/", f.handleDeleteBudget)
		})
	})

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBackend) apiURL() string {
	return f.server.URL + "/api"
}

func (f *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{
			Method:     r.Method,
			Path:       r.URL.Path,
			CSRFHeader: r.Header.Get(cardsense.CSRFHeaderName),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsUnsafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		f.mu.Lock()
		forced := f.rejectCSRF > 0
		if forced {
			f.rejectCSRF--
		}
		f.mu.Unlock()

		cookie, err := r.Cookie(cardsense.CSRFCookieName)
		if forced || err != nil || cookie.Value == "" || r.Header.Get(cardsense.CSRFHeaderName) != cookie.Value {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "CSRF Failed: CSRF token missing or incorrect."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) handleCSRF(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.csrfFetches++
	f.mu.Unlock()

	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: cardsense.CSRFCookieName, Value: token, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{cardsense.CSRFBodyField: token})
}

func (f *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request"})
		return
	}
	if req.Email != testEmail || req.Password != testPassword {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   map[string]any{"message": "Invalid email or password"},
		})
		return
	}

	session, _ := f.store.Get(r, cardsense.SessionCookieName)
	session.Values["user_id"] = testUserID
	if err := session.Save(r, w); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"data":    map[string]any{"user": testUser()},
	})
}

func (f *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := f.store.Get(r, cardsense.SessionCookieName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (f *fakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	if !f.loggedIn(r) {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	writeJSON(w, http.StatusOK, testUser())
}

func (f *fakeBackend) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	if !f.loggedIn(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	f.mu.Lock()
	list := make([]map[string]any, 0, len(f.budgets))
	for _, b := range f.budgets {
		list = append(list, b)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
}

func (f *fakeBackend) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Malformed request"})
		return
	}
	ym, _ := req["year_month"].(string)
	if len(ym) != 7 || ym[5:] > "12" || ym[5:] < "01" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"year_month": []string{"Enter a valid month in YYYY-MM format."},
			"amount":     []string{"Ensure this value is greater than or equal to 0."},
		})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	budget := map[string]any{
		"id":              len(f.budgets) + 1,
		"year_month":      ym,
		"amount":          req["amount"],
		"spent":           "0.00",
		"remaining":       req["amount"],
		"percentage_used": 0,
	}
	f.budgets[ym] = budget
	writeJSON(w, http.StatusCreated, budget)
}

func (f *fakeBackend) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ym := r.URL.Query().Get("year_month")
	f.mu.Lock()
	_, found := f.budgets[ym]
	delete(f.budgets, ym)
	f.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) loggedIn(r *http.Request) bool {
	session, err := f.store.Get(r, cardsense.SessionCookieName)
	if err != nil {
		return false
	}
	id, ok := session.Values["user_id"].(int)
	return ok && id == testUserID
}

func (f *fakeBackend) setRejectCSRF(n int) {
	f.mu.Lock()
	f.rejectCSRF = n
	f.mu.Unlock()
}

func (f *fakeBackend) tokenFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.csrfFetches
}

func (f *fakeBackend) firstCall() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return recordedCall{}
	}
	return f.calls[0]
}

// callsTo returns the recorded requests for method and path, in order
func (f *fakeBackend) callsTo(method, path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func testUser() map[string]any {
	return map[string]any{"id": testUserID, "email": testEmail, "first_name": "Jane", "last_name": "Doe"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestClient creates a client for baseURL with logging discarded
func newTestClient(t *testing.T, baseURL string, configure ...func(*Options)) *Client {
	t.Helper()
	opts := Options{BaseURL: baseURL, Logger: logger.Discard()}
	for _, fn := range configure {
		fn(&opts)
	}
	c, err := NewClient(opts)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// newStubServer serves every request under /api with handler
func newStubServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	router.HandleFunc("/api/*", handler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}
