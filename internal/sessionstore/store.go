// Package sessionstore keeps the backend session cookies of the cardsense command between runs.
// Only cookies are stored; the CSRF token is fetched again by each process.
package sessionstore

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StoredCookie is a cookie as written to the session file
type StoredCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// State is the content of the session file
type State struct {
	BaseURL string         `yaml:"base_url"`
	Email   string         `yaml:"email,omitempty"`
	SavedAt time.Time      `yaml:"saved_at"`
	Cookies []StoredCookie `yaml:"cookies"`
}

// Load reads the session file at path.
// If the file does not exist, an empty state is returned.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &s, nil
}

// Save writes the state to path, creating directories as needed.
func (s *State) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// the file holds live credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Clear removes the session file, a missing file is not an error
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Capture records the cookies jar sends to apiURL
func Capture(jar http.CookieJar, apiURL *url.URL, email string) *State {
	s := &State{
		BaseURL: apiURL.String(),
		Email:   email,
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, c := range jar.Cookies(apiURL) {
		s.Cookies = append(s.Cookies, StoredCookie{Name: c.Name, Value: c.Value})
	}
	return s
}

// Restore puts the stored cookies back into jar.
// Cookies saved for a different API are ignored; it reports whether anything was restored.
func (s *State) Restore(jar http.CookieJar, apiURL *url.URL) bool {
	if s.BaseURL != apiURL.String() || len(s.Cookies) == 0 {
		return false
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(apiURL, cookies)
	return true
}
