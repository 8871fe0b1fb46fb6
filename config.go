package cardsense

import "time"

/*
config.go holds values shared by every package of the client:
- the names of the cookies and headers used by the backend's session and CSRF protection
- request defaults
- common maps used to validate enum-like configuration values
*/

const (
	CSRFCookieName    = "csrftoken"
	CSRFHeaderName    = "X-CSRFToken"
	CSRFBodyField     = "csrf_token"
	SessionCookieName = "sessionid"
	RequestIDHeader   = "X-Request-ID"

	// DefaultRequestTimeout bounds each HTTP attempt made by the request wrapper
	DefaultRequestTimeout = 15 * time.Second

	DefaultAPIPort = 8000
	APIPathSuffix  = "/api"

	// DefaultBaseURL is used when nothing better can be derived from the platform
	DefaultBaseURL = "http://localhost:8000/api"

	// AndroidEmulatorHost is the address of the host machine as seen from the android emulator
	AndroidEmulatorHost = "10.0.2.2"
)

var ValidEnvironments = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

var ValidPlatforms = map[string]bool{ // where the client runs, see client.ResolveBaseURL
	"android": true,
	"ios":     true,
	"device":  true,
	"web":     true,
}

// SafeMethods never change server state and are sent without requiring a CSRF token
var SafeMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"OPTIONS": true,
	"TRACE":   true,
}
