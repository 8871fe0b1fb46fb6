package client

import (
	"fmt"
	"net/url"
	"strings"

	cardsense "github.com/cardsense/cardsense"
)

// Platform identifies where the client runs, it decides which address reaches the backend.
type Platform string

const (
	PlatformAndroid Platform = "android" // android emulator
	PlatformIOS     Platform = "ios"     // iOS simulator
	PlatformDevice  Platform = "device"  // physical phone on the developer's network
	PlatformWeb     Platform = "web"     // browser
)

// BaseURLOptions are the inputs of ResolveBaseURL
type BaseURLOptions struct {
	Platform Platform

	// Override is an explicit API location from configuration, it wins over everything else
	Override string

	// Origin is the page origin when running in a browser, e.g. http://127.0.0.1:8081
	Origin string

	// DeviceHost is the developer machine's LAN address used by physical devices
	DeviceHost string
}

// ResolveBaseURL returns the API root, always ending in a single /api with no trailing slash.
//
// In a browser the API host is taken from the page origin so localhost and 127.0.0.1 are never
// mixed: the session and csrftoken cookies are only sent when both are on the same site.
func ResolveBaseURL(opts BaseURLOptions) string {
	if override := strings.TrimSpace(opts.Override); override != "" {
		return normalizeAPIRoot(override)
	}

	switch opts.Platform {
	case PlatformAndroid:
		return hostAPIRoot("http", cardsense.AndroidEmulatorHost)
	case PlatformIOS:
		return hostAPIRoot("http", "localhost")
	case PlatformDevice:
		if host := strings.TrimSpace(opts.DeviceHost); host != "" {
			return hostAPIRoot("http", host)
		}
	case PlatformWeb:
		if u, err := url.Parse(strings.TrimSpace(opts.Origin)); err == nil && u.Hostname() != "" {
			scheme := u.Scheme
			if scheme == "" {
				scheme = "http"
			}
			return hostAPIRoot(scheme, u.Hostname())
		}
	}

	return cardsense.DefaultBaseURL
}

func hostAPIRoot(scheme, host string) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]" // IPv6 literal
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, host, cardsense.DefaultAPIPort, cardsense.APIPathSuffix)
}

func normalizeAPIRoot(raw string) string {
	root := strings.TrimRight(raw, "/")
	if !strings.HasSuffix(root, cardsense.APIPathSuffix) {
		root += cardsense.APIPathSuffix
	}
	return root
}
