package version

import "fmt"

// Build-time variables set via ldflags, e.g.
// -X github.com/cardsense/cardsense/internal/version.version=v0.3.0
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info describes the running cardsense binary
type Info struct {
	Version   string `json:"version" example:"v0.3.0"`
	BuildDate string `json:"build_date" example:"2025-12-18T10:00:00Z"`
	GitCommit string `json:"git_commit" example:"abc123"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", i.Version, i.BuildDate, i.GitCommit)
}

// UserAgent is sent on every API request so backend logs can tell client builds apart.
func (i Info) UserAgent() string {
	return "cardsense-cli/" + i.Version
}
