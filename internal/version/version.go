// Package version holds build information for promptdeck.
// Values are injected at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// Version is the semantic version of the application
	Version = "0.1.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// releaseNames maps major.minor.0 releases to their card names.
var releaseNames = map[string]string{
	"0.1.0": "Deuce",
	"0.2.0": "Trey",
	"0.3.0": "Jack",
	"0.4.0": "Queen",
	"0.5.0": "King",
	"1.0.0": "Ace",
}

// Info is the version information reported by `promptdeck version` and /healthz.
type Info struct {
	Version     string `json:"version"`
	ReleaseName string `json:"release_name,omitempty"`
	GitCommit   string `json:"git_commit"`
	BuildDate   string `json:"build_date"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
	Prerelease  bool   `json:"prerelease"`
}

// ReleaseNameFor returns the release name of version, using the major.minor.0
// entry for patch releases. Unknown or invalid versions have no name.
func ReleaseNameFor(version string) string {
	if name, ok := releaseNames[version]; ok {
		return name
	}
	sv, err := semver.NewVersion(version)
	if err != nil {
		return ""
	}
	return releaseNames[fmt.Sprintf("%d.%d.0", sv.Major(), sv.Minor())]
}

// GetInfo returns the build information, failing if Version is not valid semver.
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:     Version,
		ReleaseName: ReleaseNameFor(Version),
		GitCommit:   GitCommit,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Prerelease:  sv.Prerelease() != "",
	}, nil
}

// GetFormattedVersion returns a one-line version string.
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("promptdeck v%s (invalid version)", Version)
	}

	head := fmt.Sprintf("promptdeck v%s", info.Version)
	if info.ReleaseName != "" {
		head += fmt.Sprintf(" '%s'", info.ReleaseName)
	}
	parts := []string{head}

	if info.GitCommit != "unknown" && info.GitCommit != "" {
		short := info.GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		parts = append(parts, "commit "+short)
	}
	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns multi-line version information.
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("promptdeck v%s (error: %v)", Version, err)
	}

	lines := []string{
		GetFormattedVersion(),
		"Git Commit: " + info.GitCommit,
		"Build Date: " + info.BuildDate,
		"Go Version: " + info.GoVersion,
		"Platform: " + info.Platform,
	}
	return strings.Join(lines, "\n")
}

// CompareVersions returns -1, 0 or 1 as v1 is older, equal or newer than v2.
func CompareVersions(v1, v2 string) (int, error) {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version v1 '%s': %w", v1, err)
	}
	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version v2 '%s': %w", v2, err)
	}
	return sv1.Compare(sv2), nil
}

// SetBuildInfo overrides the build information.
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}
