package types

import "time"

type VersionType string

const (
	VersionTypeMajor VersionType = "major"
	VersionTypeMinor VersionType = "minor"
	VersionTypePatch VersionType = "patch"
)

// VersionEntry is one entry of the application's version history.
type VersionEntry struct {
	ID          string      `json:"id"`
	Version     string      `json:"version"`
	BuildNumber string      `json:"buildNumber"`
	ReleaseDate time.Time   `json:"releaseDate"`
	Changes     []string    `json:"changes"`
	Type        VersionType `json:"type"`
}
