// Package buildinfo carries version metadata stamped at link time:
//
//	-X 'github.com/m3rciful/regbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/regbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/regbot/core/buildinfo.Date=2026-10-16T12:00:00Z'
package buildinfo

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the source revision.
	Commit = "local"
	// Date is the build time in RFC3339.
	Date = ""
)

// String formats the metadata as "version (commit, date)".
func String() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", " + Date + ")"
}
