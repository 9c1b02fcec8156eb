package usecases

import (
	"path/filepath"
	"strings"
)

// ArtifactPaths names the files an audit cycle produces: the specification
// snapshot, the traffic snapshot directory, and the report.
type ArtifactPaths struct {
	SpecFile   string
	TrafficDir string
	ReportFile string
}

// DefaultArtifactPaths lays artifacts out under root.
func DefaultArtifactPaths(root string) ArtifactPaths {
	return ArtifactPaths{
		SpecFile:   filepath.Join(root, "spec.json"),
		TrafficDir: filepath.Join(root, "traffic"),
		ReportFile: filepath.Join(root, "report.txt"),
	}
}

// TrafficGlob matches every traffic snapshot in the artifact set.
func (p ArtifactPaths) TrafficGlob() string {
	return filepath.Join(p.TrafficDir, "*.json")
}

// TrafficFile returns the snapshot path for a suite name.
func (p ArtifactPaths) TrafficFile(suite string) string {
	return filepath.Join(p.TrafficDir, sanitizeSuite(suite)+".json")
}

// sanitizeSuite maps a caller-supplied suite name to a path-safe file stem so
// it cannot escape the traffic directory.
func sanitizeSuite(suite string) string {
	var b strings.Builder
	for _, r := range suite {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	stem := strings.Trim(b.String(), "-")
	if stem == "" {
		return "all"
	}
	return stem
}
