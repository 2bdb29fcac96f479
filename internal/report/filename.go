package report

import (
	"regexp"
	"strings"
	"time"
)

const maxNameLength = 100

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// Kind selects the artifact a derived filename is for.
type Kind int

const (
	KindMarkdown Kind = iota
	KindJSON
)

// SanitizeFilename turns s into a filesystem-safe name. Runs of characters
// other than ASCII letters, digits and '-' become a single '-'. The result
// is trimmed of hyphens, capped at 100 bytes and never empty.
// SanitizeFilename(SanitizeFilename(s)) == SanitizeFilename(s).
func SanitizeFilename(s string) string {
	name := strings.Trim(unsafeRun.ReplaceAllString(s, "-"), "-")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], "-")
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// DeriveFilename returns <sanitized-topic>_<YYYYMMDD_HHMMSS>.md, or the
// _backup.json variant for KindJSON.
func DeriveFilename(topic string, ts time.Time, kind Kind) string {
	base := SanitizeFilename(topic) + "_" + ts.Format("20060102_150405")
	if kind == KindJSON {
		return base + "_backup.json"
	}
	return base + ".md"
}

func anchor(title string) string {
	return strings.ToLower(SanitizeFilename(title))
}
