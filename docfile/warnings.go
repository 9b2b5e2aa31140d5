package docfile

import "strings"

// WarningCode classifies a recoverable problem found while opening a
// document.
type WarningCode int

const (
	// WarnCacheUnreadable marks a layout-cache entry that could not be
	// decoded: truncated, corrupt, or written by a future format version.
	WarnCacheUnreadable WarningCode = iota + 1
	// WarnCacheInvalid marks a layout cache that decoded cleanly but
	// contradicts the document body it arrived with.
	WarnCacheInvalid
	// WarnMissingMedia marks an object whose media entry is absent from
	// the archive; the object keeps its metadata but has no data.
	WarnMissingMedia
)

// Warning describes a non-fatal problem encountered while reading a
// document. Warnings never stop an open; they report what was degraded.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// FormatWarnings joins warnings into a one-per-line display string.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.Message
	}
	return strings.Join(lines, "\n")
}
