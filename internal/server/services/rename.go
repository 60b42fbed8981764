package services

import (
	"fmt"
	"strings"
)

// deriveObjectKey builds the object-store key for an uploaded file from its
// display name and the client timestamp (milliseconds). The key stays
// stable for the whole upload session and avoids collisions between files
// that share a display name.
//
// "my report.pdf" + 1700000000000 -> "my_report_1700000000.pdf"
func deriveObjectKey(displayName string, timestamp int64) string {
	name := sanitizeFileName(displayName)
	seconds := timestamp / 1000

	base, ext, hasExt := strings.Cut(name, ".")
	if base == "" {
		base = "file"
	}
	if hasExt && ext != "" {
		return fmt.Sprintf("%s_%d.%s", base, seconds, ext)
	}
	return fmt.Sprintf("%s_%d", base, seconds)
}

// sanitizeFileName collapses whitespace runs to single underscores and
// strips path-traversal characters so the result is safe as an object key.
func sanitizeFileName(name string) string {
	name = strings.Join(strings.Fields(name), "_")

	replacer := strings.NewReplacer("/", "", "\\", "", ":", "", "..", "")
	name = replacer.Replace(name)

	return strings.TrimLeft(name, ".")
}
