package util

import "strings"

const fallbackFileName = "file"

// SanitizeFileName removes path separators from a client-supplied name so it
// can be stored and shown. Names that end up empty or are dot-only become "file".
func SanitizeFileName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "\x00", "")
	if s == "" || s == "." || s == ".." {
		return fallbackFileName
	}
	return s
}

var dispositionReplacer = strings.NewReplacer("\r", "_", "\n", "_", "\"", "_")

// DispositionFileName makes name safe to embed in a quoted
// Content-Disposition filename parameter.
func DispositionFileName(name string) string {
	s := dispositionReplacer.Replace(name)
	if s == "" {
		return fallbackFileName
	}
	return s
}
