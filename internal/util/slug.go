package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9]+`)
	fileExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "file"
	}
	return s
}

// SafeFilename slugs the base name of an uploaded file and keeps its extension.
func SafeFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if !fileExt.MatchString(ext) {
		ext = ""
	}
	return Slugify(base) + ext
}
