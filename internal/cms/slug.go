// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cms

import (
	"regexp"
	"strings"
)

var (
	slugStrip = regexp.MustCompile(`[^\w\s-]`)
	slugDash  = regexp.MustCompile(`[\s_-]+`)
)

// Slugify turns a title into a URL slug.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
