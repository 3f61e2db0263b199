// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cms

import (
	"fmt"
)

// Section names a replaceable list in the cms document.
type Section string

const (
	SectionHighlights   Section = "highlights"
	SectionExperiences  Section = "experiences"
	SectionProjects     Section = "projects"
	SectionImpactStats  Section = "impact-stats"
	SectionTestimonials Section = "testimonials"
	SectionBlogs        Section = "blogs"
)

// Sections lists every replaceable section.
var Sections = []Section{
	SectionHighlights,
	SectionExperiences,
	SectionProjects,
	SectionImpactStats,
	SectionTestimonials,
	SectionBlogs,
}

// ParseSection resolves a section name as used in URLs.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown section %q", ErrUnknownSection, name)
}

// UpdatedStatus is the status code reported after a successful replace.
func (s Section) UpdatedStatus() string {
	if s == SectionImpactStats {
		return "impact-updated"
	}
	return string(s) + "-updated"
}

// InvalidReason is the error code reported for a malformed payload.
func (s Section) InvalidReason() string {
	return string(s) + "-invalid"
}
