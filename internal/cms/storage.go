// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cms stores the portfolio content: profile, highlights,
// experiences, projects, impact stats, testimonials and blog posts.
package cms

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/docstore"
)

// DocumentName is the name the content document is stored under.
const DocumentName = "cms"

var (
	ErrBlogNotFound   = errors.New("blog not found")
	ErrInvalidSection = errors.New("invalid section payload")
	ErrUnknownSection = errors.New("unknown section")
)

// Storage reads and writes the content document.
type Storage struct {
	backend docstore.Backend
	now     func() time.Time
	mu      sync.Mutex
}

// NewStorage creates a Storage on the given backend.
func NewStorage(backend docstore.Backend) *Storage {
	return &Storage{backend: backend, now: time.Now}
}

// SetClock replaces the time source. Intended for tests.
func (s *Storage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Storage) load(ctx context.Context) (*Content, error) {
	body, err := s.backend.Load(ctx, DocumentName)
	if errors.Is(err, docstore.ErrNotFound) {
		c := &Content{}
		c.fillEmpty()
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	var c Content
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}
	c.fillEmpty()
	return &c, nil
}

func (s *Storage) save(ctx context.Context, c *Content) error {
	body, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}
	if err := s.backend.Save(ctx, DocumentName, body); err != nil {
		return fmt.Errorf("saving content: %w", err)
	}
	return nil
}

// Content returns the whole document with every list sorted for display.
func (s *Storage) Content(ctx context.Context) (*Content, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sortByOrder(c.Highlights, func(h Highlight) *int { return h.Order })
	sortByOrder(c.Experiences, func(e Experience) *int { return e.Order })
	sortByOrder(c.Projects, func(p Project) *int { return p.Order })
	sortByOrder(c.ImpactStats, func(i ImpactStat) *int { return i.Order })
	sortByOrder(c.Testimonials, func(t Testimonial) *int { return t.Order })
	sortBlogs(c.Blogs)

	return c, nil
}

func (s *Storage) Profile(ctx context.Context) (Profile, error) {
	c, err := s.load(ctx)
	if err != nil {
		return Profile{}, err
	}
	return c.Profile, nil
}

func (s *Storage) Highlights(ctx context.Context) ([]Highlight, error) {
	c, err := s.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.Highlights, nil
}

func (s *Storage) Experiences(ctx context.Context) ([]Experience, error) {
	c, err := s.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.Experiences, nil
}

func (s *Storage) Projects(ctx context.Context) ([]Project, error) {
	c, err := s.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.Projects, nil
}

func (s *Storage) ImpactStats(ctx context.Context) ([]ImpactStat, error) {
	c, err := s.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.ImpactStats, nil
}

func (s *Storage) Testimonials(ctx context.Context) ([]Testimonial, error) {
	c, err := s.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.Testimonials, nil
}

// Blogs returns every post, newest first.
func (s *Storage) Blogs(ctx context.Context) ([]Blog, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sortBlogs(c.Blogs)
	return c.Blogs, nil
}

// RecentBlogs returns the n newest posts. n <= 0 returns every post.
func (s *Storage) RecentBlogs(ctx context.Context, n int) ([]Blog, error) {
	blogs, err := s.Blogs(ctx)
	if err != nil {
		return nil, err
	}
	return limitBlogs(blogs, n), nil
}

func limitBlogs(blogs []Blog, n int) []Blog {
	if n <= 0 || n >= len(blogs) {
		return blogs
	}
	return blogs[:n]
}

// BlogBySlug returns the post with the given slug.
func (s *Storage) BlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range c.Blogs {
		if c.Blogs[i].Slug == slug {
			return &c.Blogs[i], nil
		}
	}
	return nil, ErrBlogNotFound
}

// BlogsByTag returns posts carrying tag, ignoring case, newest first.
func (s *Storage) BlogsByTag(ctx context.Context, tag string) ([]Blog, error) {
	blogs, err := s.Blogs(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(blogs, func(b Blog) bool {
		return !slices.ContainsFunc(b.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
	}), nil
}

// SearchBlogs matches query against title, excerpt, content and tags.
func (s *Storage) SearchBlogs(ctx context.Context, query string) ([]Blog, error) {
	blogs, err := s.Blogs(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	return slices.DeleteFunc(blogs, func(b Blog) bool {
		return !blogMatches(b, q)
	}), nil
}

func blogMatches(b Blog, q string) bool {
	if strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Excerpt), q) ||
		strings.Contains(strings.ToLower(b.Content), q) {
		return true
	}
	return slices.ContainsFunc(b.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

// Tags returns the distinct tags of all posts in first-seen order.
func (s *Storage) Tags(ctx context.Context) ([]string, error) {
	blogs, err := s.Blogs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	tags := []string{}
	for _, b := range blogs {
		for _, t := range b.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}

// UpdateProfile merges p into the stored profile. Blank fields keep their
// previous value.
func (s *Storage) UpdateProfile(ctx context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return Profile{}, err
	}

	prev := c.Profile
	c.Profile = Profile{
		Name:        keep(p.Name, prev.Name),
		Headline:    keep(p.Headline, prev.Headline),
		Subheadline: keep(p.Subheadline, prev.Subheadline),
		Summary:     keep(p.Summary, prev.Summary),
		Location:    keep(p.Location, prev.Location),
		Email:       keep(p.Email, prev.Email),
		Phone:       keep(p.Phone, prev.Phone),
		LinkedIn:    keep(p.LinkedIn, prev.LinkedIn),
	}

	if err := s.save(ctx, c); err != nil {
		return Profile{}, err
	}
	return c.Profile, nil
}

func keep(next, prev string) string {
	if v := strings.TrimSpace(next); v != "" {
		return v
	}
	return prev
}

// ReplaceSection swaps a whole list for the JSON array in raw.
func (s *Storage) ReplaceSection(ctx context.Context, section Section, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return err
	}

	switch section {
	case SectionHighlights:
		err = decodeList(raw, &c.Highlights)
		for i := range c.Highlights {
			if c.Highlights[i].IconKey == "" {
				c.Highlights[i].IconKey = DefaultIconKey
			}
		}
	case SectionExperiences:
		prev := c.Experiences
		err = decodeList(raw, &c.Experiences)
		for i := range c.Experiences {
			if c.Experiences[i].Bullets == nil {
				c.Experiences[i].Bullets = []string{}
				if i < len(prev) && prev[i].Bullets != nil {
					c.Experiences[i].Bullets = prev[i].Bullets
				}
			}
		}
	case SectionProjects:
		err = decodeList(raw, &c.Projects)
	case SectionImpactStats:
		err = decodeList(raw, &c.ImpactStats)
	case SectionTestimonials:
		err = decodeList(raw, &c.Testimonials)
	case SectionBlogs:
		err = decodeList(raw, &c.Blogs)
		if err == nil {
			s.fillBlogDefaults(c)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if err != nil {
		return err
	}

	return s.save(ctx, c)
}

// DefaultIconKey is used for highlights without an icon.
const DefaultIconKey = "MdLeaderboard"

// decodeList decodes raw into dst, requiring a JSON array.
func decodeList[T any](raw []byte, dst *[]T) error {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("%w: expected a JSON array", ErrInvalidSection)
	}
	var items []T
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSection, err)
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
	return nil
}

func (s *Storage) fillBlogDefaults(c *Content) {
	now := s.now().UTC().Format(time.RFC3339)
	for i := range c.Blogs {
		b := &c.Blogs[i]
		if b.ID == 0 {
			b.ID = i + 1
		}
		if b.Slug == "" {
			b.Slug = Slugify(b.Title)
		}
		if b.Date == "" {
			b.Date = now
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
		if b.Metadata.Title == "" {
			b.Metadata.Title = b.Title
		}
		if b.Metadata.Keywords == nil {
			b.Metadata.Keywords = []string{}
		}
		if b.Metadata.Author == "" {
			b.Metadata.Author = c.Profile.Name
		}
		if b.Metadata.PublishedTime == "" {
			b.Metadata.PublishedTime = now
		}
		if b.Metadata.ModifiedTime == "" {
			b.Metadata.ModifiedTime = now
		}
	}
}

// sortByOrder sorts items by their order field; missing orders count as 0
// and ties keep their stored position.
func sortByOrder[T any](items []T, order func(T) *int) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(orderOf(order(a)), orderOf(order(b)))
	})
}

// sortBlogs sorts posts newest first. Unparseable dates sort last.
func sortBlogs(blogs []Blog) {
	slices.SortStableFunc(blogs, func(a, b Blog) int {
		return parseDate(b.Date).Compare(parseDate(a.Date))
	})
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(v string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
