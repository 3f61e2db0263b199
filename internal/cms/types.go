// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cms

// Profile is the site owner's public profile.
type Profile struct {
	Name        string `json:"name"`
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	Summary     string `json:"summary"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LinkedIn    string `json:"linkedin"`
}

type Highlight struct {
	Order       *int   `json:"order,omitempty"`
	Title       string `json:"title"`
	Metric      string `json:"metric"`
	Description string `json:"description"`
	IconKey     string `json:"iconKey"`
}

type Experience struct {
	Order     *int     `json:"order,omitempty"`
	Role      string   `json:"role"`
	Company   string   `json:"company"`
	Timeframe string   `json:"timeframe"`
	Bullets   []string `json:"bullets"`
}

type Project struct {
	Order       *int   `json:"order,omitempty"`
	Name        string `json:"name"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
}

type ImpactStat struct {
	Order    *int   `json:"order,omitempty"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Sublabel string `json:"sublabel"`
}

type Testimonial struct {
	Order *int   `json:"order,omitempty"`
	Quote string `json:"quote"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// BlogMetadata feeds the page head of a blog post.
type BlogMetadata struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Keywords      []string `json:"keywords"`
	Author        string   `json:"author"`
	PublishedTime string   `json:"publishedTime"`
	ModifiedTime  string   `json:"modifiedTime"`
}

type Blog struct {
	Slug     string       `json:"slug"`
	Title    string       `json:"title"`
	Date     string       `json:"date"`
	Excerpt  string       `json:"excerpt"`
	Content  string       `json:"content"`
	Tags     []string     `json:"tags"`
	Metadata BlogMetadata `json:"metadata"`
	ID       int          `json:"id"`
}

// Content is the whole cms document.
type Content struct {
	Profile      Profile       `json:"profile"`
	Highlights   []Highlight   `json:"highlights"`
	Experiences  []Experience  `json:"experiences"`
	Projects     []Project     `json:"projects"`
	ImpactStats  []ImpactStat  `json:"impactStats"`
	Testimonials []Testimonial `json:"testimonials"`
	Blogs        []Blog        `json:"blogs"`
}

// fillEmpty replaces nil lists so they encode as [].
func (c *Content) fillEmpty() {
	if c.Highlights == nil {
		c.Highlights = []Highlight{}
	}
	if c.Experiences == nil {
		c.Experiences = []Experience{}
	}
	if c.Projects == nil {
		c.Projects = []Project{}
	}
	if c.ImpactStats == nil {
		c.ImpactStats = []ImpactStat{}
	}
	if c.Testimonials == nil {
		c.Testimonials = []Testimonial{}
	}
	if c.Blogs == nil {
		c.Blogs = []Blog{}
	}
}

// orderOf treats a missing order as 0.
func orderOf(o *int) int {
	if o == nil {
		return 0
	}
	return *o
}
