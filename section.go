package docbot

import "strings"

// Limits applied when distilling a document into index fields.
const (
	MaxHeadings          = 60
	MaxLeadLen           = 600
	MaxTitleLen          = 200
	MaxSectionHeadingLen = 200
	DefaultBodyPrefixLen = 4000
)

// HeadingSeparator joins heading texts in HeadingPath and Headings.
const HeadingSeparator = " | "

// IntroHeading labels text that appears before the first heading.
const IntroHeading = "INTRO"

// Section is a run of document text under its nearest heading. Sections are
// produced on demand for quoting and are never stored.
type Section struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// SectionBuilder accumulates text under headings and drops sections that
// end up empty. The zero value is ready to use.
type SectionBuilder struct {
	sections []Section
	heading  string
	started  bool
	text     []string
}

// Heading closes the current section and starts a new one.
func (b *SectionBuilder) Heading(h string) {
	b.flush()
	b.heading = Truncate(h, MaxSectionHeadingLen)
	b.started = true
}

// Text appends a non-empty text block to the current section.
func (b *SectionBuilder) Text(t string) {
	if t == "" {
		return
	}
	if !b.started {
		b.heading = IntroHeading
		b.started = true
	}
	b.text = append(b.text, t)
}

// Sections closes the current section and returns all non-empty sections.
func (b *SectionBuilder) Sections() []Section {
	b.flush()
	return b.sections
}

func (b *SectionBuilder) flush() {
	if len(b.text) == 0 {
		return
	}
	text := strings.TrimSpace(strings.Join(b.text, "\n"))
	if text != "" {
		b.sections = append(b.sections, Section{Heading: b.heading, Text: text})
	}
	b.text = nil
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// JoinHeadings joins up to MaxHeadings heading texts with HeadingSeparator.
func JoinHeadings(headings []string) string {
	if len(headings) > MaxHeadings {
		headings = headings[:MaxHeadings]
	}
	return strings.Join(headings, HeadingSeparator)
}

// BodyPrefix joins text blocks with spaces, stopping at the first block
// that brings the total to budget characters, and truncates to budget.
// A budget of zero or less selects DefaultBodyPrefixLen.
type BodyPrefix struct {
	Budget int
	parts  []string
	total  int
}

// Add appends t and reports whether more text is wanted.
func (p *BodyPrefix) Add(t string) bool {
	if t == "" {
		return !p.Full()
	}
	if p.Full() {
		return false
	}
	p.parts = append(p.parts, t)
	p.total += len([]rune(t))
	return !p.Full()
}

// Full reports whether the budget has been reached.
func (p *BodyPrefix) Full() bool {
	return p.total >= p.budget()
}

// String returns the accumulated prefix.
func (p *BodyPrefix) String() string {
	return Truncate(strings.Join(p.parts, " "), p.budget())
}

func (p *BodyPrefix) budget() int {
	if p.Budget <= 0 {
		return DefaultBodyPrefixLen
	}
	return p.Budget
}
