package ingestion

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/text"
)

const (
	defaultMinBodyLength = 30
	minTitleLength       = 10
	maxHeadingWords      = 12
	keywordWindow        = 50
)

var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][^.\n]{10,100}$`),
	regexp.MustCompile(`^[A-Z][a-z0-9 \-&(),:]{8,120}$`),
	regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+)+$`),
	regexp.MustCompile(`^(?:[A-Za-z].*Guide|Checklist|Tips|Things to Do)`),
}

var focusKeywords = []string{
	"guide", "how to", "create", "convert", "edit", "checklist", "tips", "tricks",
	"introduction", "overview", "summary", "activity", "activities", "culinary",
	"nightlife", "entertainment", "forms", "sign",
}

var placeholderTitles = map[string]bool{
	"untitled section": true,
	"section":          true,
	"heading":          true,
	"index":            true,
}

var typeRules = []struct {
	keywords []string
	kind     core.SectionType
}{
	{[]string{"guide"}, core.SectionTypeGuide},
	{[]string{"convert", "export"}, core.SectionTypeConversion},
	{[]string{"sign", "signature"}, core.SectionTypeSignatures},
	{[]string{"checklist"}, core.SectionTypeChecklist},
	{[]string{"activity", "activities", "things to do"}, core.SectionTypeActivity},
	{[]string{"packing", "tips", "trick"}, core.SectionTypeTips},
	{[]string{"nightlife", "entertainment"}, core.SectionTypeEntertainment},
}

// Sectioner splits page text into titled candidate sections.
//
// A line is a heading when it looks like a title: capitalized, short, not a
// sentence and not a bullet. Each heading owns the non-empty lines that
// follow it up to the next heading. A page without headings becomes a single
// section titled by its most title-like line, or by the document title and
// page number when no line qualifies.
type Sectioner struct {
	minBodyLength int
	logger        *slog.Logger
}

// SectionerOption configures a Sectioner.
type SectionerOption func(*Sectioner) error

// WithMinBodyLength drops sections whose body has fewer than n characters.
func WithMinBodyLength(n int) SectionerOption {
	return func(s *Sectioner) error {
		if n < 0 {
			return fmt.Errorf("%w: min body length %d", core.ErrInvalidConfig, n)
		}
		s.minBodyLength = n
		return nil
	}
}

// WithSectionerLogger sets a custom logger.
// Default is slog.Default().
func WithSectionerLogger(logger *slog.Logger) SectionerOption {
	return func(s *Sectioner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSectioner creates a Sectioner.
func NewSectioner(opts ...SectionerOption) (*Sectioner, error) {
	s := &Sectioner{
		minBodyLength: defaultMinBodyLength,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "sectioner")
	return s, nil
}

// Sections splits every page of doc into sections. docIndex is the position
// of doc in the job; ordinals run across the whole document.
func (s *Sectioner) Sections(doc *core.Document, docIndex int) []*core.Section {
	var sections []*core.Section
	for _, page := range doc.Pages {
		for _, d := range s.splitPage(doc, page) {
			sections = append(sections, &core.Section{
				Id:            core.IDFromContent(fmt.Sprintf("%s\x00%d\x00%s\x00%s", doc.Filename, page.Number, d.title, d.body)),
				Document:      doc,
				DocumentIndex: docIndex,
				Ordinal:       len(sections),
				Title:         d.title,
				PageNumber:    page.Number,
				Text:          d.body,
				WordCount:     text.WordCount(d.body),
				Type:          Classify(d.title),
			})
		}
	}
	s.logger.Debug("sectioned document", "document", doc.Filename, "pages", len(doc.Pages), "sections", len(sections))
	return sections
}

type draft struct {
	title string
	body  string
}

func (s *Sectioner) splitPage(doc *core.Document, page core.Page) []draft {
	lines := pageLines(page.Text)
	if len(lines) == 0 {
		return nil
	}

	var drafts []draft
	var title string
	var body []string
	flush := func() {
		if title == "" {
			return
		}
		joined := strings.Join(body, "\n")
		if utf8.RuneCountInString(joined) >= s.minBodyLength {
			drafts = append(drafts, draft{title: title, body: joined})
		}
	}

	for _, line := range lines {
		if IsHeading(line) && IsUsableTitle(line) {
			flush()
			title, body = line, nil
			continue
		}
		if title != "" {
			body = append(body, line)
		}
	}
	flush()

	if len(drafts) > 0 {
		return drafts
	}

	whole := strings.Join(lines, "\n")
	if utf8.RuneCountInString(whole) < s.minBodyLength {
		return nil
	}
	if t := fallbackTitle(lines); t != "" {
		return []draft{{title: t, body: whole}}
	}
	return []draft{{title: fmt.Sprintf("%s, page %d", documentTitle(doc), page.Number), body: whole}}
}

// IsHeading reports whether line looks like a section heading.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || placeholderTitles[strings.ToLower(line)] || isBullet(line) {
		return false
	}
	if strings.HasSuffix(line, ".") || utf8.RuneCountInString(line) < minTitleLength {
		return false
	}
	if len(strings.Fields(line)) > maxHeadingWords {
		return false
	}
	for _, re := range headerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	lead := strings.ToLower(line)
	if len(lead) > keywordWindow {
		lead = lead[:keywordWindow]
	}
	for _, kw := range focusKeywords {
		if strings.Contains(lead, kw) {
			return true
		}
	}
	return false
}

// IsUsableTitle reports whether title can be shown as a section title.
func IsUsableTitle(title string) bool {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minTitleLength || placeholderTitles[strings.ToLower(title)] {
		return false
	}
	if strings.ContainsAny(title[len(title)-1:], ".*:;") || isBullet(title) {
		return false
	}
	if strings.IndexFunc(title, unicode.IsLetter) < 0 || len(strings.Fields(title)) < 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(title)
	return !unicode.IsLower(first)
}

// Classify derives a section type from keywords in its title.
func Classify(title string) core.SectionType {
	lower := strings.ToLower(title)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.kind
			}
		}
	}
	return core.SectionTypeContent
}

// fallbackTitle returns the longest capitalized multi-word line, if it is
// usable as a title.
func fallbackTitle(lines []string) string {
	var best string
	for _, line := range lines {
		if utf8.RuneCountInString(line) < minTitleLength || !strings.Contains(line, " ") || isBullet(line) {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsUpper(first) {
			continue
		}
		if utf8.RuneCountInString(line) > utf8.RuneCountInString(best) {
			best = line
		}
	}
	if !IsUsableTitle(best) {
		return ""
	}
	return best
}

func documentTitle(doc *core.Document) string {
	if t := strings.TrimSpace(doc.Title); t != "" {
		return t
	}
	return doc.Filename
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "•") || strings.HasPrefix(line, "●") ||
		strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || line == "."
}

func pageLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
