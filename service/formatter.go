package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/deckwise/analyzer-be/types"
)

// ImplicitSectionName collects any leading response text that appears before
// the first recognized heading.
const ImplicitSectionName = "Summary"

// ResultFormatter normalizes raw model output into the canonical ordered
// section list. Parsing is line-oriented: markdown headings, bold-line
// headings and numbered headings all start a new section.
type ResultFormatter struct{}

func NewResultFormatter() *ResultFormatter {
	return &ResultFormatter{}
}

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	boldHeading     = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*$`)
	numberedLine    = regexp.MustCompile(`^\d+(?:\.\d+)*[.)]?\s+(.+)$`)
)

// Format splits the raw response into named sections, preserving order.
// It fails with ErrUnparseableResponse only when the input is blank.
func (f *ResultFormatter) Format(raw string) ([]types.Section, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, types.NewPipelineError(types.ErrUnparseableResponse,
			errors.New("empty model response"))
	}

	var sections []types.Section
	current := types.Section{Name: ImplicitSectionName}
	var content strings.Builder

	flush := func() {
		text := strings.TrimSpace(content.String())
		if text != "" || len(sections) > 0 {
			current.Content = text
			sections = append(sections, current)
		}
		content.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if name, ok := headingName(trimmed); ok {
			flush()
			current = types.Section{Name: name}
			continue
		}
		content.WriteString(line)
		content.WriteByte('\n')
	}
	flush()

	// Drop an empty implicit section when the response starts with a heading.
	if len(sections) > 0 && sections[0].Name == ImplicitSectionName && sections[0].Content == "" {
		sections = sections[1:]
	}
	return sections, nil
}

func headingName(line string) (string, bool) {
	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		return cleanHeading(m[1]), true
	}
	if m := boldHeading.FindStringSubmatch(line); m != nil {
		return cleanHeading(m[1]), true
	}
	if m := numberedLine.FindStringSubmatch(line); m != nil {
		// Only treat short numbered lines as headings; longer ones are list
		// items inside a section.
		if len(m[1]) <= 80 && !strings.HasSuffix(m[1], ".") {
			return cleanHeading(m[1]), true
		}
	}
	return "", false
}

func cleanHeading(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, "*")
	name = strings.TrimSuffix(name, ":")
	return strings.TrimSpace(name)
}
