package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*:?\s*#*\s*$`)
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(?:\[[ xX]\]\s+)?(.+?)\s*$`)
	integerRe  = regexp.MustCompile(`\d+`)
	pointsRe   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:story[\s-]*points?|points?|sp)\b`)
)

// ParseSection returns the trimmed body under the first markdown heading
// named heading (case-insensitive), up to the next heading of any level.
func ParseSection(text, heading string) (string, error) {
	var (
		body    []string
		inBlock bool
	)
	for _, line := range strings.Split(text, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if inBlock {
				break
			}
			inBlock = strings.EqualFold(m[1], heading)
			continue
		}
		if inBlock {
			body = append(body, line)
		}
	}
	out := strings.TrimSpace(strings.Join(body, "\n"))
	if out == "" {
		return "", fmt.Errorf("section %q: %w", heading, ErrNoField)
	}
	return out, nil
}

// ParseList returns the bullet or numbered items of a section. Checkbox
// markers are stripped.
func ParseList(text, heading string) ([]string, error) {
	section, err := ParseSection(text, heading)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, line := range strings.Split(section, "\n") {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("list %q: %w", heading, ErrNoField)
	}
	return items, nil
}

// ParseEffort returns the effort estimate in story points: the first
// integer of the Estimated Effort section, or else the first "N points"
// phrase anywhere in text.
func ParseEffort(text string) (int, error) {
	if section, err := ParseSection(text, SectionEffort); err == nil {
		if n, ok := positiveInt(integerRe.FindString(section)); ok {
			return n, nil
		}
	}
	if m := pointsRe.FindStringSubmatch(text); m != nil {
		if n, ok := positiveInt(m[1]); ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("effort: %w", ErrNoField)
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Summarize derives a one-line summary from text: the first heading, or
// else the first sentence, cut to 80 characters.
func Summarize(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			return truncate(m[1], 80)
		}
		if line = strings.TrimSpace(line); line != "" {
			if i := strings.IndexAny(line, ".!?"); i > 0 {
				line = line[:i]
			}
			return truncate(line, 80)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}
