package common

import (
	"iter"
	"regexp"
	"strings"
)

// PatternDelimiter reports lines whose trimmed text matches re.
func PatternDelimiter(re *regexp.Regexp) func(string) bool {
	return func(line string) bool {
		return re.MatchString(strings.TrimSpace(line))
	}
}

// Sections splits document into sections that start at every line accepted
// by isDelimiter. Lines before the first delimiter belong to no section and
// are dropped. A delimiter followed directly by another delimiter (or the end
// of input) produces a section with an empty body.
func Sections(document string, isDelimiter func(string) bool) iter.Seq[Section] {
	return func(yield func(Section) bool) {
		var (
			label   string
			lines   []string
			started bool
		)
		for _, line := range strings.Split(document, "\n") {
			if !isDelimiter(line) {
				lines = append(lines, line)
				continue
			}
			if started {
				if !yield(Section{Label: label, Body: strings.Join(lines, "\n")}) {
					return
				}
			}
			label, lines, started = line, nil, true
		}
		if started {
			yield(Section{Label: label, Body: strings.Join(lines, "\n")})
		}
	}
}

// NonBlankLines returns the lines of text that contain something other than whitespace.
func NonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
