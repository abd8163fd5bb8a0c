package parser

import (
	"regexp"
	"strings"
)

// Section is a named span of document text in reading order.
type Section struct {
	Name string
	Text string
}

// Chapter is a named, tokenized chapter in reading order.
type Chapter struct {
	Name   string
	Tokens []string
}

// headingPattern matches chapter headings at the start of a line:
// Chapter/Part/Article/Section followed by a decimal, Roman or
// written-out number, an optional ':' or '.', and an optional title
// on the same line.
var headingPattern = regexp.MustCompile(
	`(?im)^[\t ]*((?:chapter|part|article|section)` +
		`[\t ]+(?:\d+|[ivxlcdm]+|one|two|three|four|five|six|seven|eight|nine|ten))` +
		`[:.]?[\t ]*([^\n]*)$`)

// SplitChapters scans text for heading markers and splits it into an
// ordered list of named sections. Bodies are trimmed and empty bodies
// dropped. Text before the first heading becomes a leading "Preface"
// section when it holds more than ten words, which keeps short
// boilerplate like a title page from becoming a spurious chapter.
// When no heading survives, the whole trimmed text comes back as a
// single "content" section.
func SplitChapters(text string) []Section {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Name: "content", Text: strings.TrimSpace(text)}}
	}

	var sections []Section
	byName := make(map[string]int)

	for i, m := range matches {
		name := strings.TrimSpace(text[m[2]:m[3]])
		if title := strings.TrimSpace(text[m[4]:m[5]]); title != "" {
			name = name + ": " + title
		}

		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[start:end])
		if body == "" {
			continue
		}

		// A repeated heading keeps its first position and takes the
		// later body.
		if at, ok := byName[name]; ok {
			sections[at].Text = body
			continue
		}
		byName[name] = len(sections)
		sections = append(sections, Section{Name: name, Text: body})
	}

	if matches[0][0] > 0 {
		preface := strings.TrimSpace(text[:matches[0][0]])
		if len(strings.Fields(preface)) > 10 {
			sections = append([]Section{{Name: "Preface", Text: preface}}, sections...)
		}
	}

	if len(sections) == 0 {
		return []Section{{Name: "content", Text: strings.TrimSpace(text)}}
	}
	return sections
}
