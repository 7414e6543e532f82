package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func NormalizeName(name string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(name)
}

func NormalizeAddress(address string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(address)
}

// NormalizeDescription keeps line breaks but trims each line.
func NormalizeDescription(description string) string {
	lines := strings.Split(stripControl(description), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, TrimAndNormalize(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
