package lesson

import (
	"regexp"
	"strings"
)

var (
	numberedLine = regexp.MustCompile(`^\s*\d+\s*[.)]\s*(.+)$`)
	bulletLine   = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
)

// ParsePlan extracts ordered sub-topic steps from a model-generated lesson
// plan. Numbered lines ("1. ...", "2) ...") are preferred; if the model
// produced a bulleted list instead, bullets are accepted. Anything else is
// rejected rather than guessed at.
func ParsePlan(raw string) ([]string, error) {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			steps = append(steps, cleanStep(m[1]))
		}
	}
	if len(steps) == 0 {
		for _, line := range strings.Split(raw, "\n") {
			if m := bulletLine.FindStringSubmatch(line); m != nil {
				steps = append(steps, cleanStep(m[1]))
			}
		}
	}
	if len(steps) == 0 {
		return nil, ErrEmptyPlan
	}
	return steps, nil
}

// cleanStep strips markdown emphasis and trailing punctuation the model
// tends to wrap step titles in.
func cleanStep(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(s)
}
