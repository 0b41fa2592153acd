package llm

import "strings"

// ParseSentiment maps free-text model output onto a Sentiment by string
// matching, defaulting to neutral when nothing recognizable is found.
// There is no stricter contract to enforce here; the model replies in
// prose often enough that anything beyond substring matching is wasted.
func ParseSentiment(content string) Sentiment {
	lowered := strings.ToLower(content)
	switch {
	case strings.Contains(lowered, "positive"):
		return SentimentPositive
	case strings.Contains(lowered, "negative"):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// extractLines splits the model response into non-empty entries, stripping
// bullet markers and list numbering the model tends to add.
func extractLines(content string) []string {
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "-*0123456789.) ")
		trimmed = strings.Trim(trimmed, `"`)
		if trimmed == "" {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// firstLine returns the first non-empty line of the response, for
// operations that expect a single short answer.
func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return strings.Trim(trimmed, `"`)
		}
	}
	return ""
}
