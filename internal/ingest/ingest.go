package ingest

import (
	"strings"
)

// Options controls how an imported blob is split into feedback entries.
type Options struct {
	MaxEntries int
	MaxChars   int
}

// SplitEntries turns a raw imported text blob into individual feedback
// entries. Blank lines separate entries; a blob with no blank lines falls
// back to one entry per line. Entries are trimmed, capped at MaxChars,
// and at most MaxEntries are returned.
func SplitEntries(text string, opts Options) []string {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 200
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 2000
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")
	if len(parts) == 1 {
		parts = strings.Split(normalized, "\n")
	}

	var entries []string
	for _, p := range parts {
		entry := strings.Join(strings.Fields(p), " ")
		if entry == "" {
			continue
		}
		if runes := []rune(entry); len(runes) > opts.MaxChars {
			entry = string(runes[:opts.MaxChars])
		}
		entries = append(entries, entry)
		if len(entries) == opts.MaxEntries {
			break
		}
	}
	return entries
}
