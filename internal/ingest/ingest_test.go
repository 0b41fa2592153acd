package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitEntriesBlankLineSeparated(t *testing.T) {
	text := "First piece of feedback\nspanning two lines\n\nSecond piece\n\n\nThird"
	entries := SplitEntries(text, Options{})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(entries), entries)
	}
	if entries[0] != "First piece of feedback spanning two lines" {
		t.Errorf("multi-line entry not joined: %q", entries[0])
	}
}

func TestSplitEntriesLineFallback(t *testing.T) {
	text := "one\ntwo\nthree"
	entries := SplitEntries(text, Options{})
	if len(entries) != 3 {
		t.Fatalf("expected fallback to one entry per line, got %v", entries)
	}
}

func TestSplitEntriesEmptyInput(t *testing.T) {
	if entries := SplitEntries("", Options{}); len(entries) != 0 {
		t.Errorf("expected 0 entries for empty input, got %d", len(entries))
	}
	if entries := SplitEntries("  \n \n", Options{}); len(entries) != 0 {
		t.Errorf("expected 0 entries for whitespace input, got %d", len(entries))
	}
}

func TestSplitEntriesCaps(t *testing.T) {
	text := strings.Repeat("feedback line\n", 50)
	entries := SplitEntries(text, Options{MaxEntries: 10})
	if len(entries) != 10 {
		t.Errorf("expected entry cap of 10, got %d", len(entries))
	}

	long := strings.Repeat("x", 5000)
	entries = SplitEntries(long, Options{MaxChars: 100})
	if len(entries) != 1 || len(entries[0]) != 100 {
		t.Errorf("expected single 100-char entry, got %d entries", len(entries))
	}

	multibyte := strings.Repeat("é", 200)
	entries = SplitEntries(multibyte, Options{MaxChars: 100})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !utf8.ValidString(entries[0]) {
		t.Errorf("cap split a multi-byte rune: %q", entries[0])
	}
	if got := utf8.RuneCountInString(entries[0]); got != 100 {
		t.Errorf("expected 100-rune entry, got %d runes", got)
	}
}

func TestSplitEntriesCRLF(t *testing.T) {
	entries := SplitEntries("first\r\n\r\nsecond", Options{})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries from CRLF input, got %v", entries)
	}
}
