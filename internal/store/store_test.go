package store

import (
	"testing"

	"feedback-insights/internal/embeddings"
)

func TestVectorToString(t *testing.T) {
	tests := []struct {
		name string
		in   embeddings.Vector
		want string
	}{
		{"empty", nil, "[]"},
		{"single", embeddings.Vector{1}, "[1]"},
		{"typical", embeddings.Vector{0.5, -0.25, 2}, "[0.5,-0.25,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vectorToString(tt.in); got != tt.want {
				t.Errorf("vectorToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPqStringArrayNeverNil(t *testing.T) {
	if got := pqStringArray(nil); got == nil {
		t.Error("expected empty slice, got nil")
	}
	if got := pqStringArray([]string{"a"}); len(got) != 1 {
		t.Errorf("expected passthrough, got %v", got)
	}
}
