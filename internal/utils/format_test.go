package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "N/A"},
		{"future", now.Add(time.Minute), "just now"},
		{"seconds", now.Add(-42 * time.Second), "42s ago"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d ago"},
		{"weeks", now.Add(-15 * 24 * time.Hour), "2w ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2mo ago"},
		{"years", now.Add(-800 * 24 * time.Hour), "2y ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(tt.t, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Service - BLAST", Truncate("Service - BLAST", 20))
	assert.Equal(t, "Service...", Truncate("Service - Occurrence Search", 10))
	assert.Equal(t, "Sé", Truncate("Séance", 2))
}
