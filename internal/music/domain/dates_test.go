package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
)

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"1973", date(1973, time.January, 1)},
		{"1973-03", date(1973, time.March, 1)},
		{"1973-03-01", date(1973, time.March, 1)},
		{"", nil},
		{"invalid", nil},
		{"1973-13", nil},
		{"1973-02-30", nil},
		{"19733", nil},
		{"abcd", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := domain.ParseReleaseDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.True(t, tt.want.Equal(*got), "got %s", got)
			}
		})
	}
}

func TestFormatReleaseDate(t *testing.T) {
	assert.Equal(t, "", domain.FormatReleaseDate(nil))
	assert.Equal(t, "1973-03-01", domain.FormatReleaseDate(date(1973, time.March, 1)))
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
