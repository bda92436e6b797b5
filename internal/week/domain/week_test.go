package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	userdomain "github.com/narwhalmedia/wrongopinions/internal/user/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "2025-W03", domain.Label(2025, 3))
	assert.Equal(t, "1999-W52", (&domain.Week{Year: 1999, WeekNumber: 52}).Label())
}

func TestCanModify(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	unclaimed := &domain.Week{}
	owned := &domain.Week{OwnerID: &owner}

	assert.True(t, unclaimed.CanModify(owner))
	assert.True(t, unclaimed.CanModify(other))
	assert.True(t, owned.CanModify(owner))
	assert.False(t, owned.CanModify(other))
}

func TestOwnerName(t *testing.T) {
	assert.Equal(t, "", (&domain.Week{}).OwnerName())
	assert.Equal(t, "alice", (&domain.Week{Owner: &userdomain.User{Username: "alice"}}).OwnerName())
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		week    int
		wantErr bool
	}{
		{"lower bounds", 1900, 1, false},
		{"upper bounds", 2100, 53, false},
		{"year too small", 1899, 1, true},
		{"year too large", 2101, 1, true},
		{"week zero", 2025, 0, true},
		{"week 54", 2025, 54, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateKey(tt.year, tt.week)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidPosition(t *testing.T) {
	assert.False(t, domain.ValidPosition(0))
	assert.True(t, domain.ValidPosition(1))
	assert.True(t, domain.ValidPosition(2))
	assert.False(t, domain.ValidPosition(3))
}

func TestSlotKindNoun(t *testing.T) {
	assert.Equal(t, "movie", domain.SlotFilm.Noun())
	assert.Equal(t, "album", domain.SlotRelease.Noun())
}
