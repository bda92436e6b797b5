package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	filmdomain "github.com/narwhalmedia/wrongopinions/internal/film/domain"
	musicdomain "github.com/narwhalmedia/wrongopinions/internal/music/domain"
	userdomain "github.com/narwhalmedia/wrongopinions/internal/user/domain"
	weekdomain "github.com/narwhalmedia/wrongopinions/internal/week/domain"
)

// TestPassword is the password of users built by NewTestUser.
const TestPassword = "testpass123"

// NewTestUser builds an active user with TestPassword.
func NewTestUser(username string) *userdomain.User {
	user := &userdomain.User{
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	_ = user.SetPassword(TestPassword)
	return user
}

// CreateTestUser inserts an active user.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *userdomain.User {
	t.Helper()
	user := NewTestUser(username)
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestFilm inserts a cached film.
func CreateTestFilm(t *testing.T, db *gorm.DB, tmdbID int, title string) *filmdomain.Film {
	t.Helper()
	film := &filmdomain.Film{
		TMDBID:     tmdbID,
		Title:      title,
		PosterPath: "/poster.jpg",
		CachedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(film).Error)
	return film
}

// CreateTestRelease inserts a cached release.
func CreateTestRelease(t *testing.T, db *gorm.DB, mbid, title, artist string) *musicdomain.Release {
	t.Helper()
	release := &musicdomain.Release{
		MusicBrainzID: mbid,
		Title:         title,
		Artist:        artist,
		CachedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(release).Error)
	return release
}

// CreateTestWeek inserts a week. owner may be nil for an unclaimed week.
func CreateTestWeek(t *testing.T, db *gorm.DB, year, week int, owner *userdomain.User) *weekdomain.Week {
	t.Helper()
	w := &weekdomain.Week{Year: year, WeekNumber: week}
	if owner != nil {
		w.OwnerID = &owner.ID
	}
	require.NoError(t, db.Create(w).Error)
	return w
}
