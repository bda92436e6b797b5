// Package gorm holds the versioned schema of the service.
package gorm

import (
	"gorm.io/gorm"

	filmdomain "github.com/narwhalmedia/wrongopinions/internal/film/domain"
	musicdomain "github.com/narwhalmedia/wrongopinions/internal/music/domain"
	userdomain "github.com/narwhalmedia/wrongopinions/internal/user/domain"
	weekdomain "github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
)

// Migrations returns the schema migrations in the order they apply.
func Migrations() []database.MigrationEntry {
	return []database.MigrationEntry{
		{
			Version: "20250101000001",
			Name:    "create_users",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&userdomain.User{})
			},
		},
		{
			Version: "20250101000002",
			Name:    "create_film_cache",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&filmdomain.Film{},
					&filmdomain.Person{},
					&filmdomain.CastCredit{},
					&filmdomain.CrewCredit{},
				)
			},
		},
		{
			Version: "20250101000003",
			Name:    "create_music_cache",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&musicdomain.Release{},
					&musicdomain.Artist{},
					&musicdomain.ReleaseCredit{},
				)
			},
		},
		{
			Version: "20250101000004",
			Name:    "create_weeks",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&weekdomain.Week{},
					&weekdomain.FilmSlot{},
					&weekdomain.ReleaseSlot{},
				)
			},
		},
	}
}

// Tables lists every domain table, children before parents.
func Tables() []string {
	return []string{
		"week_releases",
		"week_films",
		"weeks",
		"release_artists",
		"artists",
		"releases",
		"film_crew",
		"film_cast",
		"people",
		"films",
		"users",
	}
}
