package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	filmdomain "github.com/narwhalmedia/wrongopinions/internal/film/domain"
	musicdomain "github.com/narwhalmedia/wrongopinions/internal/music/domain"
	userdomain "github.com/narwhalmedia/wrongopinions/internal/user/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/constants"
)

// Week is one ISO week of selections: up to two films and two releases.
// A week without an owner is unclaimed.
type Week struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OwnerID    *uuid.UUID       `gorm:"type:uuid;index"`
	Owner      *userdomain.User `gorm:"constraint:OnDelete:SET NULL"`
	Year       int              `gorm:"not null;uniqueIndex:uq_year_week"`
	WeekNumber int              `gorm:"not null;uniqueIndex:uq_year_week"`
	Notes      *string          `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Films    []FilmSlot    `gorm:"constraint:OnDelete:CASCADE"`
	Releases []ReleaseSlot `gorm:"constraint:OnDelete:CASCADE"`
}

func (Week) TableName() string {
	return "weeks"
}

func (w *Week) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Label renders the ISO week key, e.g. 2025-W03.
func (w *Week) Label() string {
	return Label(w.Year, w.WeekNumber)
}

// CanModify reports whether userID may change the week. Unclaimed weeks are
// open to any account.
func (w *Week) CanModify(userID uuid.UUID) bool {
	return w.OwnerID == nil || *w.OwnerID == userID
}

// OwnerName returns the owner's username, or "" when unclaimed or not loaded.
func (w *Week) OwnerName() string {
	if w.Owner == nil {
		return ""
	}
	return w.Owner.Username
}

// Label renders a year and week number as an ISO week key.
func Label(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ValidateKey checks the bounds of a week key.
func ValidateKey(year, week int) error {
	if year < constants.MinYear || year > constants.MaxYear {
		return fmt.Errorf("year must be between %d and %d", constants.MinYear, constants.MaxYear)
	}
	if week < constants.MinWeekNumber || week > constants.MaxWeekNumber {
		return fmt.Errorf("week_number must be between %d and %d", constants.MinWeekNumber, constants.MaxWeekNumber)
	}
	return nil
}

// ValidPosition reports whether p is a slot position.
func ValidPosition(p int) bool {
	return p >= constants.MinPosition && p <= constants.MaxPosition
}

// FilmSlot is a film selected at a position of a week.
type FilmSlot struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey"`
	WeekID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_week_film_position"`
	Position int              `gorm:"not null;uniqueIndex:uq_week_film_position;check:chk_week_film_position,position IN (1, 2)"`
	FilmID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Film     *filmdomain.Film `gorm:"constraint:OnDelete:CASCADE"`
	AddedAt  time.Time        `gorm:"not null"`
}

func (FilmSlot) TableName() string {
	return "week_films"
}

func (s *FilmSlot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ReleaseSlot is a release selected at a position of a week.
type ReleaseSlot struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey"`
	WeekID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uq_week_release_position"`
	Position  int                  `gorm:"not null;uniqueIndex:uq_week_release_position;check:chk_week_release_position,position IN (1, 2)"`
	ReleaseID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Release   *musicdomain.Release `gorm:"constraint:OnDelete:CASCADE"`
	AddedAt   time.Time            `gorm:"not null"`
}

func (ReleaseSlot) TableName() string {
	return "week_releases"
}

func (s *ReleaseSlot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SlotKind selects the film or release slots of a week.
type SlotKind string

const (
	SlotFilm    SlotKind = "film"
	SlotRelease SlotKind = "release"
)

// Noun is the user-facing name of the kind.
func (k SlotKind) Noun() string {
	if k == SlotRelease {
		return "album"
	}
	return "movie"
}
