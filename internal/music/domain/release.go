package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Release is a cached music release keyed by its MusicBrainz id. Artist is
// the display name of the first credited artist.
type Release struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MusicBrainzID string     `gorm:"column:musicbrainz_id;size:36;uniqueIndex;not null"`
	Title         string     `gorm:"size:500;not null;index"`
	Artist        string     `gorm:"size:500;not null"`
	ReleaseDate   *time.Time `gorm:"type:date"`
	CoverArtURL   string     `gorm:"size:500"`
	CachedAt      time.Time  `gorm:"not null"`
}

func (Release) TableName() string {
	return "releases"
}

func (r *Release) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Artist kinds as reported by MusicBrainz.
const (
	ArtistTypePerson = "Person"
	ArtistTypeGroup  = "Group"
	ArtistTypeOther  = "Other"
)

// Artist is a cached MusicBrainz artist shared across releases.
type Artist struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	MusicBrainzID  string    `gorm:"column:musicbrainz_id;size:36;uniqueIndex;not null"`
	Name           string    `gorm:"size:500;not null"`
	SortName       string    `gorm:"size:500"`
	Disambiguation string    `gorm:"size:500"`
	ArtistType     string    `gorm:"size:50"`
	Country        string    `gorm:"size:2"`
	CachedAt       time.Time `gorm:"not null"`
}

func (Artist) TableName() string {
	return "artists"
}

func (a *Artist) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ReleaseCredit links a release to an artist. JoinPhrase is the text that
// follows the artist in the credit string, e.g. " & ".
type ReleaseCredit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReleaseID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_release_artist_order"`
	Release    *Release  `gorm:"constraint:OnDelete:CASCADE"`
	ArtistID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_release_artist_order"`
	Artist     *Artist   `gorm:"constraint:OnDelete:CASCADE"`
	JoinPhrase string    `gorm:"size:100"`
	Order      int       `gorm:"column:credit_order;not null;uniqueIndex:uq_release_artist_order"`
	CachedAt   time.Time `gorm:"not null"`
}

func (ReleaseCredit) TableName() string {
	return "release_artists"
}

func (c *ReleaseCredit) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
