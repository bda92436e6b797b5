package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Film is a cached film catalog entry keyed by its TMDB id. Rows are written
// once on first fetch and never refreshed.
type Film struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TMDBID        int        `gorm:"column:tmdb_id;uniqueIndex;not null"`
	Title         string     `gorm:"size:500;not null;index"`
	OriginalTitle string     `gorm:"size:500"`
	ReleaseDate   *time.Time `gorm:"type:date"`
	PosterPath    string     `gorm:"size:255"`
	Overview      string     `gorm:"type:text"`
	CachedAt      time.Time  `gorm:"not null"`
}

func (Film) TableName() string {
	return "films"
}

func (f *Film) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Person is a cached cast or crew member, shared by every film crediting them.
type Person struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	TMDBID             int       `gorm:"column:tmdb_id;uniqueIndex;not null"`
	Name               string    `gorm:"size:255;not null"`
	ProfilePath        string    `gorm:"size:255"`
	KnownForDepartment string    `gorm:"size:100"`
	CachedAt           time.Time `gorm:"not null"`
}

func (Person) TableName() string {
	return "people"
}

func (p *Person) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CastCredit links a film to an actor. Order is zero-based billing order.
type CastCredit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FilmID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_cast_film_person_order"`
	Film      *Film     `gorm:"constraint:OnDelete:CASCADE"`
	PersonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_cast_film_person_order"`
	Person    *Person   `gorm:"constraint:OnDelete:CASCADE"`
	Character string    `gorm:"size:500"`
	Order     int       `gorm:"column:credit_order;not null;uniqueIndex:uq_cast_film_person_order"`
	CachedAt  time.Time `gorm:"not null"`
}

func (CastCredit) TableName() string {
	return "film_cast"
}

func (c *CastCredit) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CrewCredit links a film to a crew member for one job.
type CrewCredit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FilmID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_crew_film_person_job"`
	Film       *Film     `gorm:"constraint:OnDelete:CASCADE"`
	PersonID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_crew_film_person_job"`
	Person     *Person   `gorm:"constraint:OnDelete:CASCADE"`
	Department string    `gorm:"size:100"`
	Job        string    `gorm:"size:100;not null;uniqueIndex:uq_crew_film_person_job"`
	Order      int       `gorm:"column:credit_order;not null"`
	CachedAt   time.Time `gorm:"not null"`
}

func (CrewCredit) TableName() string {
	return "film_crew"
}

func (c *CrewCredit) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
