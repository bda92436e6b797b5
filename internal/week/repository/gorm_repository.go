package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	filmdomain "github.com/narwhalmedia/wrongopinions/internal/film/domain"
	musicdomain "github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/pagination"
)

var onWeekKeyConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "year"}, {Name: "week_number"}},
	DoNothing: true,
}

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

// withSelections preloads the owner and both slot lists with their entities.
func withSelections(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Films", orderByPosition).
		Preload("Films.Film").
		Preload("Releases", orderByPosition).
		Preload("Releases.Release")
}

// Create inserts a week unless its (year, week_number) is taken. It reports
// whether a row was inserted.
func (r *GormRepository) Create(ctx context.Context, week *domain.Week) (bool, error) {
	result := database.Conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(onWeekKeyConflict).
		Create(week)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create week: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	var week domain.Week
	if err := withSelections(database.Conn(ctx, r.db)).First(&week, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Week not found")
		}
		return nil, fmt.Errorf("failed to get week: %w", err)
	}
	return &week, nil
}

func (r *GormRepository) GetByKey(ctx context.Context, year, weekNumber int) (*domain.Week, error) {
	var week domain.Week
	err := withSelections(database.Conn(ctx, r.db)).
		First(&week, "year = ? AND week_number = ?", year, weekNumber).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Week not found")
		}
		return nil, fmt.Errorf("failed to get week: %w", err)
	}
	return &week, nil
}

// List returns a page of weeks, newest first, with owners loaded.
func (r *GormRepository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]domain.Week, int64, error) {
	query := database.Conn(ctx, r.db).Model(&domain.Week{})
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count weeks: %w", err)
	}

	var weeks []domain.Week
	err := query.
		Preload("Owner").
		Order("year DESC").
		Order("week_number DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&weeks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list weeks: %w", err)
	}
	return weeks, total, nil
}

func (r *GormRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string, at time.Time) error {
	err := database.Conn(ctx, r.db).
		Model(&domain.Week{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"notes": notes, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to update week notes: %w", err)
	}
	return nil
}

// Touch bumps updated_at after a slot change.
func (r *GormRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := database.Conn(ctx, r.db).
		Model(&domain.Week{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to touch week: %w", err)
	}
	return nil
}

// Delete removes a week. Its slots go with it through the foreign keys.
func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := database.Conn(ctx, r.db).Delete(&domain.Week{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete week: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("Week not found")
	}
	return nil
}

func (r *GormRepository) GetFilmSlot(ctx context.Context, weekID uuid.UUID, position int) (*domain.FilmSlot, error) {
	var slot domain.FilmSlot
	err := database.Conn(ctx, r.db).First(&slot, "week_id = ? AND position = ?", weekID, position).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("No movie found at position %d", position))
		}
		return nil, fmt.Errorf("failed to get film slot: %w", err)
	}
	return &slot, nil
}

func (r *GormRepository) GetReleaseSlot(ctx context.Context, weekID uuid.UUID, position int) (*domain.ReleaseSlot, error) {
	var slot domain.ReleaseSlot
	err := database.Conn(ctx, r.db).First(&slot, "week_id = ? AND position = ?", weekID, position).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("No album found at position %d", position))
		}
		return nil, fmt.Errorf("failed to get release slot: %w", err)
	}
	return &slot, nil
}

func occupied(position int) error {
	return errors.Conflict(fmt.Sprintf("Position %d is already occupied", position))
}

func (r *GormRepository) AddFilmSlot(ctx context.Context, slot *domain.FilmSlot) error {
	if err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(slot).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return occupied(slot.Position)
		}
		return fmt.Errorf("failed to add film slot: %w", err)
	}
	return nil
}

func (r *GormRepository) AddReleaseSlot(ctx context.Context, slot *domain.ReleaseSlot) error {
	if err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(slot).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return occupied(slot.Position)
		}
		return fmt.Errorf("failed to add release slot: %w", err)
	}
	return nil
}

func (r *GormRepository) RemoveFilmSlot(ctx context.Context, weekID uuid.UUID, position int) (bool, error) {
	result := database.Conn(ctx, r.db).Delete(&domain.FilmSlot{}, "week_id = ? AND position = ?", weekID, position)
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove film slot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormRepository) RemoveReleaseSlot(ctx context.Context, weekID uuid.UUID, position int) (bool, error) {
	result := database.Conn(ctx, r.db).Delete(&domain.ReleaseSlot{}, "week_id = ? AND position = ?", weekID, position)
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove release slot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListFilmSelections pages through the distinct films placed in any week,
// ordered by title without regard to case.
func (r *GormRepository) ListFilmSelections(ctx context.Context, params pagination.Params) ([]FilmSelections, int64, error) {
	db := database.Conn(ctx, r.db)
	picked := func() *gorm.DB { return db.Model(&domain.FilmSlot{}).Select("film_id") }

	var total int64
	if err := db.Model(&filmdomain.Film{}).Where("id IN (?)", picked()).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count selected films: %w", err)
	}

	var films []filmdomain.Film
	err := db.
		Where("id IN (?)", picked()).
		Order("lower(title)").
		Order("id").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&films).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list selected films: %w", err)
	}

	ids := make([]uuid.UUID, len(films))
	for i := range films {
		ids[i] = films[i].ID
	}
	refs, err := r.selections(ctx, domain.FilmSlot{}.TableName(), "film_id", ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]FilmSelections, len(films))
	for i, film := range films {
		out[i] = FilmSelections{Film: film, Selections: refs[film.ID]}
	}
	return out, total, nil
}

// ListReleaseSelections pages through the distinct releases placed in any
// week, ordered by title without regard to case.
func (r *GormRepository) ListReleaseSelections(ctx context.Context, params pagination.Params) ([]ReleaseSelections, int64, error) {
	db := database.Conn(ctx, r.db)
	picked := func() *gorm.DB { return db.Model(&domain.ReleaseSlot{}).Select("release_id") }

	var total int64
	if err := db.Model(&musicdomain.Release{}).Where("id IN (?)", picked()).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count selected releases: %w", err)
	}

	var releases []musicdomain.Release
	err := db.
		Where("id IN (?)", picked()).
		Order("lower(title)").
		Order("id").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&releases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list selected releases: %w", err)
	}

	ids := make([]uuid.UUID, len(releases))
	for i := range releases {
		ids[i] = releases[i].ID
	}
	refs, err := r.selections(ctx, domain.ReleaseSlot{}.TableName(), "release_id", ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ReleaseSelections, len(releases))
	for i, release := range releases {
		out[i] = ReleaseSelections{Release: release, Selections: refs[release.ID]}
	}
	return out, total, nil
}

type selectionRow struct {
	EntityID   uuid.UUID
	WeekID     uuid.UUID
	Year       int
	WeekNumber int
	Position   int
	AddedAt    time.Time
}

// selections loads the week placements of ids from a slot table, newest
// week first, grouped by entity id.
func (r *GormRepository) selections(ctx context.Context, table, column string, ids []uuid.UUID) (map[uuid.UUID][]Selection, error) {
	out := make(map[uuid.UUID][]Selection, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []selectionRow
	err := database.Conn(ctx, r.db).
		Table(table+" AS s").
		Select("s."+column+" AS entity_id, s.week_id, w.year, w.week_number, s.position, s.added_at").
		Joins("JOIN weeks w ON w.id = s.week_id").
		Where("s."+column+" IN ?", ids).
		Order("w.year DESC").
		Order("w.week_number DESC").
		Order("s.position").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load selections: %w", err)
	}

	for _, row := range rows {
		out[row.EntityID] = append(out[row.EntityID], Selection{
			WeekID:     row.WeekID,
			Year:       row.Year,
			WeekNumber: row.WeekNumber,
			Position:   row.Position,
			AddedAt:    row.AddedAt,
		})
	}
	return out, nil
}
