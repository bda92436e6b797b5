package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	filmservice "github.com/narwhalmedia/wrongopinions/internal/film/service"
	musicservice "github.com/narwhalmedia/wrongopinions/internal/music/service"
	"github.com/narwhalmedia/wrongopinions/internal/week/constants"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/repository"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/pagination"
)

// FilmResolver returns a cached film, fetching it on a miss.
type FilmResolver interface {
	Resolve(ctx context.Context, tmdbID int) (*filmservice.Resolved, error)
}

// ReleaseResolver returns a cached release, fetching it on a miss.
type ReleaseResolver interface {
	Resolve(ctx context.Context, mbid string) (*musicservice.Resolved, error)
}

const forbiddenMessage = "You do not have permission to modify this week"

// WeekManager owns the week aggregate: creation, notes, slots and deletion.
type WeekManager struct {
	films    FilmResolver
	releases ReleaseResolver
	repo     repository.Repository
	uow      database.UnitOfWork
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	now      func() time.Time
}

// NewWeekManager creates a new week manager.
func NewWeekManager(
	films FilmResolver,
	releases ReleaseResolver,
	repo repository.Repository,
	uow database.UnitOfWork,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *WeekManager {
	return &WeekManager{
		films:    films,
		releases: releases,
		repo:     repo,
		uow:      uow,
		eventBus: eventBus,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for timestamps and the current week.
func (m *WeekManager) WithClock(now func() time.Time) *WeekManager {
	m.now = now
	return m
}

// Create creates a week owned by the requester. Week keys are unique across
// all accounts.
func (m *WeekManager) Create(ctx context.Context, p *auth.Principal, year, weekNumber int, notes *string) (*domain.Week, error) {
	if err := domain.ValidateKey(year, weekNumber); err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	var week *domain.Week
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		if existing, err := m.repo.GetByKey(ctx, year, weekNumber); err == nil {
			return duplicateWeek(existing)
		} else if !errors.IsNotFound(err) {
			return err
		}

		now := m.now()
		candidate := &domain.Week{
			OwnerID:    &p.ID,
			Year:       year,
			WeekNumber: weekNumber,
			Notes:      notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created, err := m.repo.Create(ctx, candidate)
		if err != nil {
			return err
		}
		if !created {
			existing, err := m.repo.GetByKey(ctx, year, weekNumber)
			if err != nil {
				return err
			}
			return duplicateWeek(existing)
		}

		week, err = m.repo.Get(ctx, candidate.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.publish(ctx, constants.EventWeekCreated, week, nil)
	return week, nil
}

func duplicateWeek(existing *domain.Week) error {
	owner := "unclaimed"
	if name := existing.OwnerName(); name != "" {
		owner = "owned by " + name
	}
	return errors.Conflict(fmt.Sprintf("Week %s already exists (%s)", existing.Label(), owner))
}

// Get returns a week with its owner and selections.
func (m *WeekManager) Get(ctx context.Context, id uuid.UUID) (*domain.Week, error) {
	return m.repo.Get(ctx, id)
}

// List returns a page of weeks, newest first.
func (m *WeekManager) List(ctx context.Context, filter repository.ListFilter, params pagination.Params) (pagination.Page[domain.Week], error) {
	weeks, total, err := m.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[domain.Week]{}, err
	}
	return pagination.NewPage(weeks, total, params), nil
}

// Update replaces the notes of a week. A nil notes leaves the week unchanged.
func (m *WeekManager) Update(ctx context.Context, p *auth.Principal, id uuid.UUID, notes *string) (*domain.Week, error) {
	var week *domain.Week
	changed := false
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if week, err = m.modifiable(ctx, p, id); err != nil {
			return err
		}
		if notes == nil {
			return nil
		}

		if err := m.repo.UpdateNotes(ctx, id, notes, m.now()); err != nil {
			return err
		}
		changed = true
		week, err = m.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		m.publish(ctx, constants.EventWeekUpdated, week, nil)
	}
	return week, nil
}

// Delete removes a week and its selections.
func (m *WeekManager) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	var week *domain.Week
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if week, err = m.modifiable(ctx, p, id); err != nil {
			return err
		}
		return m.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	m.publish(ctx, constants.EventWeekDeleted, week, nil)
	return nil
}

// AddSlot resolves the entity behind key and places it at position. For
// films key is a TMDB id, for releases a MusicBrainz id.
func (m *WeekManager) AddSlot(ctx context.Context, p *auth.Principal, weekID uuid.UUID, kind domain.SlotKind, key string, position int) (*domain.Week, error) {
	if !domain.ValidPosition(position) {
		return nil, errors.BadRequest("Position must be 1 or 2")
	}

	var week *domain.Week
	var entityID uuid.UUID
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := m.modifiable(ctx, p, weekID); err != nil {
			return err
		}

		var err error
		switch kind {
		case domain.SlotFilm:
			entityID, err = m.addFilm(ctx, weekID, key, position)
		case domain.SlotRelease:
			entityID, err = m.addRelease(ctx, weekID, key, position)
		default:
			err = errors.BadRequest(fmt.Sprintf("Unknown slot kind %q", kind))
		}
		if err != nil {
			return err
		}

		if err := m.repo.Touch(ctx, weekID, m.now()); err != nil {
			return err
		}
		week, err = m.repo.Get(ctx, weekID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.publish(ctx, constants.EventWeekSlotAdded, week, map[string]interface{}{
		"kind":      string(kind),
		"position":  position,
		"entity_id": entityID.String(),
	})
	return week, nil
}

func (m *WeekManager) addFilm(ctx context.Context, weekID uuid.UUID, key string, position int) (uuid.UUID, error) {
	tmdbID, err := strconv.Atoi(key)
	if err != nil || tmdbID < 1 {
		return uuid.Nil, errors.BadRequest("Invalid TMDB ID")
	}

	if _, err := m.repo.GetFilmSlot(ctx, weekID, position); err == nil {
		return uuid.Nil, occupied(position)
	} else if !errors.IsNotFound(err) {
		return uuid.Nil, err
	}

	resolved, err := m.films.Resolve(ctx, tmdbID)
	if err != nil {
		return uuid.Nil, err
	}

	slot := &domain.FilmSlot{
		WeekID:   weekID,
		Position: position,
		FilmID:   resolved.Film.ID,
		AddedAt:  m.now(),
	}
	if err := m.repo.AddFilmSlot(ctx, slot); err != nil {
		return uuid.Nil, err
	}
	return resolved.Film.ID, nil
}

func (m *WeekManager) addRelease(ctx context.Context, weekID uuid.UUID, key string, position int) (uuid.UUID, error) {
	mbid, err := musicservice.CanonicalMBID(key)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := m.repo.GetReleaseSlot(ctx, weekID, position); err == nil {
		return uuid.Nil, occupied(position)
	} else if !errors.IsNotFound(err) {
		return uuid.Nil, err
	}

	resolved, err := m.releases.Resolve(ctx, mbid)
	if err != nil {
		return uuid.Nil, err
	}

	slot := &domain.ReleaseSlot{
		WeekID:    weekID,
		Position:  position,
		ReleaseID: resolved.Release.ID,
		AddedAt:   m.now(),
	}
	if err := m.repo.AddReleaseSlot(ctx, slot); err != nil {
		return uuid.Nil, err
	}
	return resolved.Release.ID, nil
}

func occupied(position int) error {
	return errors.Conflict(fmt.Sprintf("Position %d is already occupied", position))
}

// RemoveSlot clears a position of a week.
func (m *WeekManager) RemoveSlot(ctx context.Context, p *auth.Principal, weekID uuid.UUID, kind domain.SlotKind, position int) error {
	if !domain.ValidPosition(position) {
		return errors.BadRequest("Position must be 1 or 2")
	}

	var week *domain.Week
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if week, err = m.modifiable(ctx, p, weekID); err != nil {
			return err
		}

		var removed bool
		switch kind {
		case domain.SlotFilm:
			removed, err = m.repo.RemoveFilmSlot(ctx, weekID, position)
		case domain.SlotRelease:
			removed, err = m.repo.RemoveReleaseSlot(ctx, weekID, position)
		default:
			err = errors.BadRequest(fmt.Sprintf("Unknown slot kind %q", kind))
		}
		if err != nil {
			return err
		}
		if !removed {
			return errors.NotFound(fmt.Sprintf("No %s found at position %d", kind.Noun(), position))
		}

		return m.repo.Touch(ctx, weekID, m.now())
	})
	if err != nil {
		return err
	}

	m.publish(ctx, constants.EventWeekSlotRemoved, week, map[string]interface{}{
		"kind":     string(kind),
		"position": position,
	})
	return nil
}

// GetOrCreateCurrent returns the week containing now, creating it with the
// requester as owner when nobody has yet. The second result reports whether
// the week was created by this call.
func (m *WeekManager) GetOrCreateCurrent(ctx context.Context, p *auth.Principal) (*domain.Week, bool, error) {
	now := m.now()
	year, weekNumber := now.ISOWeek()

	var week *domain.Week
	var created bool
	err := m.uow.Do(ctx, func(ctx context.Context) error {
		existing, err := m.repo.GetByKey(ctx, year, weekNumber)
		if err == nil {
			week = existing
			return nil
		}
		if !errors.IsNotFound(err) {
			return err
		}

		candidate := &domain.Week{
			OwnerID:    &p.ID,
			Year:       year,
			WeekNumber: weekNumber,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if created, err = m.repo.Create(ctx, candidate); err != nil {
			return err
		}
		// A concurrent request may have won the insert.
		week, err = m.repo.GetByKey(ctx, year, weekNumber)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		m.publish(ctx, constants.EventWeekCreated, week, nil)
	}
	return week, created, nil
}

// ListFilmSelections pages through the films picked in any week.
func (m *WeekManager) ListFilmSelections(ctx context.Context, params pagination.Params) (pagination.Page[repository.FilmSelections], error) {
	items, total, err := m.repo.ListFilmSelections(ctx, params)
	if err != nil {
		return pagination.Page[repository.FilmSelections]{}, err
	}
	return pagination.NewPage(items, total, params), nil
}

// ListReleaseSelections pages through the releases picked in any week.
func (m *WeekManager) ListReleaseSelections(ctx context.Context, params pagination.Params) (pagination.Page[repository.ReleaseSelections], error) {
	items, total, err := m.repo.ListReleaseSelections(ctx, params)
	if err != nil {
		return pagination.Page[repository.ReleaseSelections]{}, err
	}
	return pagination.NewPage(items, total, params), nil
}

// modifiable loads a week and checks that p may change it.
func (m *WeekManager) modifiable(ctx context.Context, p *auth.Principal, id uuid.UUID) (*domain.Week, error) {
	week, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !week.CanModify(p.ID) {
		return nil, errors.Forbidden(forbiddenMessage)
	}
	return week, nil
}

func (m *WeekManager) publish(ctx context.Context, eventType string, week *domain.Week, extra map[string]interface{}) {
	data := map[string]interface{}{
		"week_id":     week.ID.String(),
		"year":        week.Year,
		"week_number": week.WeekNumber,
	}
	if week.OwnerID != nil {
		data["owner_id"] = week.OwnerID.String()
	}
	for k, v := range extra {
		data[k] = v
	}

	database.AfterCommit(ctx, func() {
		m.logger.Info("Week changed",
			interfaces.String("event", eventType),
			interfaces.String("week", week.Label()))

		m.eventBus.PublishAsync(ctx, events.NewAggregateEvent(eventType, week.ID.String(), data))
	})
}
