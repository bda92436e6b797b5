package service

import (
	"context"
	"time"

	"github.com/narwhalmedia/wrongopinions/internal/film/constants"
	"github.com/narwhalmedia/wrongopinions/internal/film/domain"
	"github.com/narwhalmedia/wrongopinions/internal/film/repository"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/tmdb"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// Catalog is the upstream film catalog.
type Catalog interface {
	SearchMovies(ctx context.Context, p tmdb.SearchParams) (*tmdb.SearchResponse, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetMovieCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error)
}

// Extras are detail fields only known right after an upstream fetch.
type Extras struct {
	BackdropPath string
	Runtime      *int
	VoteAverage  float64
	VoteCount    int
	Tagline      string
	Status       string
	IMDBID       string
	Genres       []string
}

// Resolved is a film served from the cache or just fetched. Extras is nil
// for cache hits.
type Resolved struct {
	Film      *domain.Film
	Extras    *Extras
	WasCached bool
}

// Credits are the cast and crew of a film, ordered by credit order.
type Credits struct {
	Film      *domain.Film
	Cast      []domain.CastCredit
	Crew      []domain.CrewCredit
	WasCached bool
}

// FilmService resolves films and their credits through the local cache.
type FilmService struct {
	catalog  Catalog
	repo     repository.Repository
	uow      database.UnitOfWork
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	now      func() time.Time
}

// NewFilmService creates a new film service.
func NewFilmService(
	catalog Catalog,
	repo repository.Repository,
	uow database.UnitOfWork,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *FilmService {
	return &FilmService{
		catalog:  catalog,
		repo:     repo,
		uow:      uow,
		eventBus: eventBus,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Search passes a search through to the catalog. Results are not cached.
func (s *FilmService) Search(ctx context.Context, p tmdb.SearchParams) (*tmdb.SearchResponse, error) {
	return s.catalog.SearchMovies(ctx, p)
}

// Resolve returns the cached film for tmdbID, fetching and caching it on a
// miss. Catalog errors are returned unchanged.
func (s *FilmService) Resolve(ctx context.Context, tmdbID int) (*Resolved, error) {
	var resolved *Resolved
	var created bool
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		resolved, created, err = s.resolve(ctx, tmdbID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publishCached(ctx, resolved.Film)
	}
	return resolved, nil
}

// ResolveCredits returns the credits of a film. Stored credits are served
// as is; otherwise they are fetched, filtered, truncated to limit and stored.
func (s *FilmService) ResolveCredits(ctx context.Context, tmdbID, limit int) (*Credits, error) {
	limit = clampLimit(limit)

	var credits *Credits
	var created bool
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		resolved, filmCreated, err := s.resolve(ctx, tmdbID)
		if err != nil {
			return err
		}
		created = filmCreated
		film := resolved.Film

		has, err := s.repo.HasCredits(ctx, film.ID)
		if err != nil {
			return err
		}
		if has {
			credits, err = s.storedCredits(ctx, film, limit)
			return err
		}

		credits, err = s.fetchCredits(ctx, film, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publishCached(ctx, credits.Film)
	}
	return credits, nil
}

func (s *FilmService) resolve(ctx context.Context, tmdbID int) (*Resolved, bool, error) {
	film, err := s.repo.GetFilmByTMDBID(ctx, tmdbID)
	if err == nil {
		s.logger.Debug("Film cache hit", interfaces.Int("tmdb_id", tmdbID))
		return &Resolved{Film: film, WasCached: true}, false, nil
	}
	if !errors.IsNotFound(err) {
		return nil, false, err
	}

	details, err := s.catalog.GetMovie(ctx, tmdbID)
	if err != nil {
		return nil, false, err
	}

	stored, created, err := s.repo.CreateFilm(ctx, s.filmFromDetails(details))
	if err != nil {
		return nil, false, err
	}

	return &Resolved{Film: stored, Extras: extrasFromDetails(details)}, created, nil
}

func (s *FilmService) storedCredits(ctx context.Context, film *domain.Film, limit int) (*Credits, error) {
	cast, err := s.repo.ListCast(ctx, film.ID, limit)
	if err != nil {
		return nil, err
	}
	crew, err := s.repo.ListCrew(ctx, film.ID, limit)
	if err != nil {
		return nil, err
	}
	return &Credits{Film: film, Cast: cast, Crew: crew, WasCached: true}, nil
}

func (s *FilmService) fetchCredits(ctx context.Context, film *domain.Film, limit int) (*Credits, error) {
	upstream, err := s.catalog.GetMovieCredits(ctx, film.TMDBID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	castMembers := upstream.Cast
	if len(castMembers) > limit {
		castMembers = castMembers[:limit]
	}
	cast := make([]domain.CastCredit, 0, len(castMembers))
	for i, member := range castMembers {
		person, err := s.repo.FindOrCreatePerson(ctx, &domain.Person{
			TMDBID:             member.ID,
			Name:               member.Name,
			ProfilePath:        member.ProfilePath,
			KnownForDepartment: member.KnownForDepartment,
			CachedAt:           now,
		})
		if err != nil {
			return nil, err
		}
		cast = append(cast, domain.CastCredit{
			FilmID:    film.ID,
			PersonID:  person.ID,
			Person:    person,
			Character: member.Character,
			Order:     i,
			CachedAt:  now,
		})
	}

	crewMembers := FilterCrew(upstream.Crew)
	if len(crewMembers) > limit {
		crewMembers = crewMembers[:limit]
	}
	crew := make([]domain.CrewCredit, 0, len(crewMembers))
	for i, member := range crewMembers {
		person, err := s.repo.FindOrCreatePerson(ctx, &domain.Person{
			TMDBID:             member.ID,
			Name:               member.Name,
			ProfilePath:        member.ProfilePath,
			KnownForDepartment: member.KnownForDepartment,
			CachedAt:           now,
		})
		if err != nil {
			return nil, err
		}
		crew = append(crew, domain.CrewCredit{
			FilmID:     film.ID,
			PersonID:   person.ID,
			Person:     person,
			Department: member.Department,
			Job:        member.Job,
			Order:      i,
			CachedAt:   now,
		})
	}

	if err := s.repo.CreateCastCredits(ctx, cast); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCrewCredits(ctx, crew); err != nil {
		return nil, err
	}

	s.logger.Info("Film credits cached",
		interfaces.Int("tmdb_id", film.TMDBID),
		interfaces.Int("cast", len(cast)),
		interfaces.Int("crew", len(crew)))

	return &Credits{Film: film, Cast: cast, Crew: crew}, nil
}

type crewKey struct {
	personID int
	job      string
}

// FilterCrew keeps the crew members whose job is in constants.CrewJobs,
// once per person and job, in upstream order.
func FilterCrew(crew []tmdb.CrewMember) []tmdb.CrewMember {
	kept := make([]tmdb.CrewMember, 0, len(crew))
	seen := make(map[crewKey]bool, len(crew))
	for _, member := range crew {
		key := crewKey{personID: member.ID, job: member.Job}
		if !constants.CrewJobs[member.Job] || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, member)
	}
	return kept
}

func (s *FilmService) filmFromDetails(d *tmdb.MovieDetails) *domain.Film {
	return &domain.Film{
		TMDBID:        d.ID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		ReleaseDate:   domain.ParseReleaseDate(d.ReleaseDate),
		PosterPath:    d.PosterPath,
		Overview:      d.Overview,
		CachedAt:      s.now(),
	}
}

func extrasFromDetails(d *tmdb.MovieDetails) *Extras {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return &Extras{
		BackdropPath: d.BackdropPath,
		Runtime:      d.Runtime,
		VoteAverage:  d.VoteAverage,
		VoteCount:    d.VoteCount,
		Tagline:      d.Tagline,
		Status:       d.Status,
		IMDBID:       d.IMDBID,
		Genres:       genres,
	}
}

// publishCached announces a new film row once the enclosing transaction
// commits.
func (s *FilmService) publishCached(ctx context.Context, film *domain.Film) {
	database.AfterCommit(ctx, func() {
		s.logger.Info("Film cached",
			interfaces.Int("tmdb_id", film.TMDBID),
			interfaces.String("title", film.Title))

		s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(constants.EventFilmCached, film.ID.String(), map[string]interface{}{
			"film_id": film.ID.String(),
			"tmdb_id": film.TMDBID,
			"title":   film.Title,
		}))
	})
}

func clampLimit(limit int) int {
	if limit < 1 {
		return constants.DefaultCreditLimit
	}
	if limit > constants.MaxCreditLimit {
		return constants.MaxCreditLimit
	}
	return limit
}
