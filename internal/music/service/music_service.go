package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
	"github.com/narwhalmedia/wrongopinions/internal/music/constants"
	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/internal/music/repository"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// Catalog is the upstream music catalog.
type Catalog interface {
	SearchReleases(ctx context.Context, query string, limit, offset int) (*musicbrainz.SearchResponse, error)
	GetRelease(ctx context.Context, id string) (*musicbrainz.ReleaseDetails, error)
	ValidatedCoverArtURL(ctx context.Context, releaseID, releaseGroupID string) string
}

// Extras are detail fields only known right after an upstream fetch.
type Extras struct {
	Status  string
	Country string
	Barcode string
}

// Resolved is a release served from the cache or just fetched. Extras is
// nil for cache hits.
type Resolved struct {
	Release   *domain.Release
	Extras    *Extras
	WasCached bool
}

// Credits are the artist credits of a release ordered by credit order.
type Credits struct {
	Release   *domain.Release
	Artists   []domain.ReleaseCredit
	WasCached bool
}

// MusicService resolves releases and their artist credits through the
// local cache.
type MusicService struct {
	catalog  Catalog
	repo     repository.Repository
	uow      database.UnitOfWork
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	now      func() time.Time
}

// NewMusicService creates a new music service.
func NewMusicService(
	catalog Catalog,
	repo repository.Repository,
	uow database.UnitOfWork,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *MusicService {
	return &MusicService{
		catalog:  catalog,
		repo:     repo,
		uow:      uow,
		eventBus: eventBus,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CanonicalMBID validates a MusicBrainz id and returns its lowercase form.
func CanonicalMBID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.BadRequest("Invalid MusicBrainz ID")
	}
	return id.String(), nil
}

// Search passes a search through to the catalog. Results are not cached.
func (s *MusicService) Search(ctx context.Context, query string, limit, offset int) (*musicbrainz.SearchResponse, error) {
	return s.catalog.SearchReleases(ctx, query, limit, offset)
}

// Resolve returns the cached release for mbid, fetching and caching it on a
// miss. Catalog errors are returned unchanged.
func (s *MusicService) Resolve(ctx context.Context, mbid string) (*Resolved, error) {
	mbid, err := CanonicalMBID(mbid)
	if err != nil {
		return nil, err
	}

	var resolved *Resolved
	var created bool
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		resolved, _, created, err = s.resolve(ctx, mbid)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publishCached(ctx, resolved.Release)
	}
	return resolved, nil
}

// ResolveCredits returns the artist credits of a release. Stored credits
// are served as is; otherwise the first limit upstream credits are stored,
// skipping those without an artist.
func (s *MusicService) ResolveCredits(ctx context.Context, mbid string, limit int) (*Credits, error) {
	mbid, err := CanonicalMBID(mbid)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	var credits *Credits
	var created bool
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		resolved, details, releaseCreated, err := s.resolve(ctx, mbid)
		if err != nil {
			return err
		}
		created = releaseCreated
		release := resolved.Release

		has, err := s.repo.HasCredits(ctx, release.ID)
		if err != nil {
			return err
		}
		if has {
			stored, err := s.repo.ListCredits(ctx, release.ID, limit)
			if err != nil {
				return err
			}
			credits = &Credits{Release: release, Artists: stored, WasCached: true}
			return nil
		}

		if details == nil {
			details, err = s.catalog.GetRelease(ctx, mbid)
			if err != nil {
				return err
			}
		}

		artists, err := s.storeCredits(ctx, release, details.ArtistCredit, limit)
		if err != nil {
			return err
		}
		credits = &Credits{Release: release, Artists: artists}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publishCached(ctx, credits.Release)
	}
	return credits, nil
}

// resolve returns the release and, on a miss, the upstream details it was
// built from.
func (s *MusicService) resolve(ctx context.Context, mbid string) (*Resolved, *musicbrainz.ReleaseDetails, bool, error) {
	release, err := s.repo.GetReleaseByMBID(ctx, mbid)
	if err == nil {
		s.logger.Debug("Release cache hit", interfaces.String("musicbrainz_id", mbid))
		return &Resolved{Release: release, WasCached: true}, nil, false, nil
	}
	if !errors.IsNotFound(err) {
		return nil, nil, false, err
	}

	details, err := s.catalog.GetRelease(ctx, mbid)
	if err != nil {
		return nil, nil, false, err
	}

	artist := details.ArtistName()
	if artist == "" {
		artist = constants.UnknownArtist
	}

	stored, created, err := s.repo.CreateRelease(ctx, &domain.Release{
		MusicBrainzID: mbid,
		Title:         details.Title,
		Artist:        artist,
		ReleaseDate:   domain.ParseReleaseDate(details.Date),
		CoverArtURL:   s.catalog.ValidatedCoverArtURL(ctx, mbid, details.ReleaseGroupID()),
		CachedAt:      s.now(),
	})
	if err != nil {
		return nil, nil, false, err
	}

	extras := &Extras{Status: details.Status, Country: details.Country, Barcode: details.Barcode}
	return &Resolved{Release: stored, Extras: extras}, details, created, nil
}

func (s *MusicService) storeCredits(ctx context.Context, release *domain.Release, upstream []musicbrainz.ArtistCredit, limit int) ([]domain.ReleaseCredit, error) {
	if len(upstream) > limit {
		upstream = upstream[:limit]
	}
	now := s.now()

	credits := make([]domain.ReleaseCredit, 0, len(upstream))
	for i, credit := range upstream {
		if credit.Artist == nil || credit.Artist.ID == "" {
			continue
		}

		artist, err := s.repo.FindOrCreateArtist(ctx, &domain.Artist{
			MusicBrainzID:  strings.ToLower(credit.Artist.ID),
			Name:           credit.Artist.Name,
			SortName:       credit.Artist.SortName,
			Disambiguation: credit.Artist.Disambiguation,
			ArtistType:     credit.Artist.Type,
			Country:        credit.Artist.Country,
			CachedAt:       now,
		})
		if err != nil {
			return nil, err
		}

		credits = append(credits, domain.ReleaseCredit{
			ReleaseID:  release.ID,
			ArtistID:   artist.ID,
			Artist:     artist,
			JoinPhrase: credit.JoinPhrase,
			Order:      i,
			CachedAt:   now,
		})
	}

	if err := s.repo.CreateCredits(ctx, credits); err != nil {
		return nil, err
	}

	s.logger.Info("Release credits cached",
		interfaces.String("musicbrainz_id", release.MusicBrainzID),
		interfaces.Int("artists", len(credits)))

	return credits, nil
}

func (s *MusicService) publishCached(ctx context.Context, release *domain.Release) {
	database.AfterCommit(ctx, func() {
		s.logger.Info("Release cached",
			interfaces.String("musicbrainz_id", release.MusicBrainzID),
			interfaces.String("title", release.Title))

		s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(constants.EventReleaseCached, release.ID.String(), map[string]interface{}{
			"release_id":     release.ID.String(),
			"musicbrainz_id": release.MusicBrainzID,
			"title":          release.Title,
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
