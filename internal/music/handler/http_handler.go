package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/narwhalmedia/wrongopinions/internal/music/constants"
	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/internal/music/service"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

// CoverArt builds unvalidated cover art URLs for search results.
type CoverArt interface {
	CoverArtFrontURL(releaseID string) string
}

// HTTPHandler serves the album endpoints.
type HTTPHandler struct {
	service  *service.MusicService
	coverArt CoverArt
}

// NewHTTPHandler creates a new album handler.
func NewHTTPHandler(musicService *service.MusicService, coverArt CoverArt) *HTTPHandler {
	return &HTTPHandler{
		service:  musicService,
		coverArt: coverArt,
	}
}

// RegisterRoutes mounts the album routes on an authenticated group.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	albums := rg.Group("/albums")
	albums.GET("/search", h.search)
	albums.GET("/:musicbrainz_id", h.get)
	albums.GET("/:musicbrainz_id/credits", h.credits)
}

// SearchResult is a single entry of an album search.
type SearchResult struct {
	MusicBrainzID string  `json:"musicbrainz_id"`
	Title         string  `json:"title"`
	Artist        *string `json:"artist"`
	ReleaseDate   *string `json:"release_date"`
	Country       *string `json:"country"`
	Score         int     `json:"score"`
	CoverArtURL   *string `json:"cover_art_url"`
}

// SearchResponse is the body of GET /api/albums/search.
type SearchResponse struct {
	Count   int            `json:"count"`
	Offset  int            `json:"offset"`
	Results []SearchResult `json:"results"`
}

// DetailResponse is the body of GET /api/albums/:musicbrainz_id.
type DetailResponse struct {
	MusicBrainzID string  `json:"musicbrainz_id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	ReleaseDate   *string `json:"release_date"`
	Country       *string `json:"country"`
	Status        *string `json:"status"`
	Barcode       *string `json:"barcode"`
	CoverArtURL   *string `json:"cover_art_url"`
	Cached        bool    `json:"cached"`
}

// ArtistCredit is one artist of a credits response.
type ArtistCredit struct {
	MusicBrainzID  string  `json:"musicbrainz_id"`
	Name           string  `json:"name"`
	SortName       *string `json:"sort_name"`
	Disambiguation *string `json:"disambiguation"`
	ArtistType     *string `json:"artist_type"`
	Country        *string `json:"country"`
	JoinPhrase     *string `json:"join_phrase"`
	Order          int     `json:"order"`
}

// CreditsResponse is the body of GET /api/albums/:musicbrainz_id/credits.
type CreditsResponse struct {
	MusicBrainzID string         `json:"musicbrainz_id"`
	Artists       []ArtistCredit `json:"artists"`
	Cached        bool           `json:"cached"`
}

// search handles GET /api/albums/search
func (h *HTTPHandler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		_ = c.Error(errors.BadRequest("query is required"))
		return
	}

	limit, ok := intQuery(c, "limit", constants.DefaultSearchLimit, 1, constants.MaxSearchLimit)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0, 0, -1)
	if !ok {
		return
	}

	resp, err := h.service.Search(c.Request.Context(), query, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results := make([]SearchResult, 0, len(resp.Releases))
	for _, r := range resp.Releases {
		results = append(results, SearchResult{
			MusicBrainzID: r.ID,
			Title:         r.Title,
			Artist:        optional(r.ArtistName()),
			ReleaseDate:   optional(r.Date),
			Country:       optional(r.Country),
			Score:         r.Score,
			CoverArtURL:   optional(h.coverArt.CoverArtFrontURL(r.ID)),
		})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Count:   resp.Count,
		Offset:  resp.Offset,
		Results: results,
	})
}

// get handles GET /api/albums/:musicbrainz_id
func (h *HTTPHandler) get(c *gin.Context) {
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("musicbrainz_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	release := resolved.Release
	resp := DetailResponse{
		MusicBrainzID: release.MusicBrainzID,
		Title:         release.Title,
		Artist:        release.Artist,
		ReleaseDate:   optional(domain.FormatReleaseDate(release.ReleaseDate)),
		CoverArtURL:   optional(release.CoverArtURL),
		Cached:        resolved.WasCached,
	}
	if extras := resolved.Extras; extras != nil {
		resp.Country = optional(extras.Country)
		resp.Status = optional(extras.Status)
		resp.Barcode = optional(extras.Barcode)
	}

	c.JSON(http.StatusOK, resp)
}

// credits handles GET /api/albums/:musicbrainz_id/credits
func (h *HTTPHandler) credits(c *gin.Context) {
	limit, ok := intQuery(c, "limit", constants.DefaultCreditLimit, 1, constants.MaxCreditLimit)
	if !ok {
		return
	}

	credits, err := h.service.ResolveCredits(c.Request.Context(), c.Param("musicbrainz_id"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := CreditsResponse{
		MusicBrainzID: credits.Release.MusicBrainzID,
		Artists:       make([]ArtistCredit, 0, len(credits.Artists)),
		Cached:        credits.WasCached,
	}
	for _, credit := range credits.Artists {
		resp.Artists = append(resp.Artists, ArtistCredit{
			MusicBrainzID:  credit.Artist.MusicBrainzID,
			Name:           credit.Artist.Name,
			SortName:       optional(credit.Artist.SortName),
			Disambiguation: optional(credit.Artist.Disambiguation),
			ArtistType:     optional(credit.Artist.ArtistType),
			Country:        optional(credit.Artist.Country),
			JoinPhrase:     optional(credit.JoinPhrase),
			Order:          credit.Order,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// intQuery parses an optional integer query parameter. hi < 0 means
// unbounded.
func intQuery(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		msg := fmt.Sprintf("%s must be at least %d", key, lo)
		if hi >= 0 {
			msg = fmt.Sprintf("%s must be between %d and %d", key, lo, hi)
		}
		_ = c.Error(errors.BadRequest(msg))
		return 0, false
	}
	return n, true
}
