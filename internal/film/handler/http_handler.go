package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/narwhalmedia/wrongopinions/internal/film/constants"
	"github.com/narwhalmedia/wrongopinions/internal/film/service"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/tmdb"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

// HTTPHandler serves the movie endpoints.
type HTTPHandler struct {
	service *service.FilmService
	images  Images
}

// NewHTTPHandler creates a new movie handler.
func NewHTTPHandler(filmService *service.FilmService, images Images) *HTTPHandler {
	return &HTTPHandler{
		service: filmService,
		images:  images,
	}
}

// RegisterRoutes mounts the movie routes on an authenticated group.
func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movies := rg.Group("/movies")
	movies.GET("/search", h.search)
	movies.GET("/:tmdb_id", h.get)
	movies.GET("/:tmdb_id/credits", h.credits)
}

// SearchResult is a single entry of a movie search.
type SearchResult struct {
	TMDBID        int     `json:"tmdb_id"`
	Title         string  `json:"title"`
	OriginalTitle *string `json:"original_title"`
	ReleaseDate   *string `json:"release_date"`
	PosterURL     *string `json:"poster_url"`
	Overview      *string `json:"overview"`
	VoteAverage   float64 `json:"vote_average"`
}

// SearchResponse is the body of GET /api/movies/search.
type SearchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// DetailResponse is the body of GET /api/movies/:tmdb_id. Fields only known
// from a fresh fetch are null when cached is true.
type DetailResponse struct {
	TMDBID        int      `json:"tmdb_id"`
	Title         string   `json:"title"`
	OriginalTitle *string  `json:"original_title"`
	ReleaseDate   *string  `json:"release_date"`
	PosterURL     *string  `json:"poster_url"`
	BackdropURL   *string  `json:"backdrop_url"`
	Overview      *string  `json:"overview"`
	Runtime       *int     `json:"runtime"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	Tagline       *string  `json:"tagline"`
	Status        *string  `json:"status"`
	IMDBID        *string  `json:"imdb_id"`
	Genres        []string `json:"genres"`
	Cached        bool     `json:"cached"`
}

// CastMember is one cast entry of a credits response.
type CastMember struct {
	TMDBID     int     `json:"tmdb_id"`
	Name       string  `json:"name"`
	Character  *string `json:"character"`
	Order      int     `json:"order"`
	ProfileURL *string `json:"profile_url"`
}

// CrewMember is one crew entry of a credits response.
type CrewMember struct {
	TMDBID     int     `json:"tmdb_id"`
	Name       string  `json:"name"`
	Department *string `json:"department"`
	Job        string  `json:"job"`
	ProfileURL *string `json:"profile_url"`
}

// CreditsResponse is the body of GET /api/movies/:tmdb_id/credits.
type CreditsResponse struct {
	TMDBID int          `json:"tmdb_id"`
	Cast   []CastMember `json:"cast"`
	Crew   []CrewMember `json:"crew"`
	Cached bool         `json:"cached"`
}

// search handles GET /api/movies/search
func (h *HTTPHandler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		_ = c.Error(errors.BadRequest("query is required"))
		return
	}

	params := tmdb.SearchParams{Query: query, Page: 1}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			_ = c.Error(errors.BadRequest("page must be a positive integer"))
			return
		}
		params.Page = page
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1800 || year > 2100 {
			_ = c.Error(errors.BadRequest("year must be between 1800 and 2100"))
			return
		}
		params.Year = year
	}

	resp, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, m := range resp.Results {
		results = append(results, SearchResult{
			TMDBID:        m.ID,
			Title:         m.Title,
			OriginalTitle: optional(m.OriginalTitle),
			ReleaseDate:   optional(m.ReleaseDate),
			PosterURL:     optional(h.images.PosterURL(m.PosterPath, "")),
			Overview:      optional(m.Overview),
			VoteAverage:   m.VoteAverage,
		})
	}

	c.JSON(http.StatusOK, SearchResponse{
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Results:      results,
	})
}

// get handles GET /api/movies/:tmdb_id
func (h *HTTPHandler) get(c *gin.Context) {
	tmdbID, ok := tmdbIDParam(c)
	if !ok {
		return
	}

	resolved, err := h.service.Resolve(c.Request.Context(), tmdbID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	film := resolved.Film
	resp := DetailResponse{
		TMDBID:        film.TMDBID,
		Title:         film.Title,
		OriginalTitle: optional(film.OriginalTitle),
		ReleaseDate:   formatDate(film.ReleaseDate),
		PosterURL:     optional(h.images.PosterURL(film.PosterPath, "")),
		Overview:      optional(film.Overview),
		Genres:        []string{},
		Cached:        resolved.WasCached,
	}
	if extras := resolved.Extras; extras != nil {
		resp.BackdropURL = optional(h.images.BackdropURL(extras.BackdropPath, ""))
		resp.Runtime = extras.Runtime
		resp.VoteAverage = extras.VoteAverage
		resp.VoteCount = extras.VoteCount
		resp.Tagline = optional(extras.Tagline)
		resp.Status = optional(extras.Status)
		resp.IMDBID = optional(extras.IMDBID)
		resp.Genres = extras.Genres
	}

	c.JSON(http.StatusOK, resp)
}

// credits handles GET /api/movies/:tmdb_id/credits
func (h *HTTPHandler) credits(c *gin.Context) {
	tmdbID, ok := tmdbIDParam(c)
	if !ok {
		return
	}

	limit := constants.DefaultCreditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > constants.MaxCreditLimit {
			_ = c.Error(errors.BadRequest("limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	credits, err := h.service.ResolveCredits(c.Request.Context(), tmdbID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := CreditsResponse{
		TMDBID: credits.Film.TMDBID,
		Cast:   make([]CastMember, 0, len(credits.Cast)),
		Crew:   make([]CrewMember, 0, len(credits.Crew)),
		Cached: credits.WasCached,
	}
	for _, credit := range credits.Cast {
		resp.Cast = append(resp.Cast, CastMember{
			TMDBID:     credit.Person.TMDBID,
			Name:       credit.Person.Name,
			Character:  optional(credit.Character),
			Order:      credit.Order,
			ProfileURL: optional(h.images.ProfileURL(credit.Person.ProfilePath, "")),
		})
	}
	for _, credit := range credits.Crew {
		resp.Crew = append(resp.Crew, CrewMember{
			TMDBID:     credit.Person.TMDBID,
			Name:       credit.Person.Name,
			Department: optional(credit.Department),
			Job:        credit.Job,
			ProfileURL: optional(h.images.ProfileURL(credit.Person.ProfilePath, "")),
		})
	}

	c.JSON(http.StatusOK, resp)
}

func tmdbIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("tmdb_id"))
	if err != nil || id < 1 {
		_ = c.Error(errors.BadRequest("Invalid TMDB ID"))
		return 0, false
	}
	return id, true
}
