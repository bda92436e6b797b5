// Package tmdb is the client for The Movie Database API.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/catalog"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

const (
	catalogName     = "TMDB"
	defaultLanguage = "en-US"
)

// Client represents a TMDB API client
type Client struct {
	api          *catalog.Client
	apiKey       string
	imageBaseURL string
}

// NewClient creates a new TMDB client. httpClient may be shared with other
// catalogs.
func NewClient(cfg config.TMDBConfig, httpClient *http.Client, logger interfaces.Logger) *Client {
	c := &Client{
		apiKey:       cfg.APIKey,
		imageBaseURL: cfg.ImageBaseURL,
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = DefaultImageBaseURL
	}
	c.api = catalog.New(catalogName, cfg.BaseURL, c,
		catalog.WithHTTPClient(httpClient),
		catalog.WithLogger(logger))
	return c
}

// DefaultHeaders implements catalog.HeaderProvider using bearer auth.
func (c *Client) DefaultHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Accept":        "application/json",
	}
}

// SearchParams are the options of a movie search.
type SearchParams struct {
	Query        string
	Page         int
	Year         int
	IncludeAdult bool
	Language     string
}

// SearchMovies searches movies by title. Results are not cached.
func (c *Client) SearchMovies(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Language == "" {
		p.Language = defaultLanguage
	}

	params := url.Values{
		"query":         {p.Query},
		"page":          {strconv.Itoa(p.Page)},
		"include_adult": {strconv.FormatBool(p.IncludeAdult)},
		"language":      {p.Language},
	}
	if p.Year > 0 {
		params.Set("year", strconv.Itoa(p.Year))
	}

	var resp SearchResponse
	if err := c.api.Get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMovie retrieves movie details.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	var movie MovieDetails
	if err := c.api.Get(ctx, fmt.Sprintf("/movie/%d", id), url.Values{"language": {defaultLanguage}}, &movie); err != nil {
		return nil, movieError(err)
	}
	return &movie, nil
}

// GetMovieCredits retrieves the cast and crew of a movie.
func (c *Client) GetMovieCredits(ctx context.Context, id int) (*CreditsResponse, error) {
	var credits CreditsResponse
	if err := c.api.Get(ctx, fmt.Sprintf("/movie/%d/credits", id), url.Values{"language": {defaultLanguage}}, &credits); err != nil {
		return nil, movieError(err)
	}
	return &credits, nil
}

func movieError(err error) error {
	if errors.IsNotFound(err) {
		return errors.Wrap(errors.ErrorTypeNotFound, "Movie not found", err)
	}
	return err
}
