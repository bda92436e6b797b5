// Package musicbrainz is the client for the MusicBrainz web service and the
// Cover Art Archive.
package musicbrainz

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/catalog"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

const (
	catalogName = "MusicBrainz"

	// DefaultCoverArtBaseURL is the Cover Art Archive.
	DefaultCoverArtBaseURL = "https://coverartarchive.org"

	// MaxSearchLimit is the largest page MusicBrainz returns.
	MaxSearchLimit     = 100
	DefaultSearchLimit = 25
)

// ErrUserAgentRequired is returned when no contact User-Agent is configured.
var ErrUserAgentRequired = stderrors.New("musicbrainz: User-Agent is required")

// Client talks to MusicBrainz with at most one request per configured
// interval. Each instance owns its own limiter.
type Client struct {
	api             *catalog.Client
	userAgent       string
	coverArtBaseURL string
}

// NewClient creates a MusicBrainz client.
func NewClient(cfg config.MusicBrainzConfig, httpClient *http.Client, logger interfaces.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, ErrUserAgentRequired
	}

	c := &Client{
		userAgent:       cfg.UserAgent,
		coverArtBaseURL: strings.TrimRight(cfg.CoverArtBaseURL, "/"),
	}
	if c.coverArtBaseURL == "" {
		c.coverArtBaseURL = DefaultCoverArtBaseURL
	}
	c.api = catalog.New(catalogName, cfg.BaseURL, c,
		catalog.WithHTTPClient(httpClient),
		catalog.WithMinInterval(cfg.RateLimitDelay),
		catalog.WithLogger(logger))
	return c, nil
}

// DefaultHeaders implements catalog.HeaderProvider.
func (c *Client) DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
	}
}

// SearchReleases searches releases. limit is clamped to 1..100.
func (c *Client) SearchReleases(ctx context.Context, query string, limit, offset int) (*SearchResponse, error) {
	if limit < 1 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
		"fmt":    {"json"},
	}

	var resp SearchResponse
	if err := c.api.Get(ctx, "/release", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRelease retrieves a release with its artist credits and release group.
func (c *Client) GetRelease(ctx context.Context, id string) (*ReleaseDetails, error) {
	params := url.Values{
		"fmt": {"json"},
		"inc": {"artist-credits+release-groups"},
	}

	var release ReleaseDetails
	if err := c.api.Get(ctx, "/release/"+url.PathEscape(id), params, &release); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Wrap(errors.ErrorTypeNotFound, "Album not found", err)
		}
		return nil, err
	}
	return &release, nil
}

// CoverArtFrontURL returns the front cover URL of a release. The image may
// not exist.
func (c *Client) CoverArtFrontURL(releaseID string) string {
	return c.coverArtBaseURL + "/release/" + releaseID + "/front"
}

// ReleaseGroupCoverArtURL returns the front cover URL of a release group.
func (c *Client) ReleaseGroupCoverArtURL(releaseGroupID string) string {
	return c.coverArtBaseURL + "/release-group/" + releaseGroupID + "/front"
}

// ValidatedCoverArtURL probes the release cover, then the release group
// cover, and returns the first that exists or "" when neither does. Probes
// do not count against the MusicBrainz rate limit.
func (c *Client) ValidatedCoverArtURL(ctx context.Context, releaseID, releaseGroupID string) string {
	if releaseID != "" {
		if u := c.CoverArtFrontURL(releaseID); c.api.Exists(ctx, u) {
			return u
		}
	}
	if releaseGroupID != "" {
		if u := c.ReleaseGroupCoverArtURL(releaseGroupID); c.api.Exists(ctx, u) {
			return u
		}
	}
	return ""
}
