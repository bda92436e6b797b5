package musicbrainz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

const releaseID = "b84ee12a-09ef-421b-82de-0441a926375b"

func newClient(t *testing.T, delay time.Duration, handler http.HandlerFunc) (*musicbrainz.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := musicbrainz.NewClient(config.MusicBrainzConfig{
		BaseURL:         srv.URL + "/ws/2",
		CoverArtBaseURL: srv.URL + "/caa",
		UserAgent:       "WrongOpinionsTest/1.0 (tests@wrongopinions.dev)",
		RateLimitDelay:  delay,
	}, srv.Client(), nil)
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresUserAgent(t *testing.T) {
	_, err := musicbrainz.NewClient(config.MusicBrainzConfig{BaseURL: "http://localhost"}, nil, nil)
	assert.ErrorIs(t, err, musicbrainz.ErrUserAgentRequired)
}

func TestSearchReleases(t *testing.T) {
	client, _ := newClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/2/release", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "WrongOpinionsTest")
		q := r.URL.Query()
		assert.Equal(t, "abbey road", q.Get("query"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "10", q.Get("offset"))
		assert.Equal(t, "json", q.Get("fmt"))
		_, _ = w.Write([]byte(`{"count":1,"offset":10,"releases":[
			{"id":"` + releaseID + `","title":"Abbey Road","score":100,"date":"1969-09-26",
			 "artist-credit":[{"name":"The Beatles"}]}]}`))
	})

	resp, err := client.SearchReleases(context.Background(), "abbey road", 500, 10)

	require.NoError(t, err)
	require.Len(t, resp.Releases, 1)
	assert.Equal(t, "The Beatles", resp.Releases[0].ArtistName())
}

func TestGetRelease(t *testing.T) {
	client, _ := newClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/2/release/"+releaseID, r.URL.Path)
		assert.Equal(t, "artist-credits+release-groups", r.URL.Query().Get("inc"))
		_, _ = w.Write([]byte(`{"id":"` + releaseID + `","title":"Abbey Road","date":"1969",
			"release-group":{"id":"9162580e-5df4-32de-80cc-f45a8d8a9b1d"},
			"artist-credit":[
				{"name":"The Beatles","joinphrase":"","artist":{"id":"b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d","name":"The Beatles","sort-name":"Beatles, The","type":"Group","country":"GB"}}
			]}`))
	})

	release, err := client.GetRelease(context.Background(), releaseID)

	require.NoError(t, err)
	assert.Equal(t, "Abbey Road", release.Title)
	assert.Equal(t, "9162580e-5df4-32de-80cc-f45a8d8a9b1d", release.ReleaseGroupID())
	require.Len(t, release.ArtistCredit, 1)
	assert.Equal(t, "Beatles, The", release.ArtistCredit[0].Artist.SortName)
}

func TestGetRelease_NotFound(t *testing.T) {
	client, _ := newClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetRelease(context.Background(), releaseID)

	assert.True(t, errors.IsNotFound(err))
}

func TestRequestsAreSpaced(t *testing.T) {
	var last atomic.Int64
	var minGap atomic.Int64
	minGap.Store(int64(time.Hour))
	client, _ := newClient(t, 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UnixNano()
		if prev := last.Swap(now); prev != 0 && now-prev < minGap.Load() {
			minGap.Store(now - prev)
		}
		_, _ = w.Write([]byte(`{"count":0,"offset":0,"releases":[]}`))
	})

	done := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := client.SearchReleases(context.Background(), "q", 10, 0)
			done <- err
		}()
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}

	assert.GreaterOrEqual(t, time.Duration(minGap.Load()), 90*time.Millisecond)
}

func TestValidatedCoverArtURL(t *testing.T) {
	const groupID = "9162580e-5df4-32de-80cc-f45a8d8a9b1d"

	tests := []struct {
		name         string
		releaseCover int
		groupCover   int
		wantSuffix   string
	}{
		{"release cover present", http.StatusTemporaryRedirect, http.StatusOK, "/caa/release/" + releaseID + "/front"},
		{"falls back to release group", http.StatusNotFound, http.StatusOK, "/caa/release-group/" + groupID + "/front"},
		{"neither present", http.StatusNotFound, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newClient(t, time.Hour, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodHead, r.Method)
				switch r.URL.Path {
				case "/caa/release/" + releaseID + "/front":
					if tt.releaseCover == http.StatusTemporaryRedirect {
						w.Header().Set("Location", "https://archive.example/front.jpg")
					}
					w.WriteHeader(tt.releaseCover)
				case "/caa/release-group/" + groupID + "/front":
					w.WriteHeader(tt.groupCover)
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			})

			got := client.ValidatedCoverArtURL(context.Background(), releaseID, groupID)

			if tt.wantSuffix == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, srv.URL+tt.wantSuffix, got)
		})
	}
}

func TestCoverArtFrontURL(t *testing.T) {
	client, err := musicbrainz.NewClient(config.MusicBrainzConfig{UserAgent: "ua"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://coverartarchive.org/release/"+releaseID+"/front", client.CoverArtFrontURL(releaseID))
}
