package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/catalog"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

type staticHeaders map[string]string

func (h staticHeaders) DefaultHeaders() map[string]string { return h }

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGet_DecodesAndSendsHeaders(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/42", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"title":"Fight Club"}`))
	})

	c := catalog.New("TMDB", srv.URL+"/", staticHeaders{"Authorization": "Bearer token"})

	var out struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	err := c.Get(context.Background(), "/items/42", url.Values{"fmt": {"json"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "Fight Club", out.Title)
}

func TestGet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsNotFound(err))
			},
		},
		{
			name:       "rate limited with hint",
			status:     http.StatusTooManyRequests,
			retryAfter: "5",
			check: func(t *testing.T, err error) {
				appErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrorTypeRateLimited, appErr.Type)
				assert.Equal(t, 5, appErr.RetryAfter)
			},
		},
		{
			name:   "rate limited without hint",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				appErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, 0, appErr.RetryAfter)
			},
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   "maintenance",
			check: func(t *testing.T, err error) {
				appErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrorTypeUpstream, appErr.Type)
				assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode)
				assert.Contains(t, appErr.Message, "maintenance")
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   "{not json",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsUpstream(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := catalog.New("TMDB", srv.URL, staticHeaders{})

			var out map[string]any
			err := c.Get(context.Background(), "/x", nil, &out)

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGet_TimeoutIsUpstreamFailure(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})
	c := catalog.New("MusicBrainz", srv.URL, staticHeaders{},
		catalog.WithHTTPClient(catalog.NewHTTPClient(20*time.Millisecond)))

	var out map[string]any
	err := c.Get(context.Background(), "/slow", nil, &out)

	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeUpstream, appErr.Type)
	assert.Contains(t, appErr.Message, "timed out")
}

func TestGet_MinIntervalSpacesRequests(t *testing.T) {
	var hits []time.Time
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, time.Now())
		_, _ = w.Write([]byte(`{}`))
	})
	interval := 80 * time.Millisecond
	c := catalog.New("MusicBrainz", srv.URL, staticHeaders{}, catalog.WithMinInterval(interval))

	for i := 0; i < 3; i++ {
		var out map[string]any
		require.NoError(t, c.Get(context.Background(), "/r", nil, &out))
	}

	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		// Allow a small scheduling margin below the nominal interval.
		assert.GreaterOrEqual(t, hits[i].Sub(hits[i-1]), interval-10*time.Millisecond)
	}
}

func TestExists_BypassesLimiter(t *testing.T) {
	var heads atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/present":
			heads.Add(1)
			assert.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Location", "https://archive.example/image.jpg")
			w.WriteHeader(http.StatusTemporaryRedirect)
		case "/missing":
			heads.Add(1)
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
	c := catalog.New("MusicBrainz", srv.URL, staticHeaders{}, catalog.WithMinInterval(time.Hour))

	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/first", nil, &out))

	start := time.Now()
	assert.True(t, c.Exists(context.Background(), srv.URL+"/present"))
	assert.False(t, c.Exists(context.Background(), srv.URL+"/missing"))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(2), heads.Load())
}
