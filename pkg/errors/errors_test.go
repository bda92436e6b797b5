package errors_test

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", errors.NotFound("Week not found"), errors.IsNotFound},
		{"bad request", errors.BadRequest("Position must be 1 or 2"), errors.IsBadRequest},
		{"conflict", errors.Conflict("Position 1 is already occupied"), errors.IsConflict},
		{"unauthorized", errors.Unauthorized("Could not validate credentials"), errors.IsUnauthorized},
		{"forbidden", errors.Forbidden("Not your week"), errors.IsForbidden},
		{"rate limited", errors.RateLimited("slow down", 3), errors.IsRateLimited},
		{"upstream", errors.Upstream("bad gateway", 503, nil), errors.IsUpstream},
		{"internal", errors.Internal("boom"), errors.IsInternal},
		{"wrapped", fmt.Errorf("resolve: %w", errors.NotFound("Movie not found")), errors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestAs_CarriesUpstreamMetadata(t *testing.T) {
	err := fmt.Errorf("fetch: %w", errors.RateLimited("TMDB rate limit exceeded", 7))

	appErr, ok := errors.As(err)
	assert.True(t, ok)
	assert.Equal(t, 7, appErr.RetryAfter)

	appErr, ok = errors.As(errors.Upstream("TMDB returned 500", 500, nil))
	assert.True(t, ok)
	assert.Equal(t, 500, appErr.StatusCode)

	_, ok = errors.As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, errors.IsDuplicateError(nil))
	assert.True(t, errors.IsDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, errors.IsDuplicateError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, errors.IsDuplicateError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, errors.IsDuplicateError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, errors.IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: weeks.year, weeks.week_number")))
	assert.False(t, errors.IsDuplicateError(gorm.ErrRecordNotFound))
}
