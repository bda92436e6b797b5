package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

type values url.Values

func (v values) Query(key string) string {
	return url.Values(v).Get(key)
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Params
		wantErr bool
	}{
		{name: "defaults", query: "", want: Params{Page: 1, PageSize: 20}},
		{name: "explicit", query: "page=3&page_size=50", want: Params{Page: 3, PageSize: 50}},
		{name: "max page size", query: "page_size=100", want: Params{Page: 1, PageSize: 100}},
		{name: "page zero", query: "page=0", wantErr: true},
		{name: "page size too large", query: "page_size=101", wantErr: true},
		{name: "page size zero", query: "page_size=0", wantErr: true},
		{name: "not a number", query: "page=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := FromQuery(values(q))

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsBadRequest(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, PageSize: 20}.Offset())
}

func TestNewPage(t *testing.T) {
	page := NewPage[string](nil, 41, Params{Page: 2, PageSize: 20})

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.Page)
}

func TestMap(t *testing.T) {
	in := NewPage([]int{1, 2}, 2, Params{Page: 1, PageSize: 20})

	out := Map(in, func(i int) string { return string(rune('a' + i - 1)) })

	assert.Equal(t, []string{"a", "b"}, out.Items)
	assert.Equal(t, in.Total, out.Total)
	assert.Equal(t, in.Pages, out.Pages)
}
