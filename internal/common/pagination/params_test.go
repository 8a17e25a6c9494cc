package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/common/pagination"
)

var cfg = pagination.Config{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100}

func TestParseQueryParams(t *testing.T) {
	tests := []struct {
		query   string
		want    pagination.Params
		wantErr string
	}{
		{query: "", want: pagination.Params{Page: 1, Limit: 20}},
		{query: "page=3", want: pagination.Params{Page: 3, Limit: 20}},
		{query: "limit=100", want: pagination.Params{Page: 1, Limit: 100}},
		{query: "page=2&limit=5&category=History", want: pagination.Params{Page: 2, Limit: 5}},
		{query: "page=0", wantErr: "page must be a positive integer"},
		{query: "page=-4", wantErr: "page must be a positive integer"},
		{query: "page=two", wantErr: `page "two" is not a number`},
		{query: "limit=0", wantErr: "limit must be between 1 and 100"},
		{query: "limit=101", wantErr: "limit must be between 1 and 100"},
		{query: "limit=1.5", wantErr: `limit "1.5" is not a number`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/articles?"+tt.query, nil)
			got, err := pagination.ParseQueryParams(req, cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Contains(t, err.Error(), "invalid query parameter")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_WithDefaults(t *testing.T) {
	assert.Equal(t, pagination.Params{Page: 1, Limit: 20}, pagination.Params{}.WithDefaults(cfg))
	assert.Equal(t, pagination.Params{Page: 4, Limit: 100}, pagination.Params{Page: 4, Limit: 500}.WithDefaults(cfg))
	assert.Equal(t, pagination.Params{Page: 1, Limit: 7}, pagination.Params{Page: -2, Limit: 7}.WithDefaults(cfg))
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}
