package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wikinotes/internal/common/pagination"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PAGINATION_DEFAULT_PAGE", "")
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "50")
	t.Setenv("PAGINATION_MAX_LIMIT", "not-a-number")

	got := pagination.LoadFromEnv(pagination.DefaultConfig())
	assert.Equal(t, pagination.Config{DefaultPage: 1, DefaultLimit: 50, MaxLimit: 100}, got)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, pagination.DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  pagination.Config
		want string
	}{
		{name: "zero page", cfg: pagination.Config{DefaultPage: 0, DefaultLimit: 20, MaxLimit: 100}, want: "default_page"},
		{name: "zero max", cfg: pagination.Config{DefaultPage: 1, DefaultLimit: 20, MaxLimit: 0}, want: "max_limit"},
		{name: "default above max", cfg: pagination.Config{DefaultPage: 1, DefaultLimit: 200, MaxLimit: 100}, want: "default_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
