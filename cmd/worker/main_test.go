package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Empty(t, opts.configPath)
	assert.False(t, opts.once)

	opts, err = parseFlags([]string{"--once", "--config=worker.yaml"})
	require.NoError(t, err)
	assert.True(t, opts.once)
	assert.Equal(t, "worker.yaml", opts.configPath)
}
