package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPaths(t *testing.T) {
	t.Parallel()

	paths, err := cleanPaths(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, paths)

	paths, err = cleanPaths([]string{"src/../lib/", "./a.ts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "a.ts"}, paths)

	_, err = cleanPaths([]string{" "})
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = cleanPaths([]string{"a\x00b"})
	require.ErrorIs(t, err, ErrPathContainsNUL)
}

func TestCheckFormat(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkFormat("json", formatDiff, formatJSON))
	require.ErrorIs(t, checkFormat("xml", formatDiff, formatJSON), ErrUnknownFormat)
}
