// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os/user"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTildeInDir(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)

	got, err := ReplaceTildeInDir("~/plots/a.png")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "plots/a.png"), got)

	got, err = ReplaceTildeInDir("~")
	require.NoError(t, err)
	assert.Equal(t, path.Clean(usr.HomeDir), got)

	got, err = ReplaceTildeInDir("/tmp/~x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/~x", got)

	_, err = ReplaceTildeInDir("~no_such_user_for_sure_42/x")
	require.Error(t, err)
}

func TestPrepareOutputFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "a", "b", "plot.png")
	got, err := PrepareOutputFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, filePath, got)

	exists, err := FileExists(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = FileExists(filePath)
	require.NoError(t, err)
	assert.False(t, exists)
}
