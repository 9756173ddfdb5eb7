package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topo.sh")
	cmds := []Command{
		{Cmd: "ip netns add r1"},
		{Cmd: "ip netns add c1"},
	}
	require.NoError(t, WriteScript(path, cmds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\nip netns add r1\nip netns add c1\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0774), info.Mode().Perm())
}

func TestWriteScriptEmptySequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sh")
	require.NoError(t, WriteScript(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\n", string(data))
}

func TestScriptPaths(t *testing.T) {
	cfg := Config{TopologyPath: "testdata/wg.yaml", OutputDir: "out"}
	setup, cleanup := cfg.ScriptPaths()
	assert.Equal(t, filepath.Join("out", "wg.sh"), setup)
	assert.Equal(t, filepath.Join("out", "cleanup_wg.sh"), cleanup)
}
