package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/litter"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

func setup(t *testing.T) (configPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	configPath = filepath.Join(dir, "planetsim.yaml")
	body := "log:\n  level: silent\nstorage:\n  backend: file\n  path: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o644))
	return configPath, dataDir
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestInspectEmpty(t *testing.T) {
	cfg, _ := setup(t)
	out := execute(t, "inspect", "--config", cfg)
	assert.Contains(t, out, "no stored state")
}

func TestInspectSummary(t *testing.T) {
	cfg, dataDir := setup(t)

	kv, err := storage.NewFile(dataDir)
	require.NoError(t, err)
	doc := storage.DefaultDocument()
	doc.Health = 64
	doc.Trash = []litter.PackedItem{
		{0, 0, 0, 1, 0, 0, 0, 1, 1.1},
		{2, 1, 0, 0, 0, 0, 0, 1, 1.1},
		{2, 0, 1, 0, 0, 0, 0, 1, 1.1},
	}
	doc.TrashCount = 3
	_, err = storage.NewStateStore(kv, "", nil).Save(context.Background(), doc)
	require.NoError(t, err)

	out := execute(t, "inspect", "--config", cfg)
	assert.Contains(t, out, "health        64.0")
	assert.Contains(t, out, "packed items  3")
	assert.Contains(t, out, "  type 2      2")

	out = execute(t, "inspect", "--config", cfg, "--json")
	assert.Contains(t, out, `"trashCount": 3`)
}

func TestResetKeepsAutoRotate(t *testing.T) {
	cfg, dataDir := setup(t)

	kv, err := storage.NewFile(dataDir)
	require.NoError(t, err)
	store := storage.NewStateStore(kv, "", nil)
	doc := storage.DefaultDocument()
	doc.Health = 12
	doc.TrashCount = 40
	doc.AutoRotateEnabled = false
	_, err = store.Save(context.Background(), doc)
	require.NoError(t, err)

	out := execute(t, "reset", "--config", cfg)
	assert.Contains(t, out, storage.DefaultKey)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, storage.DefaultHealth, got.Health)
	assert.Zero(t, got.TrashCount)
	assert.Empty(t, got.Trash)
	assert.False(t, got.AutoRotateEnabled)
}
