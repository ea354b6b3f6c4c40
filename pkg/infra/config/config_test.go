// 指示: miu200521358
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadReadsMergePlan(t *testing.T) {
	path := writePlan(t, `
[merge]
bones = ["Spine", " Chest ", "Spine"]
veto = ["UpperChest"]

[output]
path = "out/avatar.glb"
binary = true
asset_dir = "out/assets"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	assert.Equal(t, []string{"Spine", "Chest"}, cfg.Merge.Bones)
	assert.Equal(t, []string{"UpperChest"}, cfg.Merge.Veto)
	assert.Equal(t, "out/avatar.glb", cfg.Output.Path)
	assert.True(t, cfg.Output.Binary)
	assert.Equal(t, "out/assets", cfg.Output.AssetDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writePlan(t, "[merge]\nbones = [\"Spine\"]\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Output.Binary)
	assert.Empty(t, cfg.Merge.Veto)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writePlan(t, "[merge]\nbone = [\"Spine\"]\n"))

	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config: got=%v", err)
	}
	assert.Contains(t, err.Error(), "merge.bone")
}

func TestLoadRejectsInvalidLevelAndEmptyName(t *testing.T) {
	_, err := Load(writePlan(t, "[log]\nlevel = \"loud\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writePlan(t, "[merge]\nveto = [\" \"]\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadReportsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got=%v", err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.Merge.Bones = []string{"Spine"}
	cfg.Output.Path = "plan.glb"

	err := cfg.Apply(Overrides{
		MergeBones: []string{"Chest", "Spine"},
		VetoBones:  []string{"Neck"},
		Binary:     true,
		AssetDir:   "assets",
		LogLevel:   "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Spine", "Chest"}, cfg.Merge.Bones)
	assert.Equal(t, []string{"Neck"}, cfg.Merge.Veto)
	assert.Equal(t, "plan.glb", cfg.Output.Path)
	assert.True(t, cfg.Output.Binary)
	assert.Equal(t, "assets", cfg.Output.AssetDir)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.ErrorIs(t, cfg.Apply(Overrides{LogLevel: "shout"}), ErrInvalidConfig)
}
