package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist-dev/mchi/pkg/fs"
	"github.com/arborist-dev/mchi/pkg/mchi"
)

func Test_LoadConfig_Returns_Defaults_When_No_Config_Files_Exist(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(workDir, "no-such-xdg-dir"))

	cfg, err := LoadConfig(fs.NewReal(), workDir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func Test_LoadConfig_Overlays_Project_Config_Over_Defaults(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(workDir, "no-such-xdg-dir"))

	projectFile := filepath.Join(workDir, ConfigFileName)
	require.NoError(t, os.WriteFile(projectFile, []byte(`{
		// project overrides only the hasher and key size
		"hasher": "xxhash",
		"key_size": 64,
	}`), 0o644))

	cfg, err := LoadConfig(fs.NewReal(), workDir, "")
	require.NoError(t, err)

	want := DefaultConfig()
	want.Hasher = "xxhash"
	want.KeySize = 64
	assert.Equal(t, want, cfg)
}

func Test_LoadConfig_Returns_Error_When_Explicit_Config_Path_Is_Missing(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(workDir, "no-such-xdg-dir"))

	_, err := LoadConfig(fs.NewReal(), workDir, filepath.Join(workDir, "does-not-exist.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errConfigFileNotFound)
}

func Test_LoadConfig_Returns_Error_When_Hasher_Is_Unknown(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(workDir, "no-such-xdg-dir"))

	projectFile := filepath.Join(workDir, ConfigFileName)
	require.NoError(t, os.WriteFile(projectFile, []byte(`{"hasher": "md5"}`), 0o644))

	_, err := LoadConfig(fs.NewReal(), workDir, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errConfigInvalid)
}

func Test_Config_Hasher_Selects_XXHasher_For_Xxhash_Name(t *testing.T) {
	t.Parallel()

	cfg := Config{Hasher: "xxhash"}
	assert.Equal(t, mchi.XXHasher{}, cfg.hasher())
}

func Test_Config_Hasher_Defaults_To_SumHasher_For_Unset_Name(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	assert.Equal(t, mchi.SumHasher{}, cfg.hasher())
}

func Test_FormatConfig_Produces_Valid_Indented_JSON(t *testing.T) {
	t.Parallel()

	out, err := FormatConfig(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, out, `"table_size"`)
	assert.Contains(t, out, "\n  ")
}

func Test_WriteConfig_Then_LoadConfig_Round_Trips_Through_AtomicWriter(t *testing.T) {
	workDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(workDir, "no-such-xdg-dir"))

	fsys := fs.NewReal()
	want := DefaultConfig()
	want.Hasher = "xxhash"
	want.MaxItems = 128

	path := filepath.Join(workDir, ConfigFileName)
	require.NoError(t, WriteConfig(fsys, path, want))

	got, err := LoadConfig(fsys, workDir, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_WriteConfig_Creates_Parent_Directory_When_Missing(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	path := filepath.Join(workDir, "nested", "dir", ConfigFileName)

	require.NoError(t, WriteConfig(fs.NewReal(), path, DefaultConfig()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
