package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonlet/starlet-setup/internal/batch"
	ferrors "github.com/masonlet/starlet-setup/internal/foundation/errors"
	helpers "github.com/masonlet/starlet-setup/internal/testutil/testutils"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Debug", cfg.Defaults.BuildType)
	assert.Equal(t, "build", cfg.Defaults.BuildDir)
	assert.Equal(t, "build-batch", cfg.Defaults.BatchDir)
	assert.Equal(t, "cli", cfg.Git.Backend)
	assert.Equal(t, batch.DefaultModules(), cfg.Profiles[DefaultProfile])
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STARLET_TEST_JOBS", "6")
	helpers.WriteFiles(t, dir, map[string]string{FileName: `
defaults:
  ssh: true
  build_type: release
  cmake_args: ["-DBUILD_TESTS=ON"]
git:
  backend: native
cmake:
  jobs: ${STARLET_TEST_JOBS}
profiles:
  graphics: [starlet-math, starlet-graphics]
`})

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)

	assert.True(t, cfg.Defaults.SSH)
	assert.Equal(t, "Release", cfg.Defaults.BuildType)
	assert.Equal(t, "build", cfg.Defaults.BuildDir, "unset keys keep their defaults")
	assert.Equal(t, []string{"-DBUILD_TESTS=ON"}, cfg.Defaults.CMakeArgs)
	assert.Equal(t, "native", cfg.Git.Backend)
	assert.Equal(t, 6, cfg.CMake.Jobs)
	assert.Equal(t, []string{"starlet-math", "starlet-graphics"}, cfg.Profiles["graphics"])
	assert.NotContains(t, cfg.Profiles, DefaultProfile, "a profiles key replaces the built-in set")
}

func TestLoad_WithoutProfilesKeyKeepsDefaultProfile(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFiles(t, dir, map[string]string{FileName: "defaults:\n  ssh: true\n"})

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, batch.DefaultModules(), cfg.Profiles[DefaultProfile])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "defaults: [\n"},
		{"bad build type", "defaults:\n  build_type: Fastest\n"},
		{"unsafe build dir", "defaults:\n  build_dir: ../out\n"},
		{"bad backend", "git:\n  backend: svn\n"},
		{"empty profile", "profiles:\n  empty: []\n"},
		{"negative jobs", "cmake:\n  jobs: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestLocate(t *testing.T) {
	t.Run("env path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
		t.Setenv(EnvConfigPath, path)
		got, err := Locate()
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("missing env path", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Locate()
		require.Error(t, err)
	})

	t.Run("working directory then home", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Chdir(t.TempDir())

		got, err := Locate()
		require.NoError(t, err)
		assert.Empty(t, got)

		helpers.WriteFiles(t, home, map[string]string{FileName: "{}\n"})
		got, err = Locate()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, FileName), got)

		helpers.WriteFiles(t, ".", map[string]string{FileName: "{}\n"})
		got, err = Locate()
		require.NoError(t, err)
		assert.Equal(t, FileName, got)
	})
}

func TestLoadDefault_NoFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Defaults, cfg.Defaults)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	require.NoError(t, Init(path, true))
}

func TestProfiles(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.AddProfile("mine", []string{"masonlet/a", "b"}))
	assert.Equal(t, []string{DefaultProfile, "mine"}, cfg.ProfileNames())

	repos, err := cfg.Profile("mine")
	require.NoError(t, err)
	repos[0] = "changed"
	again, _ := cfg.Profile("mine")
	assert.Equal(t, "masonlet/a", again[0], "Profile returns a copy")

	assert.Error(t, cfg.AddProfile("", []string{"x"}))
	assert.Error(t, cfg.AddProfile("empty", nil))

	require.NoError(t, cfg.RemoveProfile("mine"))
	_, err = cfg.Profile("mine")
	require.Error(t, err)
	assert.Error(t, cfg.RemoveProfile("mine"))
}

func TestSave_RoundTripsProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	require.NoError(t, cfg.AddProfile("graphics", []string{"starlet-math", "starlet-graphics"}))
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)
	helpers.NewFileAssertions(t, filepath.Dir(path)).AssertNotExists(FileName + ".tmp")
}

func TestSave_RemovedDefaultProfileStaysRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	require.NoError(t, cfg.RemoveProfile(DefaultProfile))
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.NotContains(t, loaded.Profiles, DefaultProfile)
	assert.Empty(t, loaded.ProfileNames())

	// and it stays gone across another save
	require.NoError(t, loaded.AddProfile("mine", []string{"starlet-math"}))
	require.NoError(t, Save(path, loaded))
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, again.ProfileNames())
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	helpers.WriteFiles(t, ".", map[string]string{
		".env":       "STARLET_TEST_A=from-env-file\nSTARLET_TEST_B=from-env-file\n",
		".env.local": "STARLET_TEST_C=from-local\n",
	})
	t.Setenv("STARLET_TEST_A", "process")
	t.Setenv("STARLET_TEST_B", "")
	t.Setenv("STARLET_TEST_C", "")
	require.NoError(t, os.Unsetenv("STARLET_TEST_B"))
	require.NoError(t, os.Unsetenv("STARLET_TEST_C"))

	LoadEnv()

	assert.Equal(t, "process", os.Getenv("STARLET_TEST_A"))
	assert.Equal(t, "from-env-file", os.Getenv("STARLET_TEST_B"))
	assert.Equal(t, "from-local", os.Getenv("STARLET_TEST_C"))
}
