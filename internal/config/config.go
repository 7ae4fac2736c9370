package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/masonlet/starlet-setup/internal/batch"
	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/git"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// FileName is the config file name looked up in the working and home directories.
const FileName = ".starlet-setup.yaml"

// EnvConfigPath names the environment variable that points at an explicit config file.
const EnvConfigPath = "STARLET_SETUP_CONFIG"

// DefaultProfile is the profile name used when --profile is given without a value.
const DefaultProfile = "default"

// Config is the on-disk configuration.
type Config struct {
	Defaults Defaults            `yaml:"defaults"`
	Git      GitConfig           `yaml:"git"`
	CMake    CMakeConfig         `yaml:"cmake"`
	Profiles map[string][]string `yaml:"profiles"`
	History  HistoryConfig       `yaml:"history"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// Defaults seed the CLI flag defaults.
type Defaults struct {
	SSH       bool     `yaml:"ssh"`
	BuildType string   `yaml:"build_type"`
	BuildDir  string   `yaml:"build_dir"`
	BatchDir  string   `yaml:"batch_dir"`
	NoBuild   bool     `yaml:"no_build"`
	Verbose   bool     `yaml:"verbose"`
	CMakeArgs []string `yaml:"cmake_args,omitempty"`
}

// GitConfig selects how repositories are cloned.
type GitConfig struct {
	Backend    string `yaml:"backend"` // cli|native
	SSHKeyPath string `yaml:"ssh_key_path,omitempty"`
}

// CMakeConfig holds optional configure/build settings.
type CMakeConfig struct {
	Generator string `yaml:"generator,omitempty"`
	Jobs      int    `yaml:"jobs,omitempty"`
}

// HistoryConfig enables the run ledger.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig names a Prometheus textfile written after every run.
type MetricsConfig struct {
	File string `yaml:"file,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			BuildType: string(cmake.BuildTypeDebug),
			BuildDir:  cmake.DefaultBuildDir,
			BatchDir:  "build-batch",
		},
		Git: GitConfig{Backend: git.BackendCLI},
		Profiles: map[string][]string{
			DefaultProfile: batch.DefaultModules(),
		},
	}
}

// Load reads the config at path over the built-in defaults. ${VAR} references
// in the file are expanded from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext(errors.KeyPath, path).
			Build()
	}

	cfg := Default()
	// a profiles key in the file replaces the built-in set
	cfg.Profiles = nil
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext(errors.KeyPath, path).
			Build()
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		ce, _ := errors.AsClassified(err)
		return nil, ce.WithContext(errors.KeyPath, path)
	}
	return cfg, nil
}

// Locate returns the first existing config file, or "" when there is none.
// An explicit $STARLET_SETUP_CONFIG that does not exist is an error.
func Locate() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", errors.WrapError(err, errors.CategoryConfig, EnvConfigPath+" points at a missing file").
				WithContext(errors.KeyPath, p).
				Build()
		}
		return p, nil
	}
	for _, p := range searchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}
	return paths
}

// LoadDefault loads the located config file, or the built-in defaults when
// none exists. It returns the path used ("" for defaults).
func LoadDefault() (*Config, string, error) {
	path, err := Locate()
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// SavePath picks where to save when no file was loaded: the working directory
// file when it exists, otherwise the home directory file.
func SavePath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, FileName)
	}
	return FileName
}

// Save writes cfg to path, replacing any existing file atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext(errors.KeyPath, tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to replace config file").
			WithContext(errors.KeyPath, path).
			Build()
	}
	return nil
}

// Init writes the default configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists: "+path).
			WithContext(errors.KeyPath, path).
			WithContext(errors.KeyHint, "use --force to overwrite").
			Build()
	}
	return Save(path, Default())
}

func (c *Config) normalize() {
	if c.Defaults.BuildType != "" {
		if bt, err := cmake.ParseBuildType(c.Defaults.BuildType); err == nil {
			c.Defaults.BuildType = string(bt)
		}
	}
	if c.Defaults.BuildDir == "" {
		c.Defaults.BuildDir = cmake.DefaultBuildDir
	}
	if c.Defaults.BatchDir == "" {
		c.Defaults.BatchDir = "build-batch"
	}
	if c.Git.Backend == "" {
		c.Git.Backend = git.BackendCLI
	}
	if c.Profiles == nil {
		c.Profiles = map[string][]string{DefaultProfile: batch.DefaultModules()}
	}
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	if _, err := cmake.ParseBuildType(c.Defaults.BuildType); err != nil {
		return err
	}
	if err := workspace.ValidateDirName(c.Defaults.BuildDir); err != nil {
		return err
	}
	if err := workspace.ValidateDirName(c.Defaults.BatchDir); err != nil {
		return err
	}
	switch c.Git.Backend {
	case git.BackendCLI, git.BackendNative:
	default:
		return errors.ConfigError(fmt.Sprintf("unknown git backend %q (want cli or native)", c.Git.Backend)).Build()
	}
	if c.CMake.Jobs < 0 {
		return errors.ConfigError("cmake.jobs must not be negative").Build()
	}
	for name, repos := range c.Profiles {
		if len(repos) == 0 {
			return errors.ConfigError(fmt.Sprintf("profile %q has no repositories", name)).Build()
		}
	}
	return nil
}

// ProfileNames returns the configured profile names sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Profile returns a copy of the named profile's repositories.
func (c *Config) Profile(name string) ([]string, error) {
	repos, ok := c.Profiles[name]
	if !ok {
		return nil, errors.ConfigError(fmt.Sprintf("profile %q not found", name)).
			WithContext(errors.KeyHint, "run 'starlet-setup profile list' to see available profiles").
			Build()
	}
	return slices.Clone(repos), nil
}

// AddProfile creates or replaces a profile.
func (c *Config) AddProfile(name string, repos []string) error {
	if name == "" {
		return errors.ConfigError("profile name must not be empty").Build()
	}
	if len(repos) == 0 {
		return errors.ConfigError(fmt.Sprintf("profile %q needs at least one repository", name)).Build()
	}
	if c.Profiles == nil {
		c.Profiles = map[string][]string{}
	}
	c.Profiles[name] = slices.Clone(repos)
	return nil
}

// RemoveProfile deletes a profile.
func (c *Config) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return errors.ConfigError(fmt.Sprintf("profile %q not found", name)).Build()
	}
	delete(c.Profiles, name)
	return nil
}
