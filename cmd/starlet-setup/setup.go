package main

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/config"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/reference"
	"github.com/masonlet/starlet-setup/internal/setup"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// BuildFlags are shared by setup and batch.
type BuildFlags struct {
	SSH       bool     `help:"Clone over SSH instead of HTTPS" default:"${ssh}" env:"STARLET_SETUP_SSH" negatable:""`
	BuildType string   `short:"b" name:"build-type" help:"CMake build type (Debug, Release, RelWithDebInfo, MinSizeRel)" default:"${build_type}" env:"STARLET_SETUP_BUILD_TYPE"`
	BuildDir  string   `short:"d" name:"build-dir" help:"Build directory name" default:"${build_dir}" env:"STARLET_SETUP_BUILD_DIR"`
	NoBuild   bool     `short:"n" name:"no-build" help:"Configure only, skip the build step" default:"${no_build}" env:"STARLET_SETUP_NO_BUILD"`
	Clean     bool     `short:"c" help:"Remove the build directory before configuring"`
	CMakeArg  []string `name:"cmake-arg" help:"Extra cmake configure argument, repeatable (use --cmake-arg=-DFOO=ON)" sep:"none"`
	Update    bool     `help:"Fast-forward existing checkouts before building" env:"STARLET_SETUP_UPDATE"`
}

// options turns the flags into driver options. Config cmake_args apply only
// when no --cmake-arg was given.
func (f *BuildFlags) options(g *Global) (cmake.Options, error) {
	bt, err := cmake.ParseBuildType(f.BuildType)
	if err != nil {
		return cmake.Options{}, err
	}
	if err := workspace.ValidateDirName(f.BuildDir); err != nil {
		return cmake.Options{}, err
	}
	args := f.CMakeArg
	if len(args) == 0 {
		args = g.Config.Defaults.CMakeArgs
	}
	return cmake.Options{
		BuildType: bt,
		BuildDir:  f.BuildDir,
		Clean:     f.Clean,
		SkipBuild: f.NoBuild,
		Verbose:   g.Verbose,
		ExtraArgs: args,
		Generator: g.Config.CMake.Generator,
		Jobs:      g.Config.CMake.Jobs,
	}, nil
}

// SetupCmd clones or reuses a single repository and builds it.
type SetupCmd struct {
	Repository string `arg:"" help:"owner/repo, https URL or git@host:owner/repo"`
	BuildFlags `embed:""`
}

func (s *SetupCmd) Run(g *Global) error {
	opts, err := s.options(g)
	if err != nil {
		return err
	}
	svc, done, err := g.newService()
	if err != nil {
		return err
	}
	defer done()

	res, err := svc.RunSingle(g.Context(), setup.SingleRequest{
		Repository: s.Repository,
		Protocol:   reference.ProtocolFor(s.SSH),
		WorkDir:    g.WorkDir,
		Build:      opts,
		Update:     s.Update,
	})
	if err != nil {
		return err
	}
	printResult(g.Stdout, res)
	return nil
}

// BatchCmd composes library modules and a leaf repository into one workspace.
type BatchCmd struct {
	Owner      string   `arg:"" help:"Owner used for bare module names"`
	Leaf       string   `arg:"" help:"Leaf repository, added last"`
	Repos      []string `help:"Library modules replacing the default list (comma or space separated)" xor:"modules"`
	MoreRepos  []string `arg:"" optional:"" name:"more-repos" help:"Further modules following --repos"`
	UseProfile string   `name:"profile" help:"Use a saved profile as the module list (bare --profile means default)" xor:"modules"`
	BatchDir   string   `name:"batch-dir" help:"Directory the batch is composed in" default:"${batch_dir}" env:"STARLET_SETUP_BATCH_DIR"`
	BuildFlags `embed:""`
}

func (b *BatchCmd) Run(g *Global) error {
	opts, err := b.options(g)
	if err != nil {
		return err
	}
	if len(b.MoreRepos) > 0 && len(b.Repos) == 0 {
		return usageError(fmt.Sprintf("unexpected arguments %v; list modules with --repos", b.MoreRepos))
	}
	repos := append(slices.Clone(b.Repos), b.MoreRepos...)
	if b.UseProfile != "" {
		if repos, err = g.Config.Profile(b.UseProfile); err != nil {
			return err
		}
	}
	svc, done, err := g.newService()
	if err != nil {
		return err
	}
	defer done()

	res, err := svc.RunBatch(g.Context(), setup.BatchRequest{
		Owner:    b.Owner,
		Leaf:     b.Leaf,
		Repos:    repos,
		Protocol: reference.ProtocolFor(b.SSH),
		WorkDir:  g.WorkDir,
		BatchDir: b.BatchDir,
		Build:    opts,
		Update:   b.Update,
	})
	if err != nil {
		return err
	}
	printResult(g.Stdout, res)
	return nil
}

func printResult(w io.Writer, res *setup.Result) {
	_, _ = fmt.Fprintf(w, "Setup complete: %s (%s, run %s)\n", res.Target, res.Mode, res.RunID)
	_, _ = fmt.Fprintf(w, "  source: %s\n", res.SourceRoot)
	if res.DescriptorPath != "" {
		_, _ = fmt.Fprintf(w, "  modules:\n")
		for _, e := range res.Entries {
			_, _ = fmt.Fprintf(w, "    %s -> %s\n", e.Reference.Slug(), filepath.Base(e.Path))
		}
	}
	if res.Build != nil {
		state := "configured"
		if res.Build.Built {
			state = "built"
		}
		_, _ = fmt.Fprintf(w, "  build:  %s (%s, %s)\n", res.BuildPath, res.Build.BuildType, state)
	}
}

// requireConfigPath returns where config changes are written.
func requireConfigPath(g *Global) string {
	if g.ConfigPath != "" {
		return g.ConfigPath
	}
	return config.SavePath()
}

// usageError reports a flag combination kong cannot express.
func usageError(msg string) error {
	return errors.ConfigError(msg).
		WithContext(errors.KeyHint, "run 'starlet-setup --help' for usage").
		Build()
}
