package main

import (
	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/interactive"
	"github.com/masonlet/starlet-setup/internal/reference"
	"github.com/masonlet/starlet-setup/internal/setup"
)

// InteractiveCmd prompts for the run settings and then runs setup or batch.
type InteractiveCmd struct {
	Repository string `arg:"" optional:"" help:"Repository to set up; prompted for when omitted"`
}

func (c *InteractiveCmd) Run(g *Global) error {
	d := g.Config.Defaults
	a, err := interactive.Collect(interactive.NewPrompter(g.Stdin, g.Stdout), interactive.Answers{
		Repository: c.Repository,
		SSH:        d.SSH,
		Verbose:    g.Verbose || d.Verbose,
		BuildType:  cmake.BuildType(d.BuildType),
		BuildDir:   d.BuildDir,
		CMakeArgs:  d.CMakeArgs,
		NoBuild:    d.NoBuild,
	})
	if err != nil {
		return err
	}
	if a.Repository == "" {
		return usageError("a repository is required")
	}
	g.Verbose = a.Verbose

	flags := BuildFlags{
		SSH:       a.SSH,
		BuildType: string(a.BuildType),
		BuildDir:  a.BuildDir,
		NoBuild:   a.NoBuild,
		Clean:     a.Clean,
		CMakeArg:  a.CMakeArgs,
	}
	opts, err := flags.options(g)
	if err != nil {
		return err
	}
	protocol := reference.ProtocolFor(a.SSH)

	svc, done, err := g.newService()
	if err != nil {
		return err
	}
	defer done()

	if !a.Batch {
		res, err := svc.RunSingle(g.Context(), setup.SingleRequest{
			Repository: a.Repository,
			Protocol:   protocol,
			WorkDir:    g.WorkDir,
			Build:      opts,
		})
		if err != nil {
			return err
		}
		printResult(g.Stdout, res)
		return nil
	}

	// the leaf's owner qualifies bare module names
	leaf, err := reference.NewResolver().Resolve(a.Repository, protocol)
	if err != nil {
		return err
	}
	repos := a.Repos
	if a.Profile != "" {
		if repos, err = g.Config.Profile(a.Profile); err != nil {
			return err
		}
	}
	res, err := svc.RunBatch(g.Context(), setup.BatchRequest{
		Owner:    leaf.Owner,
		Leaf:     a.Repository,
		Repos:    repos,
		Protocol: protocol,
		WorkDir:  g.WorkDir,
		BatchDir: d.BatchDir,
		Build:    opts,
	})
	if err != nil {
		return err
	}
	printResult(g.Stdout, res)
	return nil
}
