package main

import (
	"fmt"
	"strings"

	"github.com/masonlet/starlet-setup/internal/config"
)

// InitConfigCmd writes the default configuration.
type InitConfigCmd struct {
	Force bool   `short:"f" help:"Overwrite an existing file"`
	Path  string `arg:"" optional:"" help:"Where to write the file (default: ./.starlet-setup.yaml)"`
}

func (c *InitConfigCmd) Run(g *Global) error {
	path := c.Path
	if path == "" {
		path = config.FileName
	}
	if err := config.Init(path, c.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Wrote default configuration to %s\n", path)
	return nil
}

// ProfileCmd groups the profile subcommands.
type ProfileCmd struct {
	List   ProfileListCmd   `cmd:"" default:"1" help:"List saved profiles"`
	Add    ProfileAddCmd    `cmd:"" help:"Create or replace a profile"`
	Remove ProfileRemoveCmd `cmd:"" help:"Delete a profile"`
}

type ProfileListCmd struct{}

func (c *ProfileListCmd) Run(g *Global) error {
	names := g.Config.ProfileNames()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No profiles configured")
		return nil
	}
	for _, n := range names {
		repos, _ := g.Config.Profile(n)
		_, _ = fmt.Fprintf(g.Stdout, "%s: %s\n", n, strings.Join(repos, " "))
	}
	return nil
}

type ProfileAddCmd struct {
	Name  string   `arg:"" help:"Profile name"`
	Repos []string `arg:"" name:"repo" help:"Library modules in build order"`
}

func (c *ProfileAddCmd) Run(g *Global) error {
	if err := g.Config.AddProfile(c.Name, c.Repos); err != nil {
		return err
	}
	path := requireConfigPath(g)
	if err := config.Save(path, g.Config); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Saved profile %q (%d modules) to %s\n", c.Name, len(c.Repos), path)
	return nil
}

type ProfileRemoveCmd struct {
	Name string `arg:"" help:"Profile name"`
}

func (c *ProfileRemoveCmd) Run(g *Global) error {
	if err := g.Config.RemoveProfile(c.Name); err != nil {
		return err
	}
	path := requireConfigPath(g)
	if err := config.Save(path, g.Config); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Removed profile %q from %s\n", c.Name, path)
	return nil
}
