// Package interactive collects run settings by prompting on a terminal.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.WrapError(err, errors.CategoryConfig, "interactive input ended").Build()
	}
	return strings.TrimSpace(line), nil
}

// Ask repeats prompt until a non-empty answer is given.
func (p *Prompter) Ask(prompt string) (string, error) {
	for {
		v, err := p.readLine(prompt + ": ")
		if err != nil || v != "" {
			return v, err
		}
	}
}

// AskDefault returns def for an empty answer.
func (p *Prompter) AskDefault(prompt, def string) (string, error) {
	v, err := p.readLine(fmt.Sprintf("%s [%s]: ", prompt, def))
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// AskYesNo treats answers starting with y as yes and an empty answer as def.
func (p *Prompter) AskYesNo(prompt string, def bool) (bool, error) {
	d := "N"
	if def {
		d = "Y"
	}
	v, err := p.readLine(fmt.Sprintf("%s (y/n) [%s]: ", prompt, d))
	if err != nil {
		return false, err
	}
	if v == "" {
		return def, nil
	}
	return strings.HasPrefix(strings.ToLower(v), "y"), nil
}

// AskChoice repeats prompt until one of choices is given.
func (p *Prompter) AskChoice(prompt string, choices ...string) (string, error) {
	for {
		v, err := p.Ask(prompt)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if v == c {
				return v, nil
			}
		}
	}
}

// Answers is everything interactive mode needs to start a run.
type Answers struct {
	Repository string
	SSH        bool
	Verbose    bool
	Clean      bool
	Batch      bool
	Profile    string
	Repos      []string
	BuildType  cmake.BuildType
	BuildDir   string
	CMakeArgs  []string
	NoBuild    bool
}

// Collect prompts for every setting, offering defaults where they exist.
func Collect(p *Prompter, defaults Answers) (Answers, error) {
	a := defaults
	_, _ = fmt.Fprintln(p.out, "Starlet Setup Interactive Mode")

	var err error
	if a.Repository == "" {
		if a.Repository, err = p.Ask("Enter repository (owner/repo or URL)"); err != nil {
			return a, err
		}
	}
	if a.SSH, err = p.AskYesNo("Use SSH?", defaults.SSH); err != nil {
		return a, err
	}
	if a.Verbose, err = p.AskYesNo("Verbose?", defaults.Verbose); err != nil {
		return a, err
	}
	if a.Clean, err = p.AskYesNo("Clean build directory if it exists?", defaults.Clean); err != nil {
		return a, err
	}

	mode, err := p.AskChoice("Select mode: (1) Single repository (2) Batch", "1", "2")
	if err != nil {
		return a, err
	}
	a.Batch = mode == "2"
	if a.Batch {
		if err := collectBatch(p, &a); err != nil {
			return a, err
		}
	}

	def := string(defaults.BuildType)
	if def == "" {
		def = string(cmake.BuildTypeDebug)
	}
	for {
		v, err := p.AskDefault("Build type", def)
		if err != nil {
			return a, err
		}
		if bt, perr := cmake.ParseBuildType(v); perr == nil {
			a.BuildType = bt
			break
		}
		_, _ = fmt.Fprintf(p.out, "Unknown build type %q\n", v)
	}

	buildDir := defaults.BuildDir
	if buildDir == "" {
		buildDir = cmake.DefaultBuildDir
	}
	if a.BuildDir, err = p.AskDefault("Build directory", buildDir); err != nil {
		return a, err
	}

	extra, err := p.AskDefault("Additional CMake args (space separated, e.g. -DBUILD_TESTS=ON)", strings.Join(defaults.CMakeArgs, " "))
	if err != nil {
		return a, err
	}
	a.CMakeArgs = strings.Fields(extra)

	if a.NoBuild, err = p.AskYesNo("Configure only (skip build)?", defaults.NoBuild); err != nil {
		return a, err
	}
	_, _ = fmt.Fprintln(p.out, "\nInteractive mode complete")
	return a, nil
}

func collectBatch(p *Prompter, a *Answers) error {
	choice, err := p.AskChoice("Batch: (1) Use profile (2) Manual repository list", "1", "2")
	if err != nil {
		return err
	}
	if choice == "1" {
		a.Profile, err = p.Ask("Profile name")
		a.Repos = nil
		return err
	}
	list, err := p.Ask("Enter repositories (space separated, e.g. starlet-math owner/lib)")
	if err != nil {
		return err
	}
	a.Repos = strings.Fields(list)
	a.Profile = ""
	return nil
}
