package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/masonlet/starlet-setup/internal/config"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

func main() {
	g := &Global{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(run(context.Background(), os.Args[1:], g))
}

// exitRequest is raised through kong.Exit so --help and --version return
// from run instead of terminating the process.
type exitRequest int

// run parses args, executes the selected command and returns the process exit code.
func run(ctx context.Context, args []string, g *Global) (code int) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g.ctx = ctx

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = int(e)
		}
	}()

	config.LoadEnv()
	// a broken config only fails commands that read it; init-config replaces it
	cfg, path, cfgErr := config.LoadDefault()
	if cfgErr != nil {
		cfg = config.Default()
	}
	g.Config, g.ConfigPath = cfg, path

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("starlet-setup"),
		kong.Description("Clone CMake repositories and build them, alone or as a batch workspace."),
		kong.UsageOnError(),
		kong.Vars(flagVars(cfg)),
		kong.Bind(g),
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(c int) { panic(exitRequest(c)) }),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Report(g.Stderr, errors.WrapError(err, errors.CategoryInternal, "invalid command definition").Build())
	}

	kctx, err := parser.Parse(expandBareProfile(args))
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Report(g.Stderr,
			errors.WrapError(err, errors.CategoryConfig, "invalid arguments").
				WithContext(errors.KeyHint, "run 'starlet-setup --help' for usage").
				Build())
	}

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, nil)
	if cfgErr != nil && !strings.HasPrefix(kctx.Command(), "init-config") {
		return adapter.Report(g.Stderr, cfgErr)
	}
	if err := kctx.Run(); err != nil {
		return adapter.Report(g.Stderr, err)
	}
	return errors.ExitOK
}

// expandBareProfile turns a --profile without a value into --profile=default.
func expandBareProfile(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if a == "--profile" && (i+1 == len(args) || strings.HasPrefix(args[i+1], "-")) {
			a = "--profile=" + config.DefaultProfile
		}
		out = append(out, a)
	}
	return out
}
