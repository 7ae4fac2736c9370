package cmake

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/metrics"
)

// Tool is the executable the driver invokes.
const Tool = "cmake"

// Report describes what a Run did.
type Report struct {
	SourceRoot        string
	BuildPath         string
	BuildType         BuildType
	Configured        bool
	Built             bool
	ConfigureDuration time.Duration
	BuildDuration     time.Duration
}

// Driver runs cmake configure and build.
type Driver struct {
	runner   execx.Runner
	recorder metrics.Recorder
}

// NewDriver returns a driver invoking cmake through runner.
func NewDriver(runner execx.Runner) *Driver {
	return &Driver{runner: runner, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (d *Driver) WithRecorder(r metrics.Recorder) *Driver {
	if r != nil {
		d.recorder = r
	}
	return d
}

// BuildPath returns where Run places the build tree for sourceRoot.
func BuildPath(sourceRoot string, opts Options) string {
	return filepath.Join(sourceRoot, opts.buildDir())
}

// ConfigureCommand returns the configure invocation for sourceRoot.
func ConfigureCommand(sourceRoot string, opts Options) execx.Command {
	args := []string{"-S", sourceRoot, "-B", BuildPath(sourceRoot, opts), "-DCMAKE_BUILD_TYPE=" + string(opts.buildType())}
	if opts.Generator != "" {
		args = append(args, "-G", opts.Generator)
	}
	args = append(args, opts.ExtraArgs...)
	return execx.Command{Name: Tool, Args: args, Dir: sourceRoot}
}

// BuildCommand returns the build invocation for sourceRoot.
func BuildCommand(sourceRoot string, opts Options) execx.Command {
	args := []string{"--build", BuildPath(sourceRoot, opts), "--config", string(opts.buildType())}
	if opts.Jobs > 0 {
		args = append(args, "--parallel", strconv.Itoa(opts.Jobs))
	}
	return execx.Command{Name: Tool, Args: args, Dir: sourceRoot}
}

// Run configures sourceRoot and, unless opts.SkipBuild, builds it. A failed
// configure never reaches the build step.
func (d *Driver) Run(ctx context.Context, sourceRoot string, opts Options) (*Report, error) {
	report := &Report{
		SourceRoot: sourceRoot,
		BuildPath:  BuildPath(sourceRoot, opts),
		BuildType:  opts.buildType(),
	}

	slog.Info("Configuring with CMake", logfields.Path(sourceRoot), logfields.BuildType(string(report.BuildType)))
	res, err := d.runner.Run(ctx, ConfigureCommand(sourceRoot, opts))
	report.ConfigureDuration = res.Duration
	if err != nil {
		d.recorder.ObserveStepDuration(metrics.StepConfigure, res.Duration, false)
		return report, err
	}
	if !res.Success() {
		d.recorder.ObserveStepDuration(metrics.StepConfigure, res.Duration, false)
		return report, errors.ConfigureError(sourceRoot, res.ExitCode).WithOutput(res.Output).Build()
	}
	d.recorder.ObserveStepDuration(metrics.StepConfigure, res.Duration, true)
	report.Configured = true
	slog.Info("Configure complete", logfields.Path(report.BuildPath), logfields.Duration(res.Duration))

	if opts.SkipBuild {
		slog.Info("Skipping build (configure only)", logfields.Path(report.BuildPath))
		return report, nil
	}

	slog.Info("Building project", logfields.Path(report.BuildPath), logfields.BuildType(string(report.BuildType)))
	res, err = d.runner.Run(ctx, BuildCommand(sourceRoot, opts))
	report.BuildDuration = res.Duration
	if err != nil {
		d.recorder.ObserveStepDuration(metrics.StepBuild, res.Duration, false)
		return report, err
	}
	if !res.Success() {
		d.recorder.ObserveStepDuration(metrics.StepBuild, res.Duration, false)
		return report, errors.BuildError(report.BuildPath, res.ExitCode).WithOutput(res.Output).Build()
	}
	d.recorder.ObserveStepDuration(metrics.StepBuild, res.Duration, true)
	report.Built = true
	slog.Info("Build complete", logfields.Path(report.BuildPath), logfields.Duration(res.Duration))
	return report, nil
}
