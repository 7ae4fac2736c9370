package setup

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/masonlet/starlet-setup/internal/batch"
	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/git"
	"github.com/masonlet/starlet-setup/internal/history"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/metrics"
	"github.com/masonlet/starlet-setup/internal/observability"
	"github.com/masonlet/starlet-setup/internal/reference"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// outputSubdir is the shared artifact directory inside a batch build tree.
const outputSubdir = "bin"

// Service wires the collaborators of a setup run.
type Service struct {
	runner   execx.Runner
	cloner   git.Cloner
	backend  string
	resolver *reference.Resolver
	recorder metrics.Recorder
	history  history.Store
	newID    func() string
}

// NewService creates a service running tools through runner and cloning with cloner.
func NewService(runner execx.Runner, cloner git.Cloner) *Service {
	return &Service{
		runner:   runner,
		cloner:   cloner,
		backend:  git.BackendCLI,
		resolver: reference.NewResolver(),
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
	}
}

// WithBackend records which git backend the cloner uses; the native backend
// does not need a git executable.
func (s *Service) WithBackend(backend string) *Service {
	s.backend = backend
	return s
}

// WithResolver replaces the default github.com resolver.
func (s *Service) WithResolver(r *reference.Resolver) *Service {
	if r != nil {
		s.resolver = r
	}
	return s
}

// WithRecorder attaches a metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory records every run in store.
func (s *Service) WithHistory(store history.Store) *Service {
	s.history = store
	return s
}

// WithIDGenerator overrides run ID generation (for tests).
func (s *Service) WithIDGenerator(fn func() string) *Service {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// RequiredTools lists the executables a run needs.
func (s *Service) RequiredTools() []string {
	if s.backend == git.BackendNative {
		return []string{cmake.Tool}
	}
	return []string{"git", cmake.Tool}
}

func (s *Service) acquirer(update bool) *workspace.Acquirer {
	return workspace.NewAcquirer(s.cloner).WithRecorder(s.recorder).WithUpdate(update)
}

func (s *Service) driver() *cmake.Driver {
	return cmake.NewDriver(s.runner).WithRecorder(s.recorder)
}

func (s *Service) begin(ctx context.Context, mode Mode, target string) (context.Context, *Result, func()) {
	res := &Result{RunID: s.newID(), Mode: mode, Target: target, Status: StatusFailed}
	ctx = observability.WithMode(observability.WithRunID(ctx, res.RunID), string(mode))
	restore := observability.ScopeDefaultLogger(ctx)
	slog.Info("Starting setup", slog.String("target", target))
	return ctx, res, restore
}

// RunSingle clones (or reuses) one repository in req.WorkDir and builds it.
func (s *Service) RunSingle(ctx context.Context, req SingleRequest) (*Result, error) {
	start := time.Now()
	ctx, res, restore := s.begin(ctx, ModeSingle, req.Repository)
	defer restore()

	err := s.runSingle(ctx, req, res)
	s.finish(ctx, res, req.Build, start, err)
	return res, err
}

func (s *Service) runSingle(ctx context.Context, req SingleRequest, res *Result) error {
	if err := execx.CheckTools(s.runner, s.RequiredTools()...); err != nil {
		return err
	}
	ref, err := s.resolver.Resolve(req.Repository, req.Protocol)
	if err != nil {
		return err
	}
	res.Target = ref.Slug()

	entry, err := s.acquirer(req.Update).Acquire(ctx, ref, workDir(req.WorkDir))
	if err != nil {
		return err
	}
	res.Entries = []*workspace.Entry{entry}
	res.SourceRoot = entry.Path
	return s.build(ctx, res, req.Build)
}

// RunBatch composes the batch workspace and builds it once from the root descriptor.
func (s *Service) RunBatch(ctx context.Context, req BatchRequest) (*Result, error) {
	start := time.Now()
	ctx, res, restore := s.begin(ctx, ModeBatch, req.Owner+"/"+req.Leaf)
	defer restore()

	err := s.runBatch(ctx, req, res)
	s.finish(ctx, res, req.Build, start, err)
	return res, err
}

func (s *Service) runBatch(ctx context.Context, req BatchRequest, res *Result) error {
	if err := execx.CheckTools(s.runner, s.RequiredTools()...); err != nil {
		return err
	}
	batchDir := req.BatchDir
	if batchDir == "" {
		batchDir = "build-batch"
	}
	if err := workspace.ValidateDirName(batchDir); err != nil {
		return err
	}

	root, err := filepath.Abs(filepath.Join(workDir(req.WorkDir), batchDir))
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve batch directory").Build()
	}
	modules := batch.PlanModules(batch.DefaultModules(), req.Repos, req.Leaf)
	slog.Info("Batch plan", slog.Any("modules", modules), logfields.Path(root))

	buildPath := cmake.BuildPath(root, req.Build)
	composer := batch.NewComposer(s.resolver, s.acquirer(req.Update), req.Owner, req.Protocol).
		WithReserved(filepath.Base(buildPath))
	outputDir := filepath.Join(buildPath, outputSubdir)
	plan, err := composer.Compose(ctx, modules, root, outputDir)
	if err != nil {
		return err
	}
	res.Entries = plan.Entries
	res.SourceRoot = plan.Root
	res.DescriptorPath = plan.DescriptorPath
	return s.build(ctx, res, req.Build)
}

// build cleans (when asked) and runs configure/build over res.SourceRoot.
func (s *Service) build(ctx context.Context, res *Result, opts cmake.Options) error {
	res.BuildPath = cmake.BuildPath(res.SourceRoot, opts)
	if opts.Clean {
		if _, err := workspace.CleanBuildDir(res.SourceRoot, filepath.Base(res.BuildPath)); err != nil {
			return err
		}
	}
	report, err := s.driver().Run(ctx, res.SourceRoot, opts)
	res.Build = report
	return err
}

func (s *Service) finish(ctx context.Context, res *Result, opts cmake.Options, start time.Time, err error) {
	res.Duration = time.Since(start)
	outcome := metrics.OutcomeSuccess
	if err == nil {
		res.Status = StatusSucceeded
		slog.Info("Setup complete", logfields.Path(res.BuildPath), logfields.Duration(res.Duration))
	} else {
		outcome = metrics.OutcomeFailed
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCanceled
		}
		slog.Debug("Setup failed", logfields.Error(err), logfields.Duration(res.Duration))
	}
	s.recorder.ObserveRunDuration(string(res.Mode), res.Duration)
	s.recorder.IncRunOutcome(string(res.Mode), outcome)
	s.record(ctx, res, opts, start, err)
}

// record stores the run in history. History problems never fail a run.
func (s *Service) record(ctx context.Context, res *Result, opts cmake.Options, start time.Time, runErr error) {
	if s.history == nil {
		return
	}
	run := history.Run{
		ID:        res.RunID,
		Mode:      string(res.Mode),
		Target:    res.Target,
		BuildPath: res.BuildPath,
		BuildType: string(opts.BuildType),
		Status:    history.StatusSucceeded,
		StartedAt: start,
		Duration:  res.Duration,
	}
	for _, e := range res.Entries {
		run.Modules = append(run.Modules, e.Reference.DirName)
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ExitCode = errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(runErr)
		run.Error = runErr.Error()
	}
	// recorded even when ctx was canceled
	if err := s.history.Record(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("Failed to record run history", logfields.Error(err))
	}
}

func workDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
