package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
)

// Root is a persistent workspace directory (the current directory in single
// mode, the batch directory in batch mode). It is never removed by this tool.
type Root struct {
	path string
}

// NewRoot resolves dir to an absolute path. The directory is not created until Create.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve workspace path").
			WithContext(errors.KeyPath, dir).
			Build()
	}
	return &Root{path: abs}, nil
}

// Create ensures the workspace directory exists.
func (r *Root) Create() error {
	if err := os.MkdirAll(r.path, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create workspace directory").
			WithContext(errors.KeyPath, r.path).
			Build()
	}
	slog.Debug("Using workspace", logfields.Path(r.path))
	return nil
}

// Path returns the absolute workspace path.
func (r *Root) Path() string {
	return r.path
}

// Join returns the path of a direct child of the workspace. name must be a safe segment.
func (r *Root) Join(name string) (string, error) {
	if err := ValidateDirName(name); err != nil {
		return "", err
	}
	return filepath.Join(r.path, name), nil
}

// ValidateDirName checks that name is a single path segment that cannot escape its parent.
func ValidateDirName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errors.ConfigError(fmt.Sprintf("invalid directory name %q", name)).Build()
	case strings.ContainsAny(name, `/\`), filepath.IsAbs(name), filepath.VolumeName(name) != "":
		return errors.ConfigError(fmt.Sprintf("directory name %q must be a single path segment", name)).Build()
	}
	return nil
}

// CleanBuildDir removes parent/buildDirName recursively when it exists. Only the
// named child is touched, never the rest of parent.
func CleanBuildDir(parent, buildDirName string) (bool, error) {
	if err := ValidateDirName(buildDirName); err != nil {
		return false, err
	}
	target := filepath.Join(parent, buildDirName)
	if _, err := os.Lstat(target); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to inspect build directory").
			WithContext(errors.KeyPath, target).
			Build()
	}
	if err := os.RemoveAll(target); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean build directory").
			WithContext(errors.KeyPath, target).
			Build()
	}
	slog.Info("Cleaned build directory", logfields.Path(target))
	return true, nil
}

// EnsureDir creates dir (and parents) when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			WithContext(errors.KeyPath, dir).
			Build()
	}
	return nil
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	names, err := f.Readdirnames(1)
	if len(names) > 0 {
		return false, nil
	}
	if err != nil && err != io.EOF {
		return false, err
	}
	return true, nil
}
