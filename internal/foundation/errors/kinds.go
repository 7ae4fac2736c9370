package errors

import (
	"fmt"
	"strings"
)

// Context keys shared by the constructors below and the CLI adapter.
const (
	KeyReference = "reference"
	KeyURL       = "url"
	KeyPath      = "path"
	KeyExitCode  = "exit_code"
	KeyHint      = "hint"
	KeyTools     = "tools"
	KeyStep      = "step"
)

// ReferenceFormatError reports input that is neither owner/repo shorthand nor a supported URL.
func ReferenceFormatError(raw, reason string) *ErrorBuilder {
	return NewError(CategoryReference, fmt.Sprintf("invalid repository reference %q: %s", raw, reason)).
		Fatal().
		WithContext(KeyReference, raw).
		WithContext(KeyHint, "use owner/repo, https://host/owner/repo.git or git@host:owner/repo.git")
}

// ToolNotFoundError reports external executables missing from PATH.
func ToolNotFoundError(tools ...string) *ErrorBuilder {
	hints := make([]string, 0, len(tools))
	for _, t := range tools {
		hints = append(hints, installHint(t))
	}
	return NewError(CategoryToolNotFound, "missing required tools: "+strings.Join(tools, ", ")).
		Fatal().
		WithContext(KeyTools, tools).
		WithContext(KeyHint, strings.Join(hints, "; "))
}

func installHint(tool string) string {
	switch tool {
	case "git":
		return "install git (https://git-scm.com/downloads) or set git.backend: native"
	case "cmake":
		return "install CMake 3.20+ (https://cmake.org/download/)"
	default:
		return "install " + tool + " and make sure it is on PATH"
	}
}

// CloneError reports a failed acquisition of a repository checkout.
func CloneError(reference, url string) *ErrorBuilder {
	return NewError(CategoryClone, "failed to acquire repository "+reference).
		Fatal().
		WithContext(KeyReference, reference).
		WithContext(KeyURL, url)
}

// ConfigureError reports a non-zero exit of the cmake configure step.
func ConfigureError(sourceRoot string, exitCode int) *ErrorBuilder {
	return NewError(CategoryConfigure, fmt.Sprintf("cmake configure failed (exit %d)", exitCode)).
		Fatal().
		WithContext(KeyPath, sourceRoot).
		WithContext(KeyExitCode, exitCode).
		WithContext(KeyStep, "configure")
}

// BuildError reports a non-zero exit of the cmake build step.
func BuildError(buildPath string, exitCode int) *ErrorBuilder {
	return NewError(CategoryBuild, fmt.Sprintf("cmake build failed (exit %d)", exitCode)).
		Fatal().
		WithContext(KeyPath, buildPath).
		WithContext(KeyExitCode, exitCode).
		WithContext(KeyStep, "build")
}

// PlanConflictError reports two batch entries resolving to the same directory name.
func PlanConflictError(name string, first, second int) *ErrorBuilder {
	return NewError(CategoryPlanConflict,
		fmt.Sprintf("module %q appears twice in the batch plan (entries %d and %d)", name, first+1, second+1)).
		Fatal().
		WithContext(KeyReference, name)
}

// ReservedNameError reports a batch entry whose directory name is taken by a
// path the batch generates itself.
func ReservedNameError(name, reserved string, index int) *ErrorBuilder {
	return NewError(CategoryPlanConflict,
		fmt.Sprintf("module %q (entry %d) collides with reserved batch path %q", name, index+1, reserved)).
		Fatal().
		WithContext(KeyReference, name).
		WithContext(KeyHint, "choose a different --build-dir or drop the module from the plan")
}

// ConfigError creates a configuration or usage error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
