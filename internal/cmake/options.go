package cmake

import (
	"fmt"
	"strings"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// BuildType is the CMAKE_BUILD_TYPE passed to configure and build.
type BuildType string

const (
	BuildTypeDebug          BuildType = "Debug"
	BuildTypeRelease        BuildType = "Release"
	BuildTypeRelWithDebInfo BuildType = "RelWithDebInfo"
	BuildTypeMinSizeRel     BuildType = "MinSizeRel"
)

// BuildTypes lists the accepted build types in help order.
func BuildTypes() []BuildType {
	return []BuildType{BuildTypeDebug, BuildTypeRelease, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel}
}

// ParseBuildType accepts a build type case-insensitively and returns its canonical spelling.
func ParseBuildType(s string) (BuildType, error) {
	for _, bt := range BuildTypes() {
		if strings.EqualFold(s, string(bt)) {
			return bt, nil
		}
	}
	return "", errors.ConfigError(fmt.Sprintf("unknown build type %q (want one of %s)", s, buildTypeList())).Build()
}

func buildTypeList() string {
	names := make([]string, 0, 4)
	for _, bt := range BuildTypes() {
		names = append(names, string(bt))
	}
	return strings.Join(names, ", ")
}

// DefaultBuildDir is the build directory name used when none is configured.
const DefaultBuildDir = "build"

// Options controls one configure/build invocation. It is passed by value and
// never modified by the driver.
type Options struct {
	BuildType BuildType
	BuildDir  string
	Clean     bool
	SkipBuild bool
	Verbose   bool
	ExtraArgs []string
	Generator string
	Jobs      int
}

// DefaultOptions returns Debug into "build" with both steps enabled.
func DefaultOptions() Options {
	return Options{BuildType: BuildTypeDebug, BuildDir: DefaultBuildDir}
}

func (o Options) buildType() BuildType {
	if o.BuildType == "" {
		return BuildTypeDebug
	}
	return o.BuildType
}

func (o Options) buildDir() string {
	if o.BuildDir == "" {
		return DefaultBuildDir
	}
	return o.BuildDir
}
