// Package descriptor generates the root CMakeLists.txt that ties a batch
// workspace together.
package descriptor

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// FileName is the descriptor file written at the batch root.
const FileName = "CMakeLists.txt"

// MinimumCMakeVersion is declared by the generated descriptor.
const MinimumCMakeVersion = "3.20"

// Descriptor is the logical content of the root build file.
type Descriptor struct {
	Project   string
	Modules   []string
	OutputDir string
}

// FromPlan builds a descriptor for entries acquired below root. It fails closed
// when an entry is not acquired or does not live directly in root.
func FromPlan(project, root string, entries []*workspace.Entry, outputDir string) (Descriptor, error) {
	if len(entries) == 0 {
		return Descriptor{}, errors.InternalError("cannot generate a descriptor without modules").Build()
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return Descriptor{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve batch root").
			WithContext(errors.KeyPath, root).
			Build()
	}

	modules := make([]string, 0, len(entries))
	for i, e := range entries {
		if e == nil || !e.Acquired {
			return Descriptor{}, errors.InternalError(fmt.Sprintf("entry %d is not acquired; refusing to write descriptor", i+1)).Build()
		}
		name := e.Reference.DirName
		if filepath.Dir(e.Path) != rootAbs || filepath.Base(e.Path) != name {
			return Descriptor{}, errors.InternalError(fmt.Sprintf("module %q is not a subdirectory of the batch root", name)).
				WithContext(errors.KeyPath, e.Path).
				Build()
		}
		if info, err := os.Stat(e.Path); err != nil || !info.IsDir() {
			return Descriptor{}, errors.FileSystemError(fmt.Sprintf("module directory %q is missing", name)).
				WithContext(errors.KeyPath, e.Path).
				Build()
		}
		modules = append(modules, name)
	}

	out := outputDir
	if rel, err := filepath.Rel(rootAbs, outputDir); err == nil && filepath.IsAbs(outputDir) && !strings.HasPrefix(rel, "..") {
		out = rel
	}

	return Descriptor{Project: ProjectName(project), Modules: modules, OutputDir: out}, nil
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// ProjectName converts name into a CMake project identifier.
func ProjectName(name string) string {
	p := strings.Trim(nonIdent.ReplaceAllString(name, "_"), "_")
	if p == "" {
		return "starlet_batch"
	}
	return p
}

// generatedMarker starts every descriptor this package writes.
const generatedMarker = "# Generated by starlet-setup."

var descriptorTemplate = template.Must(template.New("cmakelists").Parse(generatedMarker + ` Do not edit: changes are overwritten on the next batch run.
cmake_minimum_required(VERSION {{.MinVersion}})
project({{.Project}} LANGUAGES CXX)

set(STARLET_OUTPUT_DIR "{{.OutputDir}}")
set(CMAKE_RUNTIME_OUTPUT_DIRECTORY "${STARLET_OUTPUT_DIR}")
set(CMAKE_LIBRARY_OUTPUT_DIRECTORY "${STARLET_OUTPUT_DIR}")
set(CMAKE_ARCHIVE_OUTPUT_DIRECTORY "${STARLET_OUTPUT_DIR}")
{{range .Modules}}
add_subdirectory({{.}})
{{- end}}
`))

// Render returns the CMakeLists.txt content. Output directory settings precede
// the add_subdirectory calls because CMake reads them when each target is defined.
func (d Descriptor) Render() ([]byte, error) {
	if len(d.Modules) == 0 {
		return nil, errors.InternalError("descriptor has no modules").Build()
	}
	out := filepath.ToSlash(d.OutputDir)
	if !filepath.IsAbs(d.OutputDir) {
		out = "${CMAKE_CURRENT_SOURCE_DIR}/" + out
	}
	data := struct {
		MinVersion string
		Project    string
		OutputDir  string
		Modules    []string
	}{MinimumCMakeVersion, ProjectName(d.Project), out, d.Modules}

	var buf bytes.Buffer
	if err := descriptorTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to render descriptor").Build()
	}
	return buf.Bytes(), nil
}

// Write renders the descriptor into root/CMakeLists.txt, replacing any previous
// file atomically.
func (d Descriptor) Write(root string) (string, error) {
	content, err := d.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil { // #nosec G306 -- build file read by cmake
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write descriptor").
			WithContext(errors.KeyPath, tmp).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to replace descriptor").
			WithContext(errors.KeyPath, path).
			Build()
	}
	slog.Info("Wrote root descriptor", logfields.Path(path), slog.Int("modules", len(d.Modules)))
	return path, nil
}

// RemoveStale deletes a descriptor left at path by an earlier run so a failed
// batch never leaves one behind. Files without the generated marker are kept.
func RemoveStale(path string) (bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the batch root
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to read descriptor").
			WithContext(errors.KeyPath, path).
			Build()
	}
	if !bytes.HasPrefix(data, []byte(generatedMarker)) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to remove stale descriptor").
			WithContext(errors.KeyPath, path).
			Build()
	}
	return true, nil
}
