package interactive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonlet/starlet-setup/internal/cmake"
	ferrors "github.com/masonlet/starlet-setup/internal/foundation/errors"
)

func lines(answers ...string) *strings.Reader {
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}

func TestCollect_BatchWithProfile(t *testing.T) {
	in := lines("my/repo", "y", "n", "y", "2", "1", "myprofile", "Debug", "out", "", "n")
	var out bytes.Buffer

	a, err := Collect(NewPrompter(in, &out), Answers{})
	require.NoError(t, err)

	assert.Equal(t, "my/repo", a.Repository)
	assert.True(t, a.SSH)
	assert.False(t, a.Verbose)
	assert.True(t, a.Clean)
	assert.True(t, a.Batch)
	assert.Equal(t, "myprofile", a.Profile)
	assert.Nil(t, a.Repos)
	assert.Equal(t, cmake.BuildTypeDebug, a.BuildType)
	assert.Equal(t, "out", a.BuildDir)
	assert.Empty(t, a.CMakeArgs)
	assert.False(t, a.NoBuild)
	assert.Contains(t, out.String(), "Interactive mode complete")
}

func TestCollect_SingleWithDefaults(t *testing.T) {
	in := lines("masonlet/task-tracker", "", "", "", "1", "", "", "", "y")
	defaults := Answers{BuildType: cmake.BuildTypeRelease, BuildDir: "out", CMakeArgs: []string{"-DX=1"}}

	a, err := Collect(NewPrompter(in, &bytes.Buffer{}), defaults)
	require.NoError(t, err)

	assert.False(t, a.Batch)
	assert.False(t, a.SSH)
	assert.Equal(t, cmake.BuildTypeRelease, a.BuildType)
	assert.Equal(t, "out", a.BuildDir)
	assert.Equal(t, []string{"-DX=1"}, a.CMakeArgs)
	assert.True(t, a.NoBuild)
}

func TestCollect_ManualRepoListAndRetries(t *testing.T) {
	in := lines("", "masonlet/samples", "n", "n", "n", "3", "2", "2", "starlet-math  starlet-logger", "Fastest", "release", "", "-DA=1 -DB=2", "")

	a, err := Collect(NewPrompter(in, &bytes.Buffer{}), Answers{})
	require.NoError(t, err)

	assert.Equal(t, "masonlet/samples", a.Repository)
	assert.True(t, a.Batch)
	assert.Equal(t, []string{"starlet-math", "starlet-logger"}, a.Repos)
	assert.Empty(t, a.Profile)
	assert.Equal(t, cmake.BuildTypeRelease, a.BuildType)
	assert.Equal(t, "build", a.BuildDir)
	assert.Equal(t, []string{"-DA=1", "-DB=2"}, a.CMakeArgs)
}

func TestCollect_PresetRepositoryIsNotAsked(t *testing.T) {
	in := lines("n", "n", "n", "1", "", "", "", "")
	a, err := Collect(NewPrompter(in, &bytes.Buffer{}), Answers{Repository: "masonlet/task-tracker"})
	require.NoError(t, err)
	assert.Equal(t, "masonlet/task-tracker", a.Repository)
}

func TestCollect_InputEnds(t *testing.T) {
	_, err := Collect(NewPrompter(lines("my/repo", "y"), &bytes.Buffer{}), Answers{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestAskYesNo(t *testing.T) {
	p := NewPrompter(lines("YES", "nope", ""), &bytes.Buffer{})
	v, err := p.AskYesNo("q", false)
	require.NoError(t, err)
	assert.True(t, v)
	v, err = p.AskYesNo("q", true)
	require.NoError(t, err)
	assert.False(t, v)
	v, err = p.AskYesNo("q", true)
	require.NoError(t, err)
	assert.True(t, v)
}
