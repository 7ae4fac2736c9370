package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

func TestResolve_Shorthand(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		raw      string
		protocol Protocol
		wantURL  string
	}{
		{"https default", "masonlet/task-tracker", ProtocolHTTPS, "https://github.com/masonlet/task-tracker.git"},
		{"empty protocol means https", "masonlet/task-tracker", "", "https://github.com/masonlet/task-tracker.git"},
		{"ssh", "masonlet/task-tracker", ProtocolSSH, "git@github.com:masonlet/task-tracker.git"},
		{"suffix stripped", "masonlet/task-tracker.git", ProtocolHTTPS, "https://github.com/masonlet/task-tracker.git"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := r.Resolve(tt.raw, tt.protocol)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, ref.URL)
			assert.Equal(t, "masonlet", ref.Owner)
			assert.Equal(t, "task-tracker", ref.DirName)
			assert.Equal(t, tt.raw, ref.Raw)
		})
	}
}

func TestResolve_ShorthandProtocolsShareDirName(t *testing.T) {
	r := NewResolver()
	for _, raw := range []string{"a/b", "owner.x/repo_y", "Org-1/lib.core"} {
		https, err := r.Resolve(raw, ProtocolHTTPS)
		require.NoError(t, err)
		ssh, err := r.Resolve(raw, ProtocolSSH)
		require.NoError(t, err)

		assert.Equal(t, https.DirName, ssh.DirName, raw)
		assert.Equal(t, ProtocolHTTPS, https.Protocol)
		assert.Equal(t, ProtocolSSH, ssh.Protocol)
		assert.Regexp(t, `^https://github\.com/`, https.URL)
		assert.Regexp(t, `^git@github\.com:`, ssh.URL)
	}
}

func TestResolve_URLFormIsAuthoritative(t *testing.T) {
	r := NewResolver()

	ref, err := r.Resolve("https://gitlab.example.com/team/engine.git", ProtocolSSH)
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTPS, ref.Protocol)
	assert.Equal(t, "https://gitlab.example.com/team/engine.git", ref.URL)
	assert.Equal(t, "engine", ref.DirName)
	assert.Equal(t, "team", ref.Owner)

	ref, err = r.Resolve("git@github.com:masonlet/starlet-math.git", ProtocolHTTPS)
	require.NoError(t, err)
	assert.Equal(t, ProtocolSSH, ref.Protocol)
	assert.Equal(t, "git@github.com:masonlet/starlet-math.git", ref.URL)
	assert.Equal(t, "starlet-math", ref.DirName)

	ref, err = r.Resolve("https://github.com/masonlet/starlet-math/", "")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/masonlet/starlet-math", ref.URL)
	assert.Equal(t, "starlet-math", ref.DirName)
}

func TestResolve_Rejects(t *testing.T) {
	r := NewResolver()
	bad := []string{
		"",
		"justaname",
		"a/b/c",
		"owner/repo name",
		"http://github.com/a/b.git",
		"ssh://git@github.com/a/b.git",
		"https://github.com/a/b/c",
		"../repo",
		"owner/..",
		"git@github.com:../x.git",
		"owner/re:po",
	}
	for _, raw := range bad {
		t.Run(raw, func(t *testing.T) {
			_, err := r.Resolve(raw, ProtocolHTTPS)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryReference))
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			got, _ := ce.Context().GetString(errors.KeyReference)
			assert.Equal(t, raw, got)
		})
	}
}

func TestResolveInOwner(t *testing.T) {
	r := NewResolver()

	ref, err := r.ResolveInOwner("starlet-math", "masonlet", ProtocolHTTPS)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/masonlet/starlet-math.git", ref.URL)
	assert.Equal(t, "masonlet/starlet-math", ref.Slug())

	ref, err = r.ResolveInOwner("other/lib", "masonlet", ProtocolSSH)
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:other/lib.git", ref.URL)

	ref, err = r.ResolveInOwner("https://example.org/x/y.git", "masonlet", ProtocolSSH)
	require.NoError(t, err)
	assert.Equal(t, ProtocolHTTPS, ref.Protocol)
	assert.Equal(t, "y", ref.DirName)

	_, err = r.ResolveInOwner("starlet-math", "bad owner", ProtocolHTTPS)
	assert.True(t, errors.HasCategory(err, errors.CategoryReference))

	_, err = r.ResolveInOwner("..", "masonlet", ProtocolHTTPS)
	assert.True(t, errors.HasCategory(err, errors.CategoryReference))
}

func TestProtocolFor(t *testing.T) {
	assert.Equal(t, ProtocolSSH, ProtocolFor(true))
	assert.Equal(t, ProtocolHTTPS, ProtocolFor(false))
}
