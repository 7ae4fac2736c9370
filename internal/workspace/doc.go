// Package workspace acquires repository checkouts into a workspace directory.
//
// Acquisition is idempotent: a non-empty directory at the target path is taken
// as an existing checkout and left untouched, so re-running on an already set
// up workspace never re-clones or overwrites local edits. Note that this cannot
// tell a deliberately reused checkout from one left behind by an interrupted
// clone; the acquirer only warns when the directory is not a git repository.
package workspace
