// Package batch composes a multi-repository workspace: it resolves an ordered
// module list, acquires every module under one root and writes the root
// descriptor that builds them together.
//
// The descriptor is only written after every module was acquired, so a
// descriptor on disk always matches a complete workspace.
package batch
