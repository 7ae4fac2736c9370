// Package errors provides the classified error primitives used across starlet-setup.
//
// Every failure that reaches the CLI is a ClassifiedError whose category maps to
// one of the documented, stable process exit codes:
//   - CategoryReference: malformed repository reference
//   - CategoryToolNotFound: git or cmake missing from PATH
//   - CategoryClone: the version-control client failed to acquire a checkout
//   - CategoryConfigure / CategoryBuild: cmake ran and reported failure
//   - CategoryPlanConflict: duplicate module in a batch plan
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryClone, "clone failed").
//		WithCause(originalErr).
//		WithContext("url", repoURL).
//		WithOutput(toolOutput).
//		Build()
package errors
