// Package git acquires repository working copies for starlet-setup.
//
// Two interchangeable backends implement Cloner:
//   - CLIClient shells out to the git executable through an execx.Runner.
//   - NativeClient clones in-process with go-git, for machines without git.
//
// Both report failures as clone-category ClassifiedErrors carrying the URL,
// destination path and, for the CLI backend, the tool's captured output.
package git
