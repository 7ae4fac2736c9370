// Package setup runs the end-to-end flows: resolve a reference, acquire the
// workspace, then configure and build it with CMake.
//
// Both entry points, RunSingle and RunBatch, share one Service so tool checks,
// run IDs, metrics and history are handled identically for either mode.
package setup
