// Package cmake drives the two-step CMake flow (configure, then build) over a
// source tree through an execx.Runner.
package cmake
