// Package config loads starlet-setup configuration.
//
// Configuration is a YAML file found at $STARLET_SETUP_CONFIG,
// ./.starlet-setup.yaml or ~/.starlet-setup.yaml (first match wins). A missing
// file means built-in defaults. Values from the file become CLI flag defaults,
// so flags and STARLET_SETUP_* environment variables still override them.
//
// Example:
//
//	defaults:
//	  ssh: false
//	  build_type: Debug
//	  build_dir: build
//	  batch_dir: build-batch
//	  cmake_args: ["-DBUILD_TESTS=ON"]
//	git:
//	  backend: cli
//	profiles:
//	  graphics: [starlet-math, starlet-graphics]
package config
