// Package metrics records run timings and outcomes.
//
// Components take a Recorder and default to NoopRecorder, so callers never
// nil-check:
//
//	acq := workspace.NewAcquirer(cloner).WithRecorder(recorder)
//
// PrometheusRecorder registers its collectors on a private registry. A short
// lived CLI has nothing to scrape, so the registry is written once per run in
// the node_exporter textfile format (see WriteTextfile) when --metrics-file is
// set.
package metrics
