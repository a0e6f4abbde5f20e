// Package metrics provides observability hooks for fittext generator runs.
//
// # Design
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	gen := pipeline.New(cfg, pipeline.WithRecorder(metrics.NoopRecorder{}))
//
// # Activation
//
// Watch mode swaps in the Prometheus implementation when a listen address is
// configured and serves it over HTTP:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
