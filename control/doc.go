// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for hioload-aio.
//
// Provides:
//   - Config loading from YAML and HIOLOAD_AIO_* environment variables
//   - The metrics Collector contract with Prometheus and no-op implementations
//   - Debug probes exporting reactor and ownership-box state
package control
