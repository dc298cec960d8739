// Package httpserver provides the base HTTP server shared by the
// auction service binaries.
//
// BaseServer mounts the routes of any number of RouteRegistrar
// components on a chi router, adds health endpoints (/livez, /readyz),
// drain control for load balancers (/drain, /undrain), optional pprof,
// and an optional Prometheus metrics listener on a separate address.
// Startup is non-blocking via RunInBackground; Shutdown waits for
// in-flight requests up to the configured grace period.
package httpserver
