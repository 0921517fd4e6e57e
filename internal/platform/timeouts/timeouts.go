// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between fetch paths and makes the
// durations discoverable.
package timeouts

import "time"

// UpstreamFetch caps one HTTP request to an upstream feed, lookup, or CDN
// endpoint. Each operation issues at most one request per upstream; there is
// no retry budget to account for.
const UpstreamFetch = 15 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
