// Package lmclient talks to an LM Studio instance through two interchangeable
// transports and hides which one served a call. It is structured into small
// files by concern:
//
//   - client.go: the Client facade and its fallback policy.
//   - transport.go: the Transport interface both backends implement.
//   - dto.go: transport-level data shapes and the config patch.
//   - http.go: HTTPTransport against the LM Studio REST API.
//   - cli.go, cli_parse.go: CLITransport driving the `lms` executable.
//   - errors.go: the Error type, its kinds and IsXxx helpers.
//   - events.go, eventpub_memory.go: fallback events for observers.
//   - metrics.go: prometheus counters for calls and fallbacks.
//   - sanity.go: reachability checks used by `lmsbridge doctor`.
//
// The HTTP transport is always tried first. When it fails for any reason the
// failure is logged at warn level and the CLI transport is tried exactly once.
// If the CLI transport fails too its error is returned unchanged; the HTTP
// error is only visible in the log.
package lmclient
