// Package engine implements the provisioning orchestrator: an ordered
// pipeline of idempotent installation steps executed strictly sequentially
// against the local host.
//
// A pipeline is a fixed []Step built once at startup. Each step receives
// the shared *Context, mutates host state (packages, files, services) and
// reports its outcome through a classified StepError. A failing step marked
// Fatal terminates the run immediately; non-fatal failures log a warning
// and the run continues. Re-running a completed pipeline converges to the
// same host state.
//
// Execution is intentionally single-threaded: every step touches shared
// host state (the package database, /boot/config.txt, systemd) that must
// not be modified concurrently.
package engine
