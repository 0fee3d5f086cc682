// Package stores persists the append-only history of provisioning runs
// in a local SQLite database: one row per run, one row per executed step.
// The history is an audit convenience for "what happened on this box";
// provisioning itself never depends on it.
package stores
