// Package observability provides event logging, metrics calculation,
// and board health checks for the production board. It uses structured
// JSON Lines (JSONL) for event persistence, derives metrics on-demand
// from the event log, and evaluates health findings against board
// snapshots.
package observability
