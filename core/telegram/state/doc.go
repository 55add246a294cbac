// Package state keeps per-user conversation sessions in memory.
// Sessions are ephemeral: a process restart drops them, so callers must be able
// to rebuild a session from durable data.
package state
