// Package storage defines the durable-storage capability used to mirror the
// current session across process restarts, plus an in-memory implementation.
//
// A [Backend] owns exactly one named record. Persistent implementations live in
// sub-packages: redisstore (Redis) and sqlitestore (embedded SQLite).
//
// # What this package must NOT do
//
//   - Interpret record contents; encoding belongs to the session package.
//   - Import dojoauth (no upward imports).
package storage
