// Package internal groups the helpers private to dojoauth.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - rate: Redis-backed login throttling
//   - logging: slog setup for the commands
//   - cli: the dojoauth command tree
//
// # What this package must NOT do
//
//   - Export types that appear in the public dojoauth API other than through
//     aliases in the root package.
package internal
