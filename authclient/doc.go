// Package authclient defines the contract between the session store and the
// account backend: exchanging credentials for a session, creating accounts and
// dispatching invitations.
//
// Implementations are interchangeable:
//
//   - mock: deterministic simulated backend for demos and tests.
//   - directory: in-process account directory with argon2id password hashes.
//   - remote: HTTP client for a backend speaking the authserver protocol.
//
// # What this package must NOT do
//
//   - Touch durable storage or the in-memory session state; that belongs to the store.
//   - Import dojoauth (no upward imports).
package authclient
