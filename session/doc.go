// Package session defines the authenticated identity model shared by the
// store, the route guard and the auth collaborators, together with the codecs
// that turn a [Session] into the single durable-storage record.
//
// # Record format
//
// [JSONCodec] writes a versioned envelope ({"v":1,"session":{...}}) and
// decodes it strictly: unknown fields, unknown versions and sessions that fail
// [Session.Validate] are all reported as [ErrCorrupt]. [SignedCodec] wraps the
// same fields in an HS256 token so that hand-edited records are rejected.
//
// # Architecture boundaries
//
// This package is pure data plus encoding. It does NOT perform I/O, talk to the
// auth backend or make authorization decisions.
//
// # What this package must NOT do
//
//   - Import dojoauth, guard, storage or authclient (no upward imports).
//   - Return a partially filled Session from a codec.
package session
