// Package dojoauth holds the authentication state of the current user of the
// sales-training platform and keeps it mirrored to durable storage.
//
// A [Store] is constructed once through [Builder] and shared by explicit
// injection (constructor arguments or [WithStore]). Its lifecycle is
//
//	Build -> Initialize -> Login/Register/Logout/SendInvite ... -> Close
//
// Initialize hydrates the store from its [storage.Backend]; stored records
// are schema-checked on the way in and anything malformed is treated as
// "logged out". Login and Register write the record before the in-memory
// session changes, Logout removes it before the in-memory session is cleared,
// so memory never claims a state that storage does not hold.
//
// # Architecture boundaries
//
// dojoauth is the public surface: [Store], [Builder], [Config], errors, audit
// and metrics types. The session model and codecs live in package session,
// the account backend contract in authclient, page authorization in guard.
//
// # What this package must NOT do
//
//   - Decide page access; that is guard's job and it only reads [session.State].
//   - Hold package-level mutable state. Every Store is independent.
//   - Log or audit passwords.
package dojoauth
