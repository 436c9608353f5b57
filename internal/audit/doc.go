// Package audit delivers session lifecycle events to pluggable sinks.
//
// # Components
//
//   - [Sink] consumes events (channel, JSON lines, no-op, or a [SinkFunc]).
//   - [Dispatcher] relays events asynchronously with drop-if-full or
//     block-if-full semantics.
//   - [Event] is the record: timestamp, type, user, email, outcome, metadata.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. Which events exist, and when they
// fire, is decided by the session store in the root package.
//
// # What this package must NOT do
//
//   - Filter events based on business rules.
//   - Import dojoauth or any sibling internal package.
//   - Record passwords or other credentials.
package audit
