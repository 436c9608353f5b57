// Package rate throttles failed sign-in attempts with Redis counters.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE on the first hit. Keys:
//   - <prefix>:email:<lower-cased email>
//   - <prefix>:src:<source address>  (only when source throttling is enabled)
//
// # What this package must NOT do
//
//   - Decide which requests count as failures (the account directory does).
//   - Be imported outside the dojoauth module.
package rate
