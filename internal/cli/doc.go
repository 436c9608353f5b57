// Package cli implements the dojoauth command tree.
//
// Every command loads configuration (defaults, then the --config YAML file,
// then DOJOAUTH_* variables, with a .env file loaded first), opens the
// configured store, initializes it from durable storage and closes it on
// exit. Sessions therefore survive between invocations whenever the storage
// driver is durable.
package cli
