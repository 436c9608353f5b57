// Package logging builds the process-wide slog logger used by the dojoauth
// commands.
package logging
