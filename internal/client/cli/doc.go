// Package cli implements the interactive terminal client.
//
// The entry point is App: it wires the configuration, the local sqlite
// store, the backend HTTP client and the services together, then runs a
// read-eval-print loop. Which check-in commands are offered depends on the
// manual mode the backend configured for the logged-in user.
package cli
