// Package cli provides the interactive pairroom client.
//
// It wires configuration, the local cache, the directory client and the
// relationship services behind a small REPL. A background loop reconciles
// the signed-in account with the directory while the REPL is open, and the
// prompt shows whether the last directory call went through.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
