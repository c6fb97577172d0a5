package cli

import (
	"bufio"
	"context"
)

// Root runs the REPL over a.reader until the user leaves. Commands that
// prompt read from the same reader; a terminal hands it one line per read.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to pairroom (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
