package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
	Invite(ctx context.Context, ref string) error
	Accept(ctx context.Context, ref string) error
	Decline(ctx context.Context, ref string) error
	Cancel(ctx context.Context, ref string) error
	Remove(ctx context.Context, ref string) error
	List(ctx context.Context) error
	Sync(ctx context.Context) error
	Busy(ctx context.Context, value string) error
	Ring(ctx context.Context, ref string) error
	Answer(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
	Room(ctx context.Context, args []string) error
	Enrich(ctx context.Context, value string) error
}

// commands that take exactly one argument, with their usage line.
var oneArg = map[string]string{
	"invite":  "invite <pin>",
	"accept":  "accept <name|pin>",
	"decline": "decline <name|pin>",
	"cancel":  "cancel <name|pin>",
	"remove":  "remove <name|pin>",
	"ring":    "ring <name|pin>",
	"busy":    "busy on|off",
	"avatar":  "avatar <file>",
	"enrich":  "enrich on|off",
}

// runREPL starts a simple read–eval–print loop for the pairroom client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
//	Not signed in:
//	  - help                 show available commands
//	  - register [email name]
//	  - exit | quit
//
//	Signed in:
//	  - whoami, (l)ist, sync, logout
//	  - invite <pin>, accept|decline|cancel|remove <name|pin>
//	  - busy on|off, ring <name|pin>, answer
//	  - avatar <file>, room <offset> <name>, enrich on|off
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pr %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if usage, ok := oneArg[cmd]; ok && len(args) != 1 {
			printlnFn("Usage:", usage)
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, (l)ist, sync, invite, accept, decline, cancel, remove, busy, ring, answer, avatar, room, enrich, logout, exit")
			} else {
				printlnFn("Available commands: register, exit")
			}
		case "register":
			err = a.Register(ctx, args)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "invite":
			err = a.Invite(ctx, args[0])
		case "accept":
			err = a.Accept(ctx, args[0])
		case "decline":
			err = a.Decline(ctx, args[0])
		case "cancel":
			err = a.Cancel(ctx, args[0])
		case "remove":
			err = a.Remove(ctx, args[0])
		case "l", "list":
			err = a.List(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "busy":
			err = a.Busy(ctx, args[0])
		case "ring":
			err = a.Ring(ctx, args[0])
		case "answer":
			err = a.Answer(ctx)
		case "avatar":
			err = a.Avatar(ctx, args[0])
		case "room":
			err = a.Room(ctx, args)
		case "enrich":
			err = a.Enrich(ctx, args[0])
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
