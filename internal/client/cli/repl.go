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
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isAuthenticated() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	RequestReset(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Theme(ctx context.Context, args []string) error
	Navigate(ctx context.Context, name string) error
}

// runREPL starts a read–eval–print loop for the CVKeeper client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Anonymous commands: help, go, login, register, reset-request, reset,
// theme, exit. Logged-in commands additionally: whoami, update, passwd,
// logout, delete-account.
//
// Errors returned by command handlers are printed here and the loop keeps
// going; a failed command never takes the REPL down.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cv %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isAuthenticated() {
				printlnFn("Available commands: whoami, update, passwd, theme, go <view>, logout, delete-account, exit")
			} else {
				printlnFn("Available commands: login, register, reset-request, reset, theme, go <view>, exit")
			}

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <home|login|dashboard>")
				continue
			}
			err = a.Navigate(ctx, args[0])

		case "login":
			err = a.Login(ctx)

		case "register":
			err = a.Register(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "update":
			err = a.UpdateProfile(ctx)

		case "passwd":
			err = a.ChangePassword(ctx)

		case "reset-request":
			err = a.RequestReset(ctx)

		case "reset":
			err = a.ResetPassword(ctx)

		case "delete-account":
			err = a.DeleteAccount(ctx)

		case "theme":
			err = a.Theme(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
