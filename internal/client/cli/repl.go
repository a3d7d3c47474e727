package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Health(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Analytics(ctx context.Context) error
	Train(ctx context.Context) error
	Users(ctx context.Context) error
	Detect(ctx context.Context) error
	Add(ctx context.Context) error
	Set(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) error
	Submit(ctx context.Context) error
	Results(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, health, exit"
	helpLoggedIn  = "Available commands: dashboard, analytics, detect, add, set, rm, clear, (l)ist, submit, results, train, users, whoami, health, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the fraudwatch CLI.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                      - show available commands
//	  - register                  - create an account
//	  - login                     - authenticate
//	  - health                    - check the service
//	  - exit | quit               - leave the program
//
//	Logged in:
//	  - dashboard                 - model and dataset summary
//	  - analytics                 - dataset statistics
//	  - detect                    - open the detection page
//	  - add                       - add a transaction
//	  - set <#> <field#> <value>  - edit one field
//	  - rm <#>                    - remove a transaction
//	  - clear                     - remove all transactions
//	  - list                      - show the batch
//	  - submit                    - score the complete transactions
//	  - results                   - show the last verdicts
//	  - train                     - retrain the model (admin)
//	  - users                     - list accounts (admin)
//	  - whoami                    - show the current identity
//	  - logout                    - log out
//
// Page access is checked by the handlers themselves. Errors returned by a
// handler are printed and the loop continues.
//
// The reader is shared with the handlers' own prompts, so no input is
// buffered past the current line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fw %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "health":
			err = a.Health(ctx)

		case "dashboard", "home":
			err = a.Dashboard(ctx)

		case "analytics":
			err = a.Analytics(ctx)

		case "train":
			err = a.Train(ctx)

		case "users":
			err = a.Users(ctx)

		case "detect":
			err = a.Detect(ctx)

		case "add":
			err = a.Add(ctx)

		case "set":
			err = a.Set(ctx, args)

		case "rm", "remove":
			err = a.Remove(ctx, args)

		case "clear":
			err = a.Clear(ctx)

		case "l", "list":
			err = a.List(ctx)

		case "submit":
			err = a.Submit(ctx)

		case "results":
			err = a.Results(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", errorMessage(err))
		}
	}
}

// errorMessage is the text shown for a failed command: the service's own
// message when there is one.
func errorMessage(err error) string {
	return client.Message(err)
}
