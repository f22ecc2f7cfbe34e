package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/theeverestnews/newsdesk/internal/guard"
)

// Root is the logged-out entry loop: the place the route guard sends the
// user whenever admission is denied.
//
// On startup it mounts the guard once so a session resumed from the
// credential store goes straight to the shell. After that it accepts:
//
//	login     — authenticate and, when admitted, enter the shell
//	register  — create an account, then return here to log in
//	help      — list commands
//	exit|quit — leave the program
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "newsdesk — The Everest News admin console (type 'help' for commands)")

	// A prior login may be resumable without typing anything.
	if a.guard.Mount(ctx) == guard.StatusAdmitted {
		a.Shell(ctx)
		a.guard.Unmount()
	}

	for {
		fmt.Fprint(a.out, "newsdesk> ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(a.out, "Available commands: login, register, exit")

		case "login":
			if err := a.Login(ctx); err != nil {
				return
			}

		case "register":
			if err := a.Register(ctx); err != nil {
				return
			}

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}
