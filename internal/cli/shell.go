package cli

import (
	"context"
	"fmt"
	"strings"
)

// Shell is the protected region behind the route guard: the management
// surface mounted only after an ADMITTED decision. The content screens
// (articles, media, authors, ads) live behind the same API and are reached
// from here; the shell itself only shows the signed-in profile and handles
// logout.
func (a *App) Shell(ctx context.Context) {
	a.greet(ctx)

	for {
		fmt.Fprint(a.out, "newsdesk(admin)> ")
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
			fmt.Fprintln(a.out, "Available commands: whoami, logout, exit")

		case "whoami":
			a.greet(ctx)

		case "logout":
			a.auth.Logout(ctx)
			fmt.Fprintln(a.out, "Logged out.")
			return

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}

// greet shows the profile bound to the current token, the way the dashboard
// topbar does after admission.
func (a *App) greet(ctx context.Context) {
	token := a.state.Current().Token
	info, err := a.apiClient.UserInfo(ctx, token)
	if err != nil {
		a.log.Warn(ctx, "user info fetch failed", "error", err)
		fmt.Fprintln(a.out, "Welcome, Admin!")
		return
	}
	fmt.Fprintf(a.out, "Welcome, %s! (role: %s)\n", info.Username, info.Role)
}
