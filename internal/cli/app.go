package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theeverestnews/newsdesk/internal/api"
	"github.com/theeverestnews/newsdesk/internal/config"
	"github.com/theeverestnews/newsdesk/internal/credstore"
	"github.com/theeverestnews/newsdesk/internal/guard"
	"github.com/theeverestnews/newsdesk/internal/logging"
	"github.com/theeverestnews/newsdesk/internal/services"
	"github.com/theeverestnews/newsdesk/internal/session"

	_ "modernc.org/sqlite"
)

// sleep is a test seam so form tests don't wait out the submit delay.
var sleep = time.Sleep

// App wires the console together: credential store, session state, auth
// gateway, route guard, and the interactive forms.
type App struct {
	config *config.Config
	log    logging.Logger

	apiClient api.Client
	creds     *credstore.Store
	state     *session.State
	auth      services.AuthService
	guard     *guard.Guard

	reader *bufio.Reader
	out    io.Writer

	// Request-in-flight flags, one per form, so a double submit while a
	// call is outstanding is ignored rather than queued.
	loginInFlight    bool
	registerInFlight bool

	// lastEmail prefills the login form after a failed attempt; entered
	// values are never cleared by a rejection.
	lastEmail string
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	creds, err := credstore.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		// No local storage means no remembered login, not a dead console.
		log.Warn(ctx, "credential storage unavailable, starting logged out", "error", err)
	}

	apiClient := api.NewHTTPClient(cfg.APIBaseURL)
	state := session.NewState()

	a := &App{
		config:    cfg,
		log:       log,
		apiClient: apiClient,
		creds:     creds,
		state:     state,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}

	a.auth = services.NewAuthService(apiClient, creds, state, log, services.Options{
		RedirectURL:   cfg.RedirectURL,
		RedirectDelay: cfg.RedirectDelay,
		Redirect:      a.openExternal,
		Notify:        func(msg string) { fmt.Fprintln(a.out, msg) },
	})

	a.guard = guard.New(a.auth, state, log, guard.Callbacks{
		OnPending: func() { fmt.Fprintln(a.out, "Checking permissions...") },
		OnDeny:    func() { fmt.Fprintln(a.out, "Please log in to continue.") },
	})

	return a, nil
}

// Run resumes any prior session and hands control to the root loop.
func (a *App) Run(ctx context.Context) {
	defer a.auth.Close(ctx)

	a.auth.Resume(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.state.Current().Token != ""
}

// rememberedEmail returns the identifier a prior "remember me" login saved.
func (a *App) rememberedEmail(ctx context.Context) (string, bool) {
	return a.creds.RememberedEmail(ctx)
}

// openExternal is the navigation sink for the delayed non-admin redirect.
func (a *App) openExternal(url string) {
	fmt.Fprintf(a.out, "Redirecting to %s\n", url)
}
