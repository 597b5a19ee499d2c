// Package cli implements argctl, a command-line front end for the API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayush/argumetrics/internal/client"
)

const defaultServer = "http://localhost:5000"

// ErrUsage is returned for unknown commands and bad arguments.
var ErrUsage = errors.New("usage error")

// App runs one argctl command per Run call.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// SessionFile holds the session token between invocations.
	SessionFile string
	Getenv      func(string) string

	reader *bufio.Reader
	client *client.Client
}

// NewApp wires the App to the process's standard streams.
func NewApp() *App {
	sessionFile := ""
	if dir, err := os.UserConfigDir(); err == nil {
		sessionFile = filepath.Join(dir, "argumetrics", "session")
	}
	return &App{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		SessionFile: sessionFile,
		Getenv:      os.Getenv,
	}
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register":  {"create an account and log in", (*App).register},
	"login":     {"log in", (*App).login},
	"logout":    {"end the current session", (*App).logout},
	"whoami":    {"show the logged-in user", (*App).whoami},
	"list":      {"list arguments [-archetype A] [-search S] [-recent N]", (*App).list},
	"show":      {"show one argument: show <id>", (*App).show},
	"add":       {"add an argument -title T -description D -archetype A", (*App).add},
	"rm":        {"delete an argument: rm <id>", (*App).remove},
	"report":    {"count arguments per archetype", (*App).report},
	"dashboard": {"show totals, the dominant archetype and recent arguments", (*App).dashboard},
	"activity":  {"show recent activity [-limit N]", (*App).activity},
	"export":    {"export the catalog as CSV to object storage", (*App).export},
}

var commandOrder = []string{
	"register", "login", "logout", "whoami", "list", "show", "add", "rm", "report", "dashboard", "activity", "export",
}

// Run parses global flags, then dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("argctl", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	server := fs.String("server", a.envOr("ARGUMETRICS_URL", defaultServer), "API base URL")
	fs.Usage = func() { a.usage(fs) }
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		a.usage(fs)
		return ErrUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(a.Stderr, "unknown command %q\n", rest[0])
		a.usage(fs)
		return ErrUsage
	}

	c, err := client.New(*server)
	if err != nil {
		return err
	}
	a.client = c
	a.reader = bufio.NewReader(a.Stdin)
	if token, err := a.loadSession(); err == nil {
		c.SetSessionToken(token)
	}

	if err := cmd.run(a, ctx, rest[1:]); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("%w (run `argctl login` first)", err)
		}
		return err
	}
	return nil
}

func (a *App) usage(fs *flag.FlagSet) {
	fmt.Fprintln(a.Stderr, "usage: argctl [-server URL] <command> [flags]")
	fmt.Fprintln(a.Stderr)
	fmt.Fprintln(a.Stderr, "commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.Stderr, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(a.Stderr)
	fs.PrintDefaults()
}

func (a *App) envOr(key, fallback string) string {
	if a.Getenv == nil {
		return fallback
	}
	if v := strings.TrimSpace(a.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (a *App) loadSession() (string, error) {
	if a.SessionFile == "" {
		return "", os.ErrNotExist
	}
	data, err := os.ReadFile(a.SessionFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) saveSession() error {
	if a.SessionFile == "" {
		return nil
	}
	token := a.client.SessionToken()
	if token == "" {
		err := os.Remove(a.SessionFile)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.SessionFile), 0o700); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.WriteFile(a.SessionFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
