package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ayush/argumetrics/internal/client"
	"github.com/ayush/argumetrics/internal/models"
)

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

func (a *App) credentials(name string, args []string) (models.InsertUser, error) {
	fs := a.flagSet(name)
	username := fs.String("username", "", "account name")
	if err := fs.Parse(args); err != nil {
		return models.InsertUser{}, ErrUsage
	}

	var in models.InsertUser
	in.Username = *username
	if in.Username == "" {
		u, err := a.prompt("Username")
		if err != nil {
			return in, err
		}
		in.Username = u
	}
	pw, err := a.password()
	if err != nil {
		return in, err
	}
	in.Password = pw
	return in, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	in, err := a.credentials("register", args)
	if err != nil {
		return err
	}
	user, err := a.client.Register(ctx, in)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "registered and logged in as %s\n", user.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	in, err := a.credentials("login", args)
	if err != nil {
		return err
	}
	user, err := a.client.Login(ctx, in)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "logged in as %s\n", user.Username)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, "logged out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "%s (id %d)\n", user.Username, user.ID)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	archetype := fs.String("archetype", client.AllArchetypes, "archetype to show, or all")
	search := fs.String("search", "", "case-insensitive text in title or description")
	recent := fs.Int("recent", 0, "show only the N newest arguments")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	all, err := a.client.Arguments(ctx)
	if err != nil {
		return err
	}
	shown := client.FilterArguments(all, *archetype, *search)
	if *recent > 0 {
		shown = client.Recent(shown, *recent)
	}
	if len(shown) == 0 {
		fmt.Fprintln(a.Stdout, "no arguments")
		return nil
	}
	writeArguments(a.Stdout, shown)
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	id, err := parseIDArg(args)
	if err != nil {
		return err
	}
	arg, err := a.client.Argument(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "#%d %s [%s]\n%s\ncreated %s by user %d\n",
		arg.ID, arg.Title, arg.Archetype, arg.Description, arg.CreatedAt.Format(time.RFC3339), arg.UserID)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	title := fs.String("title", "", "argument title")
	description := fs.String("description", "", "argument description")
	archetype := fs.String("archetype", "", "Technical, Business, Research or Educational")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	arg, err := a.client.CreateArgument(ctx, models.InsertArgument{
		Title:       *title,
		Description: *description,
		Archetype:   models.Archetype(*archetype),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "created argument #%d\n", arg.ID)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, err := parseIDArg(args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteArgument(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "deleted argument #%d\n", id)
	return nil
}

func (a *App) report(ctx context.Context, _ []string) error {
	all, err := a.client.Arguments(ctx)
	if err != nil {
		return err
	}
	report, err := a.client.ArchetypeReport(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARCHETYPE\tCOUNT")
	for _, row := range report {
		fmt.Fprintf(tw, "%s\t%d\n", row.Archetype, row.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writeSummary(a.Stdout, client.Summarize(all, report))
	return nil
}

func (a *App) dashboard(ctx context.Context, _ []string) error {
	all, err := a.client.Arguments(ctx)
	if err != nil {
		return err
	}
	report, err := a.client.ArchetypeReport(ctx)
	if err != nil {
		return err
	}
	writeSummary(a.Stdout, client.Summarize(all, report))

	recent := client.Recent(all, 3)
	if len(recent) == 0 {
		return nil
	}
	fmt.Fprintln(a.Stdout)
	fmt.Fprintln(a.Stdout, "Recent arguments:")
	writeArguments(a.Stdout, recent)
	return nil
}

func writeSummary(w io.Writer, s client.Summary) {
	fmt.Fprintf(w, "Total arguments: %d\n", s.Total)
	fmt.Fprintf(w, "Dominant archetype: %s\n", s.Dominant)
}

func (a *App) activity(ctx context.Context, args []string) error {
	fs := a.flagSet("activity")
	limit := fs.Int("limit", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	entries, err := a.client.Activity(ctx, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tUSER\tACTION\tARGUMENT")
	for _, e := range entries {
		target := ""
		if e.ArgumentID != 0 {
			target = "#" + strconv.FormatInt(e.ArgumentID, 10)
			if e.Title != "" {
				target += " " + e.Title
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Username, e.Action, target)
	}
	return tw.Flush()
}

func (a *App) export(ctx context.Context, _ []string) error {
	exp, err := a.client.ExportArguments(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "exported %d rows (%d bytes) to %s\n", exp.Rows, exp.Size, exp.Key)
	return nil
}

func writeArguments(w io.Writer, args []models.Argument) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARCHETYPE\tTITLE\tCREATED")
	for _, a := range args {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Archetype, a.Title, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func parseIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one argument id", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an argument id", ErrUsage, args[0])
	}
	return id, nil
}
