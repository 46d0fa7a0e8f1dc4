package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/exoscope/internal/buildinfo"
	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/config"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

// annotationStandalone marks commands that run without an App.
const annotationStandalone = "standalone"

// reportedError wraps an error the App has already shown to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Reported reports whether err was already printed by a command.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// configFlags are the persistent flags config.LoadConfig understands under
// the same names.
var configFlags = map[string]bool{
	"config": true, "api": true, "db": true,
	"timeout": true, "interval": true, "log-level": true,
}

// configArgs turns the persistent flags the user set into arguments for
// config.LoadConfig, so defaults, file and environment still apply
// underneath.
func configArgs(cmd *cobra.Command) []string {
	var args []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if configFlags[f.Name] {
			args = append(args, "-"+f.Name+"="+f.Value.String())
		}
	})
	return args
}

// env carries what PersistentPreRunE builds to the command bodies.
type env struct {
	app    *App
	logger *logging.ZapLogger
}

// NewRootCommand builds the exoscope command tree. Running it without a
// subcommand starts the REPL.
func NewRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "exoscope",
		Short:         "Terminal client for the exoplanet research API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationStandalone] != "" {
				return nil
			}
			return e.start(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.stop()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.app.Root(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to a JSON config file")
	pf.StringP("api", "a", "", "API base URL")
	pf.StringP("db", "d", "", "local database path")
	pf.IntP("timeout", "t", 0, "request timeout in seconds")
	pf.IntP("interval", "i", 0, "online check interval in seconds")
	pf.String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		e.loginCmd(), e.signupCmd(), e.logoutCmd(), e.whoamiCmd(),
		e.listCmd(viewKepler, "List Kepler objects of interest"),
		e.listCmd(viewTess, "List TESS objects of interest"),
		e.showCmd(), e.textureCmd(), e.searchCmd(), e.statsCmd(),
		e.notesCmd(), e.predictCmd(), e.historyCmd(), e.predictionStatsCmd(),
		e.dashboardCmd(), versionCmd(),
	)
	return root
}

// Root runs the interactive shell until EOF, "exit" or ctx ends.
func (a *App) Root(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, titleStyle.Render("exoscope")+" type help for commands")

	go func() {
		if err := a.Initialize(ctx); err != nil {
			a.logger.Warn(ctx, "session initialization", "error", err)
		}
		if !a.isLoggedIn() {
			fmt.Fprintln(a.out, mutedStyle.Render("Not logged in. Use login or signup."))
		}
	}()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.in.r)
	return nil
}

func (e *env) start(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(configArgs(cmd))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	app, err := NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return err
	}
	e.app, e.logger = app, logger

	// The REPL validates in the background; one-shot commands wait.
	if cmd.HasParent() {
		if err := app.Initialize(cmd.Context()); err != nil {
			logger.Warn(cmd.Context(), "session initialization", "error", err)
		}
	}
	return nil
}

func (e *env) stop() {
	if e.app != nil {
		e.app.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// run adapts an App method to cobra's RunE.
func (e *env) run(fn func(ctx context.Context, a *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return reported(fn(cmd.Context(), e.app))
	}
}

func (e *env) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Login(ctx) }),
	}
}

func (e *env) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "signup",
		Aliases: []string{"register"},
		Short:   "Create an account",
		Args:    cobra.NoArgs,
		RunE:    e.run(func(ctx context.Context, a *App) error { return a.Signup(ctx) }),
	}
}

func (e *env) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Logout(ctx) }),
	}
}

func (e *env) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Whoami(ctx) }),
	}
}

func (e *env) listCmd(dataset, short string) *cobra.Command {
	var o listOptions
	cmd := &cobra.Command{
		Use:   dataset,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, a *App) error {
			if dataset == viewTess {
				return a.Tess(ctx, o)
			}
			return a.Kepler(ctx, o)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&o.Disposition, "disposition", "", "server-side disposition filter")
	f.IntVar(&o.Limit, "limit", defaultListLimit, "records to fetch")
	f.IntVar(&o.Page, "page", 0, "page to fetch")
	f.Float64Var(&o.MinPeriod, "min-period", 0, "minimum orbital period in days")
	f.StringVar(&o.Text, "filter", "", "case-insensitive text filter")
	f.StringVar(&o.Sort, "sort", "", "sort field, append :desc to reverse")
	return cmd
}

// useDataset validates a kepler/tess argument and makes it the active view.
func (a *App) useDataset(name string) error {
	switch name {
	case viewKepler, viewTess:
		a.active = name
		return nil
	}
	return fmt.Errorf("unknown dataset %q, want kepler or tess", name)
}

func (e *env) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kepler|tess> <id>",
		Short: "Show one archive record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.useDataset(args[0]); err != nil {
				return err
			}
			return reported(e.app.Show(cmd.Context(), args[1:]))
		},
	}
}

func (e *env) textureCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "texture <kepler|tess> <id>",
		Short: "Generate a surface texture for a planet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.useDataset(args[0]); err != nil {
				return err
			}
			return reported(e.app.Texture(cmd.Context(), args[1], export))
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "upload the texture to the configured bucket")
	return cmd
}

func (e *env) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search both archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(e.app.Search(cmd.Context(), args))
		},
	}
}

func (e *env) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the archives",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Stats(ctx) }),
	}
}

func (e *env) notesCmd() *cobra.Command {
	notes := &cobra.Command{
		Use:   "notes",
		Short: "List and manage research notes",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Notes(ctx) }),
	}

	var in noteInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Attach a note to a record",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, a *App) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			return a.AddNote(ctx, in)
		}),
	}
	noteFlags(add.Flags(), &in)

	var patch noteInput
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := e.app
			if err := a.requireAuth(); err != nil {
				return reported(err)
			}
			cur, err := a.loadNote(cmd.Context(), args[0])
			if err != nil {
				return reported(a.report(err))
			}
			f := cmd.Flags()
			if f.Changed("dataset") {
				cur.Type = patch.Type
			}
			if f.Changed("record") {
				cur.Record = patch.Record
			}
			if f.Changed("text") {
				cur.Text = patch.Text
			}
			if f.Changed("tags") {
				cur.Tags = patch.Tags
			}
			return reported(a.EditNote(cmd.Context(), args[0], cur))
		},
	}
	noteFlags(edit.Flags(), &patch)

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.requireAuth(); err != nil {
				return reported(err)
			}
			return reported(e.app.DeleteNote(cmd.Context(), args[0]))
		},
	}

	notes.AddCommand(add, edit, rm)
	return notes
}

func noteFlags(f *pflag.FlagSet, in *noteInput) {
	f.StringVar(&in.Type, "dataset", "kepler", "kepler or tess")
	f.StringVar(&in.Record, "record", "", "archive record id")
	f.StringVar(&in.Text, "text", "", "note text")
	f.StringVar(&in.Tags, "tags", "", "comma separated tags")
}

// loadNote finds a note by id in the user's notes.
func (a *App) loadNote(ctx context.Context, id string) (noteInput, error) {
	items, err := a.notes.List(ctx)
	if err != nil {
		return noteInput{}, err
	}
	a.notesV.SetRecords(items)
	for _, n := range items {
		if n.ID == id {
			return a.existingNote(id), nil
		}
	}
	return noteInput{}, fmt.Errorf("note %s: %w", id, client.ErrNotFound)
}

func (e *env) predictCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify a candidate signal",
		Long:  "Classify a candidate signal. Without --file every measurement is asked for interactively.",
		Args:  cobra.NoArgs,
		RunE: e.run(func(ctx context.Context, a *App) error {
			if file != "" {
				return a.PredictFile(ctx, file)
			}
			return a.PredictInteractive(ctx)
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the request fields")
	return cmd
}

func (e *env) historyCmd() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past predictions",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.History(ctx, page, limit) }),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "predictions per page (at most 50)")
	return cmd
}

func (e *env) predictionStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "prediction-stats",
		Aliases: []string{"pstats"},
		Short:   "Summarize your predictions",
		Args:    cobra.NoArgs,
		RunE:    e.run(func(ctx context.Context, a *App) error { return a.PredictionStats(ctx) }),
	}
}

func (e *env) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Overview of both archives and recent predictions",
		Args:  cobra.NoArgs,
		RunE:  e.run(func(ctx context.Context, a *App) error { return a.Dashboard(ctx) }),
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStandalone: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
