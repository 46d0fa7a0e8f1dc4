package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it;
// tests provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Kepler(ctx context.Context, o listOptions) error
	Tess(ctx context.Context, o listOptions) error
	Filter(args []string) error
	Sort(args []string) error
	Show(ctx context.Context, args []string) error
	Texture(ctx context.Context, id string, export bool) error
	Search(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Notes(ctx context.Context) error
	Note(ctx context.Context, args []string) error
	PredictInteractive(ctx context.Context) error
	HistoryArgs(ctx context.Context, args []string) error
	PredictionStats(ctx context.Context) error
	Dashboard(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, signup, help, exit"
	helpLoggedIn  = `Available commands:
  kepler [disposition] [limit=N page=N min_period=D]   list Kepler objects
  tess [disposition] [limit=N page=N min_period=D]     list TESS objects
  filter [text]        filter the current list (no text clears)
  sort <field>         sort the current list; repeat to reverse
  show <id>            show one record of the current list
  texture <id> [export]  generate a surface texture
  search <query>       search both archives
  stats                archive summary
  notes                list research notes
  note add | note edit <id> | note rm <id>
  predict              classify a candidate signal
  history [page] [limit]   past predictions
  pstats               prediction statistics
  dashboard            overview
  whoami, logout, help, exit`
)

// runREPL reads commands line by line and dispatches them to a until EOF
// or "exit". Command errors are reported by the handlers themselves, so
// the loop only keeps going. in is shared with the handlers' prompts.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("exoscope %s > ", statusFn()))
		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)
		case "signup", "register":
			_ = a.Signup(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.Whoami(ctx)

		case "kepler", "tess":
			o, err := parseListArgs(args)
			if err != nil {
				printlnFn(err.Error())
				continue
			}
			if cmd == "kepler" {
				_ = a.Kepler(ctx, o)
			} else {
				_ = a.Tess(ctx, o)
			}
		case "filter":
			_ = a.Filter(args)
		case "sort":
			_ = a.Sort(args)
		case "show":
			_ = a.Show(ctx, args)
		case "texture":
			if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "export") {
				printlnFn("Usage: texture <id> [export]")
				continue
			}
			_ = a.Texture(ctx, args[0], len(args) == 2)
		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			_ = a.Search(ctx, args)
		case "stats":
			_ = a.Stats(ctx)

		case "notes":
			_ = a.Notes(ctx)
		case "note":
			_ = a.Note(ctx, args)

		case "predict":
			_ = a.PredictInteractive(ctx)
		case "history":
			_ = a.HistoryArgs(ctx, args)
		case "pstats":
			_ = a.PredictionStats(ctx)
		case "dashboard":
			_ = a.Dashboard(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
