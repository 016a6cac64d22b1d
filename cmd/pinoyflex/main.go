// ABOUTME: Command-line front end for the PinoyFlex fitness forum
// ABOUTME: Loads config, opens the substrate, and dispatches subcommands to the forum service

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/pinoyflex/pinoyflex/internal/auth"
	"github.com/pinoyflex/pinoyflex/internal/config"
	"github.com/pinoyflex/pinoyflex/internal/forum"
	"github.com/pinoyflex/pinoyflex/internal/kv"
)

const banner = `
 ___ _                 ___ _
| _ (_)_ _  ___ _  _  | __| |_____ __
|  _/ | ' \/ _ \ || | | _|| / -_) \ /
|_| |_|_||_\___/\_, | |_| |_\___/_\_\
                |__/
`

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. It is main without the process exits.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := args[0]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage(stdout)
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, stderr)

	sub, closeSub, err := openSubstrate(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeSub()

	opts := []forum.Option{forum.WithLogger(logger)}
	if cfg.Auth.HashPasswords {
		opts = append(opts, forum.WithHasher(auth.Bcrypt{Cost: cfg.Auth.BcryptCost}))
	}
	svc := forum.New(sub, opts...)

	if cfg.Seed.Enabled {
		if err := svc.Bootstrap(ctx); err != nil {
			return err
		}
	}

	a := &app{svc: svc, in: stdin, out: stdout}
	return a.dispatch(ctx, cmd, args[1:])
}

// openSubstrate builds the substrate named by cfg. The returned func releases it.
func openSubstrate(cfg config.StorageConfig) (kv.Substrate, func(), error) {
	if cfg.Driver == config.DriverMemory {
		return kv.NewMemory(), func() {}, nil
	}
	db, err := kv.OpenSQLite(cfg.Path, cfg.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return db, func() { db.Close() }, nil
}

func printUsage(w io.Writer) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: pinoyflex <command> [args]")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Account:")
	fmt.Fprintln(w, "  init                              Install sample users and posts if empty")
	fmt.Fprintln(w, "  register <username>               Create an account and log in")
	fmt.Fprintln(w, "  login <username>                  Log in")
	fmt.Fprintln(w, "  logout                            Log out")
	fmt.Fprintln(w, "  whoami                            Show the logged-in user")
	fmt.Fprintln(w, "  profile [--avatar URL] [--bio TEXT] [--username NAME]")
	fmt.Fprintln(w, "                                    Show or edit your profile")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Feed:")
	fmt.Fprintln(w, "  posts [tag]                       List posts, newest first")
	fmt.Fprintln(w, "  post <title> <tag> <body>         Publish a post")
	fmt.Fprintln(w, "  edit-post <id> <body>             Replace the body of your post")
	fmt.Fprintln(w, "  delete-post <id>                  Delete your post and its comments")
	fmt.Fprintln(w, "  vote <id> up|down                 Toggle your vote")
	fmt.Fprintln(w, "  tags                              List tags")
	fmt.Fprintln(w, "  tag <name>                        Add a custom tag")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Comments:")
	fmt.Fprintln(w, "  comments <post-id>                List comments")
	fmt.Fprintln(w, "  comment <post-id> <body>          Add a comment")
	fmt.Fprintln(w, "  edit-comment <post-id> <id> <body>")
	fmt.Fprintln(w, "  delete-comment <post-id> <id>")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Workout log:")
	fmt.Fprintln(w, "  log [YYYY-MM-DD] <note>           Record today's (or a date's) workout")
	fmt.Fprintln(w, "  logs                              Show your workout log")
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PINOYFLEX_CONFIG          Config file (default: $XDG_CONFIG_HOME/pinoyflex/config.yaml)")
	fmt.Fprintln(w, "  PINOYFLEX_STORAGE_PATH    Database file")
	fmt.Fprintln(w, "  PINOYFLEX_PASSWORD        Password for register/login when stdin is not a terminal")
	fmt.Fprintln(w)
}
