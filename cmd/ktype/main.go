// Command ktype looks up compatible K-Types for vehicle listing titles.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/ktype-finder/engine/dataset"
	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/lookup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// NATS connection used in remote mode.
	Conn *nats.Conn
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases the NATS connection, if any.
func (m *Main) Close() error {
	if m.Conn != nil {
		m.Conn.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	parser, err := kong.New(cli,
		kong.Name("ktype"),
		kong.Description("Find compatible K-Types for a vehicle listing title."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	if wantsHelp(args) {
		_, _ = parser.Parse(args)
		return nil
	}
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	defer m.Close()

	if cli.Remote {
		m.Conn, err = nats.Connect(cli.NatsURL, nats.Name("ktype-cli"))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: set NATS_URL to the lookup service's NATS server")
			return fmt.Errorf("failed to connect to NATS at %q: %w", cli.NatsURL, err)
		}
		deps.Finder = newRemoteFinder(m.Conn, deps.Logger)
	} else {
		svc, err := newService(ctx, cli, deps.Logger)
		if err != nil {
			return err
		}
		deps.Service = svc
		deps.Finder = &localFinder{svc: svc}
	}

	deps.Table = cli.Table
	return kongCtx.Run(deps)
}

func newService(ctx context.Context, cli *CLI, logger *slog.Logger) (*lookup.Service, error) {
	aliases, err := domain.LoadAliasFile(cli.Aliases)
	if err != nil {
		return nil, err
	}
	opts := lookup.DefaultOptions()
	opts.ModelAliases = aliases

	cache := dataset.NewFileCache(cli.Data, dataset.Options{Encoding: cli.Encoding, Comma: ','}, logger)
	if _, err := cache.Get(ctx); err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", cli.Data, err)
	}
	return lookup.New(cache, opts, nil, logger), nil
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return len(args) > 0 && args[0] == "help"
}
