package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/lookup"
	"github.com/WessleyAI/ktype-finder/engine/present"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Finder Finder
	// Table prints matching rows after the text view.
	Table bool
	// Service is nil in remote mode.
	Service *lookup.Service
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Data     string `short:"d" env:"KTYPE_DATA" default:"ktypes.csv" help:"Reference file with Make, Model, Variant, Year and K-Type columns"`
	Encoding string `short:"e" env:"KTYPE_ENCODING" default:"latin1" enum:"latin1,iso-8859-1,windows-1252,cp1252,utf-8,utf8" help:"Text encoding of the reference file"`
	Aliases  string `env:"KTYPE_ALIASES" help:"YAML file of extra chassis-code aliases"`
	Table    bool   `short:"t" help:"Also print matching rows as a table"`
	Remote   bool   `short:"r" help:"Send lookups to the NATS lookup service instead of loading the file"`
	NatsURL  string `name:"nats-url" env:"NATS_URL" default:"nats://127.0.0.1:4222" help:"NATS server used with --remote"`
	Verbose  bool   `short:"v" help:"Log debug output to stderr"`

	Interactive InteractiveCmd `cmd:"" default:"1" help:"Read listing titles from stdin and prompt for choices (default)"`
	Find        FindCmd        `cmd:"" help:"Look up a single listing title"`
	Catalog     CatalogCmd     `cmd:"" help:"Show the makes and models in the reference file"`
}

// FindCmd is the "find" subcommand.
type FindCmd struct {
	Query []string `arg:"" help:"Listing title"`
	Year  int      `short:"y" help:"Specific year within the detected range"`
	Make  string   `short:"m" help:"Make, when several were detected"`
	Model string   `short:"M" help:"Model, when several were detected"`
}

// Run looks up the query once with the given selections.
func (c *FindCmd) Run(deps *Dependencies) error {
	reply, err := deps.Finder.Lookup(deps.Ctx, lookup.Request{
		Query:     strings.Join(c.Query, " "),
		Selection: domain.Selection{Year: c.Year, Make: c.Make, Model: c.Model},
	})
	if err != nil {
		return err
	}
	return writeReply(deps.Stdout, reply, deps.Table)
}

// CatalogCmd is the "catalog" subcommand.
type CatalogCmd struct{}

// Run prints the dataset catalog.
func (c *CatalogCmd) Run(deps *Dependencies) error {
	if deps.Service == nil {
		return errors.New("catalog is not available with --remote")
	}
	info, err := deps.Service.Catalog(deps.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Rows: %d\n", info.Rows)
	fmt.Fprintf(deps.Stdout, "Fingerprint: %s\n", info.Fingerprint)
	fmt.Fprintf(deps.Stdout, "Makes (%d): %s\n", len(info.Makes), present.FormatList(info.Makes))
	fmt.Fprintf(deps.Stdout, "Models (%d): %s\n", len(info.Models), present.FormatList(info.Models))
	return nil
}

func writeReply(w io.Writer, reply present.Reply, table bool) error {
	if err := present.WriteText(w, reply.View); err != nil {
		return err
	}
	if table && reply.Result != nil && !reply.Result.Empty {
		present.WriteTable(w, reply.Result.Rows)
	}
	return nil
}
