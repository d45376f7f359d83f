package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/WessleyAI/ktype-finder/engine/lookup"
	"github.com/WessleyAI/ktype-finder/engine/present"
)

// InteractiveCmd is the default subcommand: a read-lookup-print loop.
type InteractiveCmd struct{}

// Run reads listing titles until EOF or "quit". When more than one make,
// model or year is possible the user picks one by number; an empty answer
// keeps the default.
func (c *InteractiveCmd) Run(deps *Dependencies) error {
	in := bufio.NewScanner(deps.Stdin)
	out := deps.Stdout

	for {
		fmt.Fprint(out, "Enter the listing title: ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		query := strings.TrimSpace(in.Text())
		switch strings.ToLower(query) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		}

		req := lookup.Request{Query: query}
		reply, err := deps.Finder.Lookup(deps.Ctx, req)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		changed := false
		for _, p := range reply.View.Prompts {
			if len(p.Options) < 2 {
				continue
			}
			choice, ok := choose(in, out, p)
			if !ok {
				return in.Err()
			}
			if choice == p.Selected {
				continue
			}
			changed = true
			switch p.Field {
			case "year":
				req.Year, _ = strconv.Atoi(choice)
			case "make":
				req.Make = choice
			case "model":
				req.Model = choice
			}
		}
		if changed {
			if reply, err = deps.Finder.Lookup(deps.Ctx, req); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
		}
		if err := writeReply(out, reply, deps.Table); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}

// choose prompts with numbered options until it gets a valid answer. It
// returns false at end of input.
func choose(in *bufio.Scanner, out io.Writer, p present.Prompt) (string, bool) {
	def := "none"
	if p.Selected != "" {
		def = p.Selected
	}
	for {
		fmt.Fprintln(out, p.Label)
		for i, opt := range p.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprintf(out, "Choice [%s]: ", def)
		if !in.Scan() {
			return "", false
		}
		answer := strings.TrimSpace(in.Text())
		if answer == "" {
			return p.Selected, true
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(p.Options) {
			return p.Options[n-1], true
		}
		fmt.Fprintf(out, "Please enter a number between 1 and %d.\n", len(p.Options))
	}
}
