package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/docbot"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	if len(c.Query) == 1 && c.Query[0] == "-" {
		return c.runStdin(deps)
	}
	return c.search(deps, strings.Join(c.Query, " "))
}

// runStdin runs one search per non-empty line of stdin.
func (c *SearchCmd) runStdin(deps *Dependencies) error {
	scanner := bufio.NewScanner(deps.Stdin)
	first := true
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if !c.JSON {
			if !first {
				fmt.Fprintln(deps.Stdout)
			}
			fmt.Fprintf(deps.Stdout, "> %s\n", q)
		}
		first = false
		if err := c.search(deps, q); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: reading queries: %v\n", err)
		return err
	}
	return nil
}

func (c *SearchCmd) search(deps *Dependencies, query string) error {
	hits, err := deps.Searcher.Search(deps.Ctx, query, docbot.SearchOptions{Language: c.Lang, Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbot.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetEscapeHTML(false)
		for _, h := range hits {
			if err := enc.Encode(h); err != nil {
				return err
			}
		}
		return nil
	}

	if len(hits) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}
	printHits(deps.Stdout, hits)
	return nil
}

func printHits(w io.Writer, hits []*docbot.Hit) {
	for i, h := range hits {
		title := h.Title
		if title == "" {
			title = h.URL
		}
		if h.Score != nil {
			fmt.Fprintf(w, "%d. %s (%.1f)\n", i+1, title, *h.Score)
		} else {
			fmt.Fprintf(w, "%d. %s\n", i+1, title)
		}
		fmt.Fprintf(w, "   %s\n", h.URL)
		if h.Lead != "" {
			fmt.Fprintf(w, "   %s\n", docbot.Truncate(h.Lead, 160))
		}
	}
}
