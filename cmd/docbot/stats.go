package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/fwojciec/docbot"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Pages.PageStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbot.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return json.NewEncoder(deps.Stdout).Encode(stats)
	}

	fmt.Fprintf(deps.Stdout, "Pages: %d\n", stats.Pages)
	langs := make([]string, 0, len(stats.ByLanguage))
	for lang := range stats.ByLanguage {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		fmt.Fprintf(deps.Stdout, "  %-8s %d\n", lang, stats.ByLanguage[lang])
	}
	return nil
}
