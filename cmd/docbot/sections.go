package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docbot"
)

// Run executes the sections command.
func (c *SectionsCmd) Run(deps *Dependencies) error {
	res, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbot.ErrorMessage(err))
		return err
	}

	sections := deps.Extractors.For(res).Sections(res.Body)

	if c.JSON {
		if sections == nil {
			sections = []docbot.Section{}
		}
		return json.NewEncoder(deps.Stdout).Encode(sections)
	}

	if len(sections) == 0 {
		fmt.Fprintln(deps.Stdout, "No sections.")
		return nil
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "## %s\n%s\n", s.Heading, s.Text)
	}
	return nil
}
