package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/search"
)

// citeOutput is the JSON shape of the cite command.
type citeOutput struct {
	Question  string             `json:"question"`
	Citations []*docbot.Citation `json:"citations"`
	Hits      []*docbot.Hit      `json:"hits"`
}

// Run executes the cite command.
func (c *CiteCmd) Run(deps *Dependencies) error {
	citations, hits, err := deps.Citer.Cite(deps.Ctx, c.Question, search.CiteOptions{
		Language:        c.Lang,
		Pages:           c.Pages,
		SectionsPerPage: c.Sections,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbot.ErrorMessage(err))
		return err
	}

	if c.JSON {
		out := citeOutput{Question: c.Question, Citations: citations, Hits: hits}
		if out.Citations == nil {
			out.Citations = []*docbot.Citation{}
		}
		if out.Hits == nil {
			out.Hits = []*docbot.Hit{}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}

	if len(citations) == 0 {
		fmt.Fprintln(deps.Stdout, "No citations found.")
		return nil
	}
	for i, cit := range citations {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "[%d] %s › %s\n    %s\n\n%s\n", i+1, cit.Title, cit.Heading, cit.URL, cit.Quote)
	}
	return nil
}
