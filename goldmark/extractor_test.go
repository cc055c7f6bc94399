package goldmark_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docbot"
	"github.com/fwojciec/docbot/goldmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseNotes = "# v3.7.5\n" +
	"\n" +
	"Release date: 2025-01-10\n" +
	"This release fixes **helm upgrade** issues.\n" +
	"See [upgrade guide](/pages/upgrade.md) and <https://example.com/>.\n" +
	"Fourth line is not part of the lead.\n" +
	"\n" +
	"## Breaking changes\n" +
	"- Redis is now required\n" +
	"```yaml\n" +
	"# not a heading\n" +
	"redis: true\n" +
	"```\n" +
	"### Migration\n" +
	"Run the migration job.\n" +
	"#### Details\n" +
	"Extra detail.\n"

// sidebar uses setext headings and reference links, as docsify sidebars do.
const sidebar = "Release Notes\n" +
	"=============\n" +
	"\n" +
	"Changes\n" +
	"-------\n" +
	"\n" +
	"    # indented code, not a heading\n" +
	"\n" +
	"* [v3.7.5][r1]\n" +
	"* [v3.7.4][r2]\n" +
	"\n" +
	"[r1]: /pages/3_7_5.md\n" +
	"[r2]: /pages/3_7_4.md \"3.7.4\"\n"

func TestExtractor_IndexFields(t *testing.T) {
	t.Parallel()

	t.Run("takes title, heading path and lead lines", func(t *testing.T) {
		t.Parallel()

		fields := goldmark.NewExtractor().IndexFields(releaseNotes)

		assert.Equal(t, "v3.7.5", fields.Title)
		assert.Equal(t, "Breaking changes | Migration", fields.HeadingPath)
		assert.Equal(t, "Release date: 2025-01-10 This release fixes helm upgrade issues. "+
			"See upgrade guide and https://example.com/.", fields.Lead)
	})

	t.Run("reads setext headings", func(t *testing.T) {
		t.Parallel()

		fields := goldmark.NewExtractor().IndexFields(sidebar)

		assert.Equal(t, "Release Notes", fields.Title)
		assert.Equal(t, "Changes", fields.HeadingPath)
		assert.Equal(t, "v3.7.5 v3.7.4", fields.Lead)
	})

	t.Run("truncates a long lead", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("あ", 400)
		fields := goldmark.NewExtractor().IndexFields(long + "\n\n" + long + "\n\n" + long)

		assert.Equal(t, docbot.MaxLeadLen, len([]rune(fields.Lead)))
		assert.Empty(t, fields.Title)
	})

	t.Run("empty document yields empty fields", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, docbot.IndexFields{}, goldmark.NewExtractor().IndexFields(""))
	})
}

func TestExtractor_HeadingsAndBodyPrefix(t *testing.T) {
	t.Parallel()

	e := goldmark.NewExtractor()

	headings, body := e.HeadingsAndBodyPrefix(releaseNotes, 0)
	assert.Equal(t, "Breaking changes | Migration", headings)
	assert.Contains(t, body, "# not a heading")
	assert.Contains(t, body, "Run the migration job.")
	assert.NotContains(t, body, "Details")

	_, short := e.HeadingsAndBodyPrefix(releaseNotes, 10)
	assert.Equal(t, "Release da", short)

	_, code := e.HeadingsAndBodyPrefix(sidebar, 0)
	assert.Contains(t, code, "# indented code, not a heading")
}

func TestExtractor_Sections(t *testing.T) {
	t.Parallel()

	t.Run("splits at level 1-3 headings", func(t *testing.T) {
		t.Parallel()

		sections := goldmark.NewExtractor().Sections("intro text\n\n" + releaseNotes + "## Empty\n")

		headings := make([]string, len(sections))
		for i, s := range sections {
			headings[i] = s.Heading
		}
		assert.Equal(t, []string{docbot.IntroHeading, "v3.7.5", "Breaking changes", "Migration"}, headings)
		assert.Equal(t, "Run the migration job.\nDetails\nExtra detail.", sections[3].Text)
		assert.Contains(t, sections[2].Text, "redis: true")
	})

	t.Run("keeps table rows as lines", func(t *testing.T) {
		t.Parallel()

		md := "## Versions\n\n| Chart | App |\n|---|---|\n| 3.7.5 | 1.9.0 |\n"

		sections := goldmark.NewExtractor().Sections(md)

		require.Len(t, sections, 1)
		assert.Equal(t, "Chart | App\n3.7.5 | 1.9.0", sections[0].Text)
	})
}

func TestExtractor_Links(t *testing.T) {
	t.Parallel()

	const base = "https://langgenius.github.io/dify-helm/_sidebar.md"

	t.Run("resolves inline links and autolinks in order", func(t *testing.T) {
		t.Parallel()

		links := goldmark.NewExtractor().Links(releaseNotes+"\n[again](/pages/upgrade.md) [mail](mailto:a@b.c)\n", base)

		assert.Equal(t, []string{
			"https://langgenius.github.io/pages/upgrade.md",
			"https://example.com/",
		}, links)
	})

	t.Run("resolves reference links", func(t *testing.T) {
		t.Parallel()

		links := goldmark.NewExtractor().Links(sidebar, base)

		assert.Equal(t, []string{
			"https://langgenius.github.io/pages/3_7_5.md",
			"https://langgenius.github.io/pages/3_7_4.md",
		}, links)
	})

	t.Run("ignores links inside code", func(t *testing.T) {
		t.Parallel()

		links := goldmark.NewExtractor().Links("```\n[x](/pages/hidden.md)\n```\n`[y](/pages/span.md)`\n", base)

		assert.Empty(t, links)
	})
}
