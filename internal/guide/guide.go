package guide

import (
	"html/template"
	"os"

	"spikereview/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// DefaultMarkdown is shown when no guide file is configured
const DefaultMarkdown = `## Reviewing units

Each card shows one sorted unit.

- **ISI (ms)**: inter-spike-interval distribution on a log axis. Mass below ~2 ms suggests refractory violations.
- **Waveform**: the median trace in black, other quantiles in lighter grays. A wide fan means an unstable waveform.

Click a card to exclude the unit. Click again to include it. Grayed cards are excluded.
`

// Render converts markdown to HTML for the guide panel
func Render(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	return template.HTML(markdown.ToHTML(md, p, r))
}

// Load renders the guide at path, or the default guide when path is empty
func Load(path string) (template.HTML, error) {
	if path == "" {
		return Render([]byte(DefaultMarkdown)), nil
	}
	md, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "read review guide %s", path))
	}
	return Render(md), nil
}
