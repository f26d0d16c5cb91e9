// Package report renders an analysis snapshot as a Markdown narrative and as HTML.
package report

import (
	"fmt"
	"strings"

	"gospc/domain/drill"
	"gospc/domain/spc"
	"gospc/internal/variation"

	"github.com/dustin/go-humanize"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Input is everything a report needs
type Input struct {
	Title       string
	Outcome     string
	Stats       spc.StatsResult
	Violations  spc.RuleViolations
	Variation   variation.Result
	Ranking     []spc.FactorEffect
	Breadcrumbs []drill.BreadcrumbItem
}

// Markdown renders the report body
func Markdown(in Input) string {
	var b strings.Builder

	title := in.Title
	if title == "" {
		title = fmt.Sprintf("%s analysis", in.Outcome)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(in.Breadcrumbs) > 0 {
		labels := make([]string, len(in.Breadcrumbs))
		for i, item := range in.Breadcrumbs {
			labels[i] = item.Label
		}
		fmt.Fprintf(&b, "**Scope:** %s\n\n", strings.Join(labels, " > "))
	}

	b.WriteString("## Capability\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Observations | %s |\n", humanize.Comma(int64(in.Stats.Count)))
	fmt.Fprintf(&b, "| Mean | %s |\n", number(in.Stats.Mean))
	fmt.Fprintf(&b, "| Std dev | %s |\n", number(in.Stats.StdDev))
	fmt.Fprintf(&b, "| UCL | %s |\n", number(in.Stats.UCL))
	fmt.Fprintf(&b, "| LCL | %s |\n", number(in.Stats.LCL))
	fmt.Fprintf(&b, "| Cp | %s |\n", optional(in.Stats.Cp))
	fmt.Fprintf(&b, "| Cpk | %s |\n", optional(in.Stats.Cpk))
	fmt.Fprintf(&b, "| Out of spec | %.1f%% |\n\n", in.Stats.OutOfSpecPercentage)

	b.WriteString("## Control chart signals\n\n")
	fmt.Fprintf(&b, "- %s beyond control limits\n", plural(len(in.Violations.BeyondLimits), "point", "points"))
	fmt.Fprintf(&b, "- %s of nine on one side of the mean\n\n", plural(len(in.Violations.RunOfNine), "run", "runs"))

	b.WriteString("## Drill narrative\n\n")
	for i, step := range in.Variation.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step.Narrative)
	}
	if len(in.Variation.Steps) > 0 {
		b.WriteString("\n")
	}
	if in.Variation.Summary != "" {
		fmt.Fprintf(&b, "%s.\n\n", in.Variation.Summary)
	}

	if len(in.Ranking) > 0 {
		b.WriteString("## Factor ranking\n\n")
		b.WriteString("| Factor | η² | Levels |\n|---|---|---|\n")
		for _, f := range in.Ranking {
			fmt.Fprintf(&b, "| %s | %.1f%% | %d |\n", f.Factor, f.EtaSquared*100, f.Levels)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the report as a standalone HTML page
func HTML(in Input) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: in.Title,
	})
	return markdown.ToHTML([]byte(Markdown(in)), p, renderer)
}

func number(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func optional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return number(*v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), many)
}
