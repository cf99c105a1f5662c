package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/roots"
)

// RenderFit formats a grid search outcome as a bordered panel.
func RenderFit(res *fit.Result) string {
	lines := []string{
		Title.Render("best parameters"),
		"",
		row("alpha", fmt.Sprintf("%g", res.Best.Alpha)),
		row("beta", fmt.Sprintf("%g", res.Best.Beta)),
		row("gamma", fmt.Sprintf("%g", res.Best.Gamma)),
		row("delta", fmt.Sprintf("%g", res.Best.Delta)),
		"",
		row("lowest error", fmt.Sprintf("%g", res.LowestError)),
		row("evaluated", fmt.Sprintf("%d", res.Evaluated)),
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// RenderRoot formats a bisection outcome.
func RenderRoot(entry roots.Entry, left, right, root float64) string {
	lines := []string{
		Title.Render(fmt.Sprintf("%s(x) = %s", entry.Name, entry.Formula)),
		"",
		row("interval", fmt.Sprintf("[%g, %g]", left, right)),
		row("root", fmt.Sprintf("%.10g", root)),
		row("f(root)", fmt.Sprintf("%.3g", entry.Fn(root))),
	}
	return Panel.Render(strings.Join(lines, "\n"))
}
