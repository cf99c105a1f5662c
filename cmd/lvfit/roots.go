package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lvfit/internal/config"
	"github.com/san-kum/lvfit/internal/roots"
	"github.com/san-kum/lvfit/internal/viz"
)

// rootsConfig resolves the function entry and applies explicitly set flags
// to the roots section.
func rootsConfig(cmd *cobra.Command, args []string) (*config.Config, roots.Entry, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, roots.Entry{}, err
	}
	if len(args) > 0 {
		cfg.Roots.Function = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("left") {
		cfg.Roots.Left = left
	}
	if flags.Changed("right") {
		cfg.Roots.Right = right
	}
	if flags.Changed("precision") {
		cfg.Roots.Precision = precision
	}
	if flags.Changed("start") {
		cfg.Roots.PlotStart = start
	}
	if flags.Changed("end") {
		cfg.Roots.PlotEnd = end
	}
	if flags.Changed("step") {
		cfg.Roots.PlotStep = sampleDx
	}

	entry, err := roots.Lookup(cfg.Roots.Function)
	if err != nil {
		return nil, roots.Entry{}, err
	}
	return cfg, entry, nil
}

func solveRoot(cmd *cobra.Command, args []string) error {
	cfg, entry, err := rootsConfig(cmd, args)
	if err != nil {
		return err
	}

	rc := cfg.Roots
	root, err := roots.Solve(entry.Fn, rc.Left, rc.Right, rc.Precision)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderRoot(entry, rc.Left, rc.Right, root))
	return nil
}

func plotFunction(cmd *cobra.Command, args []string) error {
	cfg, entry, err := rootsConfig(cmd, args)
	if err != nil {
		return err
	}

	rc := cfg.Roots
	xs, ys, err := roots.Sample(entry.Fn, rc.PlotStart, rc.PlotEnd, rc.PlotStep)
	if err != nil {
		return err
	}
	if len(xs) == 0 {
		return fmt.Errorf("empty range [%g, %g)", rc.PlotStart, rc.PlotEnd)
	}

	caption := fmt.Sprintf("%s(x) = %s on [%g, %g)", entry.Name, entry.Formula, rc.PlotStart, rc.PlotEnd)
	fmt.Println(viz.PlotFunction(ys, viz.DefaultWidth, viz.DefaultHeight, caption))
	return nil
}

func listFunctions(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFORMULA")
	for _, e := range roots.List() {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Formula)
	}
	return w.Flush()
}
