package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lyricfield/internal/metrics"
	"github.com/san-kum/lyricfield/internal/optim"
)

var (
	sweepParams []string
	sweepMetric string
	sweepGoal   string
	sweepSeeds  int
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search parameters against a session metric",
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (json, yaml or toml)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "first seed (0 picks one)")
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 30, "duration of each run")
	cmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&sweepMetric, "metric", "type_balance", "metric to optimize")
	cmd.Flags().StringVar(&sweepGoal, "goal", "max", "max or min")
	cmd.Flags().IntVar(&sweepSeeds, "seeds", 3, "runs per combination")
	return cmd
}

// parseGrid turns "name=v1,v2" flags into parallel name and range slices.
func parseGrid(flags []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(flags))
	ranges := make([][]float64, 0, len(flags))
	for _, arg := range flags {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", arg)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", arg, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(sweepParams)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("nothing to sweep: pass at least one --param")
	}

	goal := optim.Maximize
	switch sweepGoal {
	case "max":
	case "min":
		goal = optim.Minimize
	default:
		return fmt.Errorf("unknown goal: %s (want max or min)", sweepGoal)
	}

	session := optim.Session{
		Params:   cfg.Params(),
		Catalog:  cat,
		Duration: cfg.Duration,
		Dt:       cfg.Dt,
		Metrics:  metrics.Default,
	}
	g := optim.NewGridSearch(names, ranges)
	fmt.Printf("sweeping %d combinations x %d seeds...\n\n", len(g.Combinations()), sweepSeeds)

	res, err := g.Search(cmd.Context(), session, sweepMetric, goal, sweepSeeds, cfg.Seed)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, pt := range res.Points {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(pt.Params[n], 'g', 6, 64))
		}
		row = append(row, fmt.Sprintf("%.4f", pt.Score))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best := make([]string, 0, len(res.Best))
	for k, v := range res.Best {
		best = append(best, fmt.Sprintf("%s=%g", k, v))
	}
	sort.Strings(best)
	fmt.Printf("\nbest: %s (%s %.4f)\n", strings.Join(best, " "), sweepMetric, res.Score)
	return nil
}
