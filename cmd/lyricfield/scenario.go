package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lyricfield/internal/automation"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/metrics"
	"github.com/san-kum/lyricfield/internal/storage"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted session and record it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (json, yaml or toml)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "default timestep")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record every n-th frame")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	rec := storage.NewRecorder(sampleEvery)
	e := engine.New(cfg.Params(), engine.WithSeed(cfg.Seed), engine.WithObserver(rec))
	for _, m := range metrics.Default() {
		e.AddMetric(m)
	}
	e.Initialize(cat)

	fmt.Printf("playing %s (%d steps)...\n\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(cmd.Context(), e, sc, cfg.Dt)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTIME\tDISPLAYED\tSELECTIONS\tROTATIONS\tTYPE_BALANCE\tCOVERAGE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.1fs\t%d\t%d\t%d\t%.3f\t%.3f\n",
			r.Name, r.Time, r.Stats.Displayed, r.Stats.Selections, r.Stats.ForcedRotations,
			r.Metrics["type_balance"], r.Metrics["coverage"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	last := results[len(results)-1]
	runID, err := st.Save(storage.RunMetadata{
		Preset:   sc.Name,
		Catalog:  cfg.Catalog,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: last.Time,
		Ticks:    e.Last().Tick,
		Params:   e.Params().GetParams(),
		Stats:    last.Stats,
		Metrics:  last.Metrics,
	}, rec.Samples())
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}
