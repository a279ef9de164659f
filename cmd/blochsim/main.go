package main

import (
	"context"
	"fmt"
	"math/cmplx"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/automation"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/experiment"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/optim"
	"github.com/san-kum/blochsim/internal/storage"
	"github.com/san-kum/blochsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   = logrus.New()

	configFile string
	saveConfig string
	preset     string
	steps      int
	dt         float64
	spinCount  int
	offset     float64
	offsetSpan float64
	t1, t2     float64
	flip       float64
	workers    int

	spin      int
	plotWidth int
	outFile   string
	svgFile   string

	sweepRanges []string
	sweepMetric string
	sweepMin    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blochsim",
		Short:         "bloch equation magnetization simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blochsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [sequence]",
		Short: "run a pulse sequence and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSequence,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this path")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of time points")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step (ms)")
	runCmd.Flags().IntVar(&spinCount, "spins", config.DefaultSpins, "number of isochromats")
	runCmd.Flags().Float64Var(&offset, "offset", 0, "center off-resonance (kHz)")
	runCmd.Flags().Float64Var(&offsetSpan, "span", 0, "off-resonance spread (kHz)")
	runCmd.Flags().Float64Var(&t1, "t1", config.DefaultT1, "longitudinal relaxation (ms)")
	runCmd.Flags().Float64Var(&t2, "t2", config.DefaultT2, "transverse relaxation (ms)")
	runCmd.Flags().Float64Var(&flip, "flip", 90, "flip angle (deg)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "goroutines sharing the spins")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the magnetization of one spin",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&spin, "spin", 0, "spin index")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "signal, spectrum and metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&spin, "spin", 0, "spin index for the transverse portrait")
	analyzeCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	analyzeCmd.Flags().StringVar(&svgFile, "svg", "", "write the transverse path of --spin as svg")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run every entry of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [sequence]",
		Short: "grid search over sequence parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().StringArrayVar(&sweepRanges, "range", nil, "parameter range name=lo:hi:n or name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "transverse_signal", "metric to rank by")
	sweepCmd.Flags().BoolVar(&sweepMin, "minimize", false, "pick the smallest metric instead of the largest")

	playCmd := &cobra.Command{
		Use:   "play [run_id]",
		Short: "replay a run on the bloch sphere",
		Args:  cobra.ExactArgs(1),
		RunE:  playRun,
	}
	playCmd.Flags().IntVar(&spin, "spin", 0, "spin index")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSEQUENCE\tSTEPS\tDT\tSPINS\tT1\tT2")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%d\t%g\t%g\n",
					name, p.Sequence, p.Steps, p.Dt, p.Spins.Count, p.Spins.T1, p.Spins.T2)
			}
			_ = w.Flush()
		},
	}

	sequencesCmd := &cobra.Command{
		Use:   "sequences",
		Short: "list sequences and their parameters",
		Run: func(cmd *cobra.Command, args []string) {
			registry := experiment.NewRegistry()
			for _, name := range registry.ListSequences() {
				seq, _ := registry.GetSequence(name, nil)
				fmt.Printf("%s %v\n", name, seq.GetParams())
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, playCmd, exportCmd, scriptCmd, sweepCmd, presetsCmd, sequencesCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.WithField("action", "cli").Error(err)
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetOutput(os.Stderr)
	if level == "" {
		level = config.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logger.SetLevel(lvl)
	return nil
}

// loadRunConfig layers the config file and environment over the preset (or
// the defaults), then applies explicitly set flags on top.
func loadRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	base := config.DefaultConfig()
	if preset != "" {
		base = config.GetPreset(preset)
		if base == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	cfg, err := config.LoadOver(base, configFile)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Sequence = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("spins") {
		cfg.Spins.Count = spinCount
	}
	if flags.Changed("offset") {
		cfg.Spins.Offset = offset
	}
	if flags.Changed("span") {
		cfg.Spins.OffsetSpan = offsetSpan
	}
	if flags.Changed("t1") {
		cfg.Spins.T1 = t1
	}
	if flags.Changed("t2") {
		cfg.Spins.T2 = t2
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("flip") {
		if cfg.Params == nil {
			cfg.Params = map[string]float64{}
		}
		cfg.Params["flip_angle"] = flip
	}
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		if err := setupLogger(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

func runSequence(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d steps x %d spins...\n", cfg.Sequence, cfg.Steps, cfg.Spins.Count)
	res, err := experiment.New(cfg, experiment.NewRegistry(), logger).Run(ctx)
	if err != nil {
		return err
	}

	runID, err := automation.Record(st, cfg, res)
	if err != nil {
		return err
	}

	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Error()
	}

	fmt.Println(viz.Summary("run "+runID, []viz.Field{
		{Label: "sequence", Value: cfg.Sequence},
		{Label: "steps", Value: fmt.Sprint(cfg.Steps)},
		{Label: "spins", Value: fmt.Sprint(cfg.Spins.Count)},
		{Label: "dt (ms)", Value: fmt.Sprint(cfg.Dt)},
	}, res.Metrics, warnings))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEQUENCE\tTIME\tSTEPS\tSPINS\tDT\tT1\tT2")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%g\t%g\n",
			run.ID,
			run.Sequence,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Spins,
			run.Dt,
			float64(run.T1),
			float64(run.T2),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, _, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	graph, err := viz.PlotSpin(traj, spin, plotWidth, 12)
	if err != nil {
		return err
	}
	fmt.Printf("run: %s (%s)\n\n%s\n", meta.ID, meta.Sequence, graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	sig := analysis.Signal(traj)
	freqs, mags := analysis.Spectrum(sig, meta.Dt)
	peak := analysis.PeakFrequency(freqs, mags)

	values := metrics.Observe(traj, times, metrics.Defaults()...)
	fmt.Println(viz.Summary("analysis "+meta.ID, []viz.Field{
		{Label: "sequence", Value: meta.Sequence},
		{Label: "peak frequency", Value: fmt.Sprintf("%.4f kHz", peak)},
		{Label: "resolution", Value: fmt.Sprintf("%.4f kHz", 1/(float64(len(sig))*meta.Dt))},
	}, values, meta.Warnings))

	envelope := make([]float64, len(sig))
	for i, s := range sig {
		envelope[i] = cmplx.Abs(s)
	}
	fmt.Println()
	fmt.Println(viz.PlotSignal(envelope, plotWidth, 8, "|mean Mxy| vs step"))
	fmt.Println()
	fmt.Println(viz.PlotSpectrum(freqs, mags, plotWidth, 8))
	fmt.Println()
	fmt.Println(strings.TrimRight(analysis.Portrait(traj, spin, 41, 21), "\n"))

	if svgFile != "" {
		svg := viz.TransversePath(traj, spin, 40).SVG(4)
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return errors.Wrap(err, "write svg")
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st, logger)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN ID\tTRANSVERSE\tLONGITUDINAL")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\n", r.Name, r.RunID,
			r.Metrics["transverse_signal"], r.Metrics["longitudinal_recovery"])
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepRanges) == 0 {
		return errors.New("at least one --range is required")
	}

	base, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, len(sweepRanges))
	ranges := make([][]float64, len(sweepRanges))
	for i, spec := range sweepRanges {
		if names[i], ranges[i], err = optim.ParseRange(spec); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, ranges, !sweepMin)
	points, best, err := g.Search(ctx, base, experiment.NewRegistry(), sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for i, p := range points {
		row := make([]string, len(names))
		for j, n := range names {
			row[j] = fmt.Sprintf("%g", p.Params[n])
		}
		mark := ""
		if i == best {
			mark = "  <- best"
		}
		fmt.Fprintf(w, "%s\t%.6f%s\n", strings.Join(row, "\t"), p.Metrics[sweepMetric], mark)
	}
	return w.Flush()
}

func playRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewPlayback(args[0], traj, times, spin), tea.WithAltScreen())
	_, err = p.Run()
	return errors.Wrap(err, "playback")
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.Export(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	defer f.Close()
	return st.Export(f, args[0])
}
