package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ntree/internal/config"
	"github.com/san-kum/ntree/internal/dataset"
	"github.com/san-kum/ntree/internal/partition"
	"github.com/san-kum/ntree/internal/render"
	"github.com/san-kum/ntree/internal/stats"
	"github.com/san-kum/ntree/internal/storage"
	"github.com/san-kum/ntree/internal/tui"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool
	logger   *slog.Logger

	// Dataset and build flags
	configFile    string
	preset        string
	inputFile     string
	kind          string
	count         int
	dim           int
	seed          int64
	spread        float64
	boundsMode    string
	center        []float64
	width         float64
	maxDepth      int
	parallelDepth int
	snapshot      string

	// Output flags
	saveName  string
	svgFile   string
	outFile   string
	canvasW   int
	canvasH   int
	svgSize   int
	axisX     int
	axisY     int
	noRadii   bool
	plotDepth bool
)

// main registers the ntree commands and exits with status 1 when a command
// fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "ntree",
		Short: "n-ary spatial partition lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(logLevel, logJSON)
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ntree", "snapshot directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "build a tree and print its summary",
		RunE:  buildTree,
	}
	addTreeFlags(buildCmd)
	buildCmd.Flags().StringVar(&saveName, "save", "", "save a snapshot under this name")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "draw node boundaries and objects",
		RunE:  renderTree,
	}
	addTreeFlags(renderCmd)
	renderCmd.Flags().StringVar(&svgFile, "svg", "", "write SVG to this file instead of the terminal")
	renderCmd.Flags().IntVar(&canvasW, "cols", config.DefaultCanvasWidth, "canvas width in characters")
	renderCmd.Flags().IntVar(&canvasH, "rows", config.DefaultCanvasHeight, "canvas height in characters")
	renderCmd.Flags().IntVar(&svgSize, "size", config.DefaultSVGSize, "SVG size in pixels")
	renderCmd.Flags().IntVar(&axisX, "axis-x", 0, "coordinate drawn horizontally")
	renderCmd.Flags().IntVar(&axisY, "axis-y", 1, "coordinate drawn vertically")
	renderCmd.Flags().BoolVar(&noRadii, "no-radii", false, "draw objects as dots")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "summarize tree shape",
		RunE:  treeStats,
	}
	addTreeFlags(statsCmd)
	statsCmd.Flags().BoolVar(&plotDepth, "plot", true, "plot nodes per depth")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export the tree as nested JSON",
		RunE:  exportTree,
	}
	addTreeFlags(exportCmd)
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "browse the tree interactively",
		RunE:  exploreTree,
	}
	addTreeFlags(exploreCmd)
	exploreCmd.Flags().IntVar(&axisX, "axis-x", 0, "coordinate drawn horizontally")
	exploreCmd.Flags().IntVar(&axisY, "axis-y", 1, "coordinate drawn vertically")

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "write a generated object set as CSV",
		RunE:  generate,
	}
	addTreeFlags(genCmd)
	genCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list snapshots",
		RunE:  listSnapshots,
	}

	showCmd := &cobra.Command{
		Use:   "show [snapshot_id]",
		Short: "show snapshot metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showSnapshot,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.Presets[name].Dataset
				fmt.Printf("  %-10s %s, %d objects, dim %d\n", name, p.Kind, p.Count, p.Dim)
			}
			fmt.Printf("dataset kinds: %s\n", strings.Join(dataset.Kinds(), ", "))
			return nil
		},
	}

	rootCmd.AddCommand(buildCmd, renderCmd, statsCmd, exportCmd, exploreCmd, genCmd, listCmd, showCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTreeFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&inputFile, "input", "", "object CSV (x0..xN,radius)")
	f.StringVar(&snapshot, "from", "", "rebuild a saved snapshot")
	f.StringVar(&kind, "kind", defaults.Dataset.Kind, "dataset kind ("+strings.Join(dataset.Kinds(), ", ")+")")
	f.IntVar(&count, "count", defaults.Dataset.Count, "number of objects")
	f.IntVar(&dim, "dim", defaults.Dataset.Dim, "dimension")
	f.Int64Var(&seed, "seed", defaults.Dataset.Seed, "random seed")
	f.Float64Var(&spread, "spread", defaults.Dataset.Spread, "coordinate half-range")
	f.StringVar(&boundsMode, "bounds", defaults.Bounds.Mode, "root bounds: fit or auto (mean center, 2*max+1 width)")
	f.Float64SliceVar(&center, "center", nil, "explicit root center")
	f.Float64Var(&width, "width", 0, "explicit root width")
	f.IntVar(&maxDepth, "max-depth", defaults.Build.MaxDepth, "depth at which nodes stop subdividing")
	f.IntVar(&parallelDepth, "parallel", 0, "levels built concurrently")
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = inputFile
	}
	if flags.Changed("kind") {
		cfg.Dataset.Kind = kind
	}
	if flags.Changed("count") {
		cfg.Dataset.Count = count
	}
	if flags.Changed("dim") {
		cfg.Dataset.Dim = dim
	}
	if flags.Changed("seed") {
		cfg.Dataset.Seed = seed
	}
	if flags.Changed("spread") {
		cfg.Dataset.Spread = spread
	}
	if flags.Changed("bounds") {
		cfg.Bounds.Mode = boundsMode
	}
	if flags.Changed("center") {
		cfg.Bounds.Center = center
	}
	if flags.Changed("width") {
		cfg.Bounds.Width = width
	}
	if flags.Changed("max-depth") {
		cfg.Build.MaxDepth = maxDepth
	}
	if flags.Changed("parallel") {
		cfg.Build.ParallelDepth = parallelDepth
	}
	if f := flags.Lookup("cols"); f != nil && f.Changed {
		cfg.Render.Width = canvasW
	}
	if f := flags.Lookup("rows"); f != nil && f.Changed {
		cfg.Render.Height = canvasH
	}
	if f := flags.Lookup("size"); f != nil && f.Changed {
		cfg.Render.SVGSize = svgSize
	}
	if f := flags.Lookup("axis-x"); f != nil && f.Changed {
		cfg.Render.AxisX = axisX
	}
	if f := flags.Lookup("axis-y"); f != nil && f.Changed {
		cfg.Render.AxisY = axisY
	}
	if f := flags.Lookup("no-radii"); f != nil && f.Changed {
		cfg.Render.ShowRadii = !noRadii
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTree builds the tree described by the flags, or rebuilds a snapshot
// when --from is set.
func loadTree(cmd *cobra.Command) (*partition.Tree, *config.Config, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if snapshot != "" {
		st := storage.New(dataDir)
		tree, _, err := st.Rebuild(snapshot,
			partition.WithParallelDepth(cfg.Build.ParallelDepth),
			partition.WithLogger(logger),
		)
		return tree, cfg, err
	}

	objs, err := cfg.Objects()
	if err != nil {
		return nil, nil, err
	}

	opts := append(cfg.Options(objs), partition.WithLogger(logger))
	start := time.Now()
	tree, err := partition.NewContext(ctx, objs, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("tree built", "objects", tree.Count(), "nodes", tree.Len(), "elapsed", time.Since(start))
	return tree, cfg, nil
}

func buildTree(cmd *cobra.Command, args []string) error {
	tree, cfg, err := loadTree(cmd)
	if err != nil {
		return err
	}

	fmt.Print(stats.Summarize(tree).String())

	if saveName != "" {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(saveName, tree, cfg.Build.MaxDepth)
		if err != nil {
			return err
		}
		fmt.Printf("snapshot: %s\n", id)
	}
	return nil
}

func renderTree(cmd *cobra.Command, args []string) error {
	tree, cfg, err := loadTree(cmd)
	if err != nil {
		return err
	}

	cmds, err := render.Commands(tree, render.Options{
		AxisX: cfg.Render.AxisX,
		AxisY: cfg.Render.AxisY,
		Radii: cfg.Render.ShowRadii,
	})
	if err != nil {
		return err
	}

	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(render.SVG(cmds, cfg.Render.SVGSize)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d nodes, %d objects)\n", svgFile, tree.Len(), tree.Count())
		return nil
	}

	canvas := render.Rasterize(cmds, cfg.Render.Width, cfg.Render.Height)
	heading := fmt.Sprintf("%d-ary tree · axes %d/%d", tree.Arity(), cfg.Render.AxisX, cfg.Render.AxisY)
	footer := fmt.Sprintf("%d nodes · %d objects · depth %d", tree.Len(), tree.Count(), tree.Depth())
	fmt.Println(render.Frame(heading, canvas.String(), footer))
	return nil
}

func treeStats(cmd *cobra.Command, args []string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}

	s := stats.Summarize(tree)
	fmt.Print(s.String())
	if plotDepth {
		if plot := stats.DepthPlot(s, 60, 10); plot != "" {
			fmt.Println()
			fmt.Println(plot)
		}
	}
	return nil
}

func exportTree(cmd *cobra.Command, args []string) error {
	tree, _, err := loadTree(cmd)
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSON(os.Stdout, tree)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(f, tree); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exploreTree(cmd *cobra.Command, args []string) error {
	tree, cfg, err := loadTree(cmd)
	if err != nil {
		return err
	}
	return tui.Run(tree, render.Options{AxisX: cfg.Render.AxisX, AxisY: cfg.Render.AxisY, Radii: cfg.Render.ShowRadii})
}

func generate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	objs, err := cfg.Objects()
	if err != nil {
		return err
	}
	if outFile == "" {
		return dataset.WriteCSV(os.Stdout, objs)
	}
	if err := dataset.SaveCSV(outFile, objs); err != nil {
		return err
	}
	fmt.Printf("wrote %d objects to %s\n", objs.Len(), outFile)
	return nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	snaps, err := st.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOBJECTS\tNODES\tDEPTH\tTIME")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.Name, s.Summary.Objects, s.Summary.Nodes, s.Summary.MaxDepth,
			s.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id:          %s\n", meta.ID)
	fmt.Printf("name:        %s\n", meta.Name)
	fmt.Printf("saved:       %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("root:        center %v, width %.6g\n", meta.Center, meta.Width)
	fmt.Printf("max depth:   %d\n", meta.MaxDepth)
	fmt.Print(meta.Summary.String())
	return nil
}
