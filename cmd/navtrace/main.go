package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/navtrace/internal/storage"
)

var version = "dev"

var (
	dataDir    string
	configFile string
	preset     string
	// render / export
	format     string
	outputPath string
	gifPath    string
	step       int
	width      int
	height     int
	statsJSON  bool
	// players
	frameRate int
	theme     string
	// serve
	addr    string
	persist bool
	quiet   bool
	name    string
	// list
	filter  storage.Filter
	reindex bool
)

// main runs the chosen subcommand and exits 1 when it fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers every subcommand. Each output flag has its own
// variable so one command's default never leaks into another.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "navtrace",
		Short:         "render agent simulation traces",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "trace library directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration (name or kind/name)")

	validateCmd := &cobra.Command{
		Use:   "validate [file|id]",
		Short: "parse a trace and report warnings",
		Args:  cobra.ExactArgs(1),
		RunE:  validateTrace,
	}

	renderCmd := &cobra.Command{
		Use:   "render [file|id]",
		Short: "encode every frame into an animated figure",
		Args:  cobra.ExactArgs(1),
		RunE:  renderTrace,
	}
	renderCmd.Flags().StringVar(&format, "format", "html", "output format: html, json or msgpack")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [file|id]",
		Short: "render one frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().IntVar(&step, "step", 0, "frame index")
	svgCmd.Flags().IntVar(&width, "width", 0, "image width (default from config)")
	svgCmd.Flags().IntVar(&height, "height", 0, "image height (default from config)")
	svgCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	gifCmd := &cobra.Command{
		Use:   "gif [file|id]",
		Short: "render every frame into an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  renderGIF,
	}
	gifCmd.Flags().IntVar(&width, "width", 0, "image width (default from config)")
	gifCmd.Flags().IntVar(&height, "height", 0, "image height (default from config)")
	gifCmd.Flags().StringVarP(&gifPath, "output", "o", "trace.gif", "output file")

	statsCmd := &cobra.Command{
		Use:   "stats [file|id]",
		Short: "occupancy and presence over time",
		Args:  cobra.ExactArgs(1),
		RunE:  traceStats,
	}
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the statistics as JSON")

	viewCmd := &cobra.Command{
		Use:   "view [file|id]",
		Short: "play a trace in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  viewTrace,
	}
	viewCmd.Flags().IntVar(&frameRate, "fps", 0, "frames per second (default from config)")
	viewCmd.Flags().StringVar(&theme, "theme", "", "color theme (default from config)")

	guiCmd := &cobra.Command{
		Use:   "gui [file|id]",
		Short: "play a trace in a window",
		Args:  cobra.ExactArgs(1),
		RunE:  guiTrace,
	}

	serveCmd := &cobra.Command{
		Use:   "serve [file|id...]",
		Short: "serve the web viewer, optionally preloading traces",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&persist, "persist", false, "store every upload in the library")
	serveCmd.Flags().BoolVar(&quiet, "quiet", false, "disable request logging")

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "add a trace to the library",
		Args:  cobra.ExactArgs(1),
		RunE:  importTrace,
	}
	importCmd.Flags().StringVar(&name, "name", "", "library name (default file name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list library traces",
		RunE:  listTraces,
	}
	listCmd.Flags().StringVar(&filter.Kind, "kind", "", "only traces of this kind (seat or grid)")
	listCmd.Flags().StringVar(&filter.Name, "match", "", "only traces whose name contains this")
	listCmd.Flags().IntVar(&filter.MinSteps, "min-steps", 0, "only traces with at least this many steps")
	listCmd.Flags().IntVar(&filter.MinAgents, "min-agents", 0, "only traces with at least this many agents")
	listCmd.Flags().IntVarP(&filter.Limit, "limit", "n", 0, "show at most this many traces")
	listCmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the catalog from the library directories first")

	removeCmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "remove a trace from the library",
		Args:  cobra.ExactArgs(1),
		RunE:  removeTrace,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(validateCmd, renderCmd, svgCmd, gifCmd, statsCmd, viewCmd, guiCmd, serveCmd, importCmd, listCmd, removeCmd, presetsCmd)
	return rootCmd
}
