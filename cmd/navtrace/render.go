package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/navtrace/internal/analysis"
	"github.com/san-kum/navtrace/internal/export"
	"github.com/san-kum/navtrace/internal/gui"
	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/storage"
	"github.com/san-kum/navtrace/internal/trace"
	"github.com/san-kum/navtrace/internal/viz"
)

func validateTrace(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	tr := l.tr
	fmt.Printf("trace: %s\n", l.name)
	fmt.Printf("kind: %s\n", tr.Kind())
	fmt.Printf("steps: %d\n", tr.Steps())
	fmt.Printf("agents: %d\n", tr.NumAgents())
	if nx, ny := tr.Dims(); nx > 0 {
		fmt.Printf("grid: %dx%d\n", nx, ny)
	} else {
		fmt.Printf("seats: %d\n", len(tr.Seats()))
	}
	fmt.Printf("warnings: %d\n", len(tr.Warnings()))
	printWarnings(tr)
	return nil
}

func renderTrace(cmd *cobra.Command, args []string) error {
	switch format {
	case "html", "json", "msgpack":
	default:
		return fmt.Errorf("unknown format: %s (available: html, json, msgpack)", format)
	}

	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	printWarningsStderr(l.tr)

	start := time.Now()
	scenes, err := l.scenes(cmd.Context())
	if err != nil {
		return err
	}
	fig := plotly.Encode(scenes, l.cfg.Plotly())

	out, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	switch format {
	case "html":
		err = plotly.WriteHTML(w, fig, l.name, l.cfg.Export.PlotlyCDN)
	case "json":
		err = plotly.WriteJSON(w, fig)
	case "msgpack":
		err = plotly.WriteMsgpack(w, fig)
	}
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if outputPath != "" {
		fmt.Printf("rendered %d frames in %v\n", len(scenes), time.Since(start))
		fmt.Printf("written to %s\n", outputPath)
	}
	return nil
}

// printWarningsStderr keeps stdout clean for piped output.
func printWarningsStderr(tr *trace.Trace) {
	for _, w := range tr.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func exportSize(cmd *cobra.Command, l *loaded) (int, int) {
	w, h := l.cfg.Export.Width, l.cfg.Export.Height
	if cmd.Flags().Changed("width") {
		w = width
	}
	if cmd.Flags().Changed("height") {
		h = height
	}
	return w, h
}

func renderSVG(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	sc, err := l.renderer().BuildScene(l.tr, step)
	if err != nil {
		return err
	}
	w, h := exportSize(cmd, l)

	out, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = fmt.Fprint(out, export.SceneToSVG(sc, w, h, scene.Bounds(l.tr)))
	return err
}

func renderGIF(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	printWarnings(l.tr)

	scenes, err := l.scenes(cmd.Context())
	if err != nil {
		return err
	}
	opts := l.cfg.GIF()
	opts.Width, opts.Height = exportSize(cmd, l)

	f, err := os.Create(gifPath)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("encoding %d frames...\n", len(scenes))
	if err := export.ScenesToGIF(f, scenes, scene.Bounds(l.tr), opts); err != nil {
		return err
	}
	fmt.Printf("written to %s\n", gifPath)
	return nil
}

func traceStats(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	if statsJSON {
		return storage.ExportStats(os.Stdout, l.name, l.tr)
	}

	sum := analysis.Summarize(l.tr)
	fmt.Printf("trace: %s (%s)\n", l.name, l.tr.Kind())
	fmt.Printf("steps: %d\n", sum.Steps)
	fmt.Printf("agents: %d\n", sum.Agents)
	fmt.Printf("warnings: %d\n\n", sum.Warnings)

	plots := []struct {
		caption string
		data    []float64
	}{
		{"occupied seats/cells", analysis.OccupancySeries(l.tr)},
		{"agents present", analysis.PresenceSeries(l.tr)},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Printf("mean occupancy: %.2f\n", sum.MeanOccupancy)
	fmt.Printf("max occupancy: %.0f\n", sum.MaxOccupancy)
	fmt.Printf("mean presence: %.2f\n", sum.MeanPresence)
	if sum.Period > 0 {
		fmt.Printf("dominant period: %.1f steps\n", sum.Period)
	} else {
		fmt.Println("dominant period: none")
	}
	return nil
}

func viewTrace(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	scenes, err := l.scenes(cmd.Context())
	if err != nil {
		return err
	}

	opts := viz.PlayerOptions{
		Title:         l.name,
		Theme:         l.cfg.Viewer.Theme,
		FPS:           l.cfg.Viewer.FPS,
		Series:        analysis.OccupancySeries(l.tr),
		SeriesCaption: "occupancy",
	}
	if cmd.Flags().Changed("fps") {
		opts.FPS = frameRate
	}
	if cmd.Flags().Changed("theme") {
		opts.Theme = theme
	}

	p := tea.NewProgram(viz.NewPlayer(scenes, scene.Bounds(l.tr), opts), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}

func guiTrace(cmd *cobra.Command, args []string) error {
	l, err := openTrace(args[0])
	if err != nil {
		return err
	}
	scenes, err := l.scenes(cmd.Context())
	if err != nil {
		return err
	}
	gui.Run(l.name, scenes, scene.Bounds(l.tr), l.cfg.Animation.PlayFrameMs)
	return nil
}
