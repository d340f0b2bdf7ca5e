package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/navtrace/internal/config"
	"github.com/san-kum/navtrace/internal/trace"
)

func importTrace(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	tr, err := trace.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	printWarnings(tr)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Init(); err != nil {
		return err
	}

	traceName := name
	if traceName == "" {
		traceName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	id, err := st.Save(traceName, raw, tr)
	if err != nil {
		return err
	}
	fmt.Printf("imported %s (%s, %d steps, %d agents)\n", traceName, tr.Kind(), tr.Steps(), tr.NumAgents())
	fmt.Printf("trace id: %s\n", id)
	return nil
}

func listTraces(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Init(); err != nil {
		return err
	}
	if reindex {
		if err := st.Reindex(); err != nil {
			return err
		}
	}
	traces, err := st.Find(filter)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Println("no traces found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tSTEPS\tAGENTS\tWARNINGS\tIMPORTED")
	for _, t := range traces {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			t.ID,
			t.Name,
			t.Kind,
			t.Steps,
			t.Agents,
			t.Warnings,
			t.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func removeTrace(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", args[0])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := config.Kinds()
	if len(args) > 0 {
		kinds = args
	}
	for _, kind := range kinds {
		presets := config.ListPresets(kind)
		if len(presets) == 0 {
			fmt.Printf("no presets for kind: %s\n", kind)
			continue
		}
		fmt.Printf("presets for %s:\n", kind)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
