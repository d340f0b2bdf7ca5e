package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/navtrace/internal/config"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/storage"
	"github.com/san-kum/navtrace/internal/trace"
)

// loaded is a parsed trace together with the configuration resolved for
// its kind.
type loaded struct {
	name     string
	raw      []byte
	storedID string
	tr       *trace.Trace
	cfg      *config.Config
}

func libraryDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	cfg, err := config.Resolve("", "", configFile)
	if err != nil {
		return "", err
	}
	return cfg.DataDir, nil
}

func openStore() (*storage.Store, error) {
	dir, err := libraryDir()
	if err != nil {
		return nil, err
	}
	return storage.New(dir), nil
}

// openTrace reads arg as a file path, or as a library id when no such file
// exists.
func openTrace(arg string) (*loaded, error) {
	l := &loaded{name: strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))}

	raw, err := os.ReadFile(arg)
	switch {
	case err == nil:
		l.raw = raw
	case os.IsNotExist(err):
		st, serr := openStore()
		if serr != nil {
			return nil, serr
		}
		if !st.Has(arg) {
			return nil, fmt.Errorf("no such file or library trace: %s", arg)
		}
		meta, merr := st.Load(arg)
		if merr != nil {
			return nil, merr
		}
		if l.raw, err = st.LoadRaw(arg); err != nil {
			return nil, err
		}
		l.name, l.storedID = meta.Name, meta.ID
	default:
		return nil, err
	}

	if l.tr, err = trace.Parse(l.raw); err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}
	if l.cfg, err = config.Resolve(l.tr.Kind().String(), preset, configFile); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *loaded) renderer() *scene.Renderer {
	return scene.New(l.cfg.Scene())
}

func (l *loaded) scenes(ctx context.Context) ([]scene.Scene, error) {
	return l.renderer().BuildAllScenes(ctx, l.tr)
}

func printWarnings(tr *trace.Trace) {
	for _, w := range tr.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createOutput opens path for writing, or stdout when path is empty.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
