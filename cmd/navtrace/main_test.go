package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/navtrace/internal/storage"
	"github.com/san-kum/navtrace/internal/trace"
)

const seatDoc = `{
  "seats": [
    {"x": 0, "y": 0, "agent": [1, null], "nexts": [[1, 1.0]]},
    {"x": 1, "y": 0, "agent": [null, 1], "nexts": []}
  ],
  "agents": {"1": [{"shape": [[0, 0], [0.2, 0], [0.2, 0.2]], "state": "m"}, null]}
}`

func TestOpenTrace(t *testing.T) {
	dir := t.TempDir()
	dataDir, configFile, preset = filepath.Join(dir, "lib"), "", ""
	defer func() { dataDir = "" }()

	path := filepath.Join(dir, "corridor.json")
	if err := os.WriteFile(path, []byte(seatDoc), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := openTrace(path)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	if l.name != "corridor" || l.tr.Kind() != trace.KindSeat || l.storedID != "" {
		t.Errorf("unexpected load: %s %v %q", l.name, l.tr.Kind(), l.storedID)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	id, err := st.Save("stored", l.raw, l.tr)
	if err != nil {
		t.Fatal(err)
	}
	l, err = openTrace(id)
	if err != nil {
		t.Fatalf("open library id: %v", err)
	}
	if l.name != "stored" || l.storedID != id {
		t.Errorf("library trace not resolved: %s %q", l.name, l.storedID)
	}

	if _, err := openTrace(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for a missing trace")
	}
}

func TestOpenTrace_Preset(t *testing.T) {
	dir := t.TempDir()
	dataDir, configFile = dir, ""
	defer func() { dataDir, preset = "", "" }()

	path := filepath.Join(dir, "corridor.json")
	if err := os.WriteFile(path, []byte(seatDoc), 0644); err != nil {
		t.Fatal(err)
	}

	preset = "bold"
	l, err := openTrace(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if l.cfg.Renderer.AgentOpacity != 1 {
		t.Errorf("seat preset not applied: %v", l.cfg.Renderer.AgentOpacity)
	}

	preset = "diamond"
	if _, err := openTrace(path); err == nil {
		t.Error("grid preset should not resolve for a seat trace")
	}
}

func TestRender_DefaultsToStdout(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	if err := os.Mkdir(work, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "corridor.json")
	if err := os.WriteFile(path, []byte(seatDoc), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)
	defer func() { dataDir, configFile, preset, outputPath, gifPath, format = "", "", "", "", "", "" }()

	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatal(err)
	}
	defer stdout.Close()
	saved := os.Stdout
	os.Stdout = stdout
	defer func() { os.Stdout = saved }()

	for _, args := range [][]string{
		{"render", "--format", "json", path},
		{"svg", path},
	} {
		root := newRootCmd()
		root.SetArgs(append([]string{"--data", filepath.Join(dir, "lib")}, args...))
		if err := root.Execute(); err != nil {
			t.Fatalf("%s: %v", args[0], err)
		}
	}
	os.Stdout = saved

	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("%s wrote into the working directory", e.Name())
	}

	out, err := os.ReadFile(stdout.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"frames"`) || !strings.Contains(string(out), "<svg") {
		t.Errorf("figure and svg should go to stdout, got %d bytes", len(out))
	}
}
