package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/reportcard/config"
)

const request = `
student:
  name: Sara
evaluations:
  academic:
    Maths:
      Addition: 2
      Subtraction: 0
action_plan:
  - item: Subtraction
    action: Daily drills
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		outputPath, textPath, configPath = "", "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeRequest(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(request), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	in := writeRequest(t, dir, "sara.yaml")

	out, err := execute(t, "render", in, "--text", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	pdf, err := os.ReadFile(filepath.Join(dir, "sara.pdf"))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	if !strings.Contains(out, "- Subtraction: Daily drills") {
		t.Fatalf("text report missing action plan:\n%s", out)
	}
}

func TestRenderBadRequestWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(in, []byte("evaluations:\n  academic:\n    Maths:\n      Add: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "render", in); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.pdf")); !os.IsNotExist(err) {
		t.Fatalf("pdf written for a bad request")
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	var inputs []string
	for _, name := range []string{"a.yaml", "b.yml", "c.json"} {
		inputs = append(inputs, writeRequest(t, dir, name))
	}
	if _, err := execute(t, append([]string{"batch", "-o", outDir, "-j", "2"}, inputs...)...); err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc.yaml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Tables) != 2 {
		t.Fatalf("tables got %d want 2", len(cfg.Tables))
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "reportcard dev\n" {
		t.Fatalf("version got %q", out)
	}
}
