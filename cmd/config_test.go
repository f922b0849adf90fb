package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audio-segment-downloader/infrastructure/config"
)

func TestRunConfigShowWithDependencies(t *testing.T) {
	c := config.Default()
	c.Server.Addr = "127.0.0.1:7000"
	var out bytes.Buffer

	if err := RunConfigShowWithDependencies(c, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"work_directory: temp", "addr: 127.0.0.1:7000", "max_concurrent: 4", "keep_outputs: true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunConfigShowWithDependencies_NilUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	if err := RunConfigShowWithDependencies(nil, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "addr: 0.0.0.0:5001") {
		t.Errorf("output = %s", out.String())
	}
}

func TestRunConfigPathWithDependencies(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "config.yaml")
	var out bytes.Buffer

	if err := RunConfigPathWithDependencies(missing, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != missing+" (not found, using defaults)\n" {
		t.Errorf("output = %q", out.String())
	}

	if err := os.WriteFile(missing, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := RunConfigPathWithDependencies(missing, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != missing+"\n" {
		t.Errorf("output = %q", out.String())
	}
}
