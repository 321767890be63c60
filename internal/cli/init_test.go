package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "conf")
	path := filepath.Join(dir, "config.yaml")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "conjure-postman configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if !strings.Contains(out.String(), "Wrote sample config to") {
		t.Fatalf("expected confirmation, got %q", out.String())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the config file, got %d entries", len(entries))
	}
}

func TestInit_SampleKeysAreAccepted(t *testing.T) {
	t.Parallel()
	// Every commented key in the sample must be a known config field.
	cfg := defaultGenerateConfig()
	var lines []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "# ") || !strings.Contains(line, ": ") {
			continue
		}
		body := strings.TrimPrefix(line, "# ")
		key := strings.SplitN(body, ":", 2)[0]
		if strings.ContainsAny(key, " .(") {
			continue
		}
		lines = append(lines, body)
	}
	if len(lines) < 10 {
		t.Fatalf("expected the sample to document every option, found %d", len(lines))
	}

	path := filepath.Join(t.TempDir(), "sample.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
	if cfg.ProductName != "Widget Store" {
		t.Fatalf("unexpected product name %q", cfg.ProductName)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "x" {
		t.Fatalf("existing file modified: %q", data)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("expected --force to overwrite: %v", err)
	}
}
