package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/storage"
)

func defaultOptions(dir string) options {
	return options{dbDir: dir, qdepth: -1, mobility: -1, logLevel: "error"}
}

func loadSettings(t *testing.T, dir string) *storage.Settings {
	t.Helper()
	store, err := storage.Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen settings: %v", err)
	}
	defer store.Close()
	s, err := store.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSetOptionKeepsOverridesOutOfStore(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(dir)
	opts.depth = 9
	opts.qdepth = 1

	var out bytes.Buffer
	script := "setoption name MobilityWeight value 20\nquit\n"
	if err := run(context.Background(), opts, strings.NewReader(script), &out, zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := loadSettings(t, dir)
	want := storage.DefaultSettings()
	want.MobilityWeight = 20
	if *got != *want {
		t.Errorf("stored settings = %+v, want %+v", *got, *want)
	}
}

func TestSetOptionSavesOverriddenField(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(dir)
	opts.depth = 9

	script := "setoption name Depth value 3\nsetoption name QuiescenceDepth value 4\nquit\n"
	if err := run(context.Background(), opts, strings.NewReader(script), &bytes.Buffer{}, zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := loadSettings(t, dir)
	if got.Depth != 3 || got.QuiescenceDepth != 4 || got.MobilityWeight != 10 || got.LogLevel != "info" {
		t.Errorf("stored settings = %+v", *got)
	}
}

func TestRunClosesStoreOnError(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(dir)
	opts.logLevel = "loud"

	if err := run(context.Background(), opts, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop()); err == nil {
		t.Fatal("run accepted an unknown log level")
	}
	// The database directory is locked while open.
	loadSettings(t, dir)
}

func TestRunFlushesCPUProfile(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(filepath.Join(dir, "db"))
	opts.cpuprofile = filepath.Join(dir, "cpu.prof")

	if err := run(context.Background(), opts, strings.NewReader("isready\n"), &bytes.Buffer{}, zerolog.Nop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	info, err := os.Stat(opts.cpuprofile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("CPU profile is empty")
	}
}
