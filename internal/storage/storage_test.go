package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/board"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings(t *testing.T) {
	s := openTest(t)

	t.Run("Defaults", func(t *testing.T) {
		got, err := s.LoadSettings()
		if err != nil {
			t.Fatal(err)
		}
		if *got != *DefaultSettings() {
			t.Errorf("LoadSettings() = %+v, want defaults", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := &Settings{Depth: 3, QuiescenceDepth: 2, MobilityWeight: 4, LogLevel: "debug"}
		if err := s.SaveSettings(want); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadSettings()
		if err != nil {
			t.Fatal(err)
		}
		if *got != *want {
			t.Errorf("LoadSettings() = %+v, want %+v", got, want)
		}
	})
}

func TestBaselines(t *testing.T) {
	s := openTest(t)

	if _, err := s.LoadBaseline(board.StartFEN, 3); !errors.Is(err, ErrNoBaseline) {
		t.Fatalf("LoadBaseline on empty store = %v, want ErrNoBaseline", err)
	}

	start := PerftBaseline{FEN: board.StartFEN, Depth: 3, Stats: board.PerftStats{Nodes: 8902, Captures: 34, Checks: 12}}
	kiwi := PerftBaseline{
		FEN:   "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		Depth: 1,
		Stats: board.PerftStats{Nodes: 48, Captures: 8, Castles: 2},
	}
	for _, b := range []PerftBaseline{start, kiwi} {
		if err := s.SaveBaseline(b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.LoadBaseline(board.StartFEN, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stats != start.Stats || got.RecordedAt.IsZero() {
		t.Errorf("LoadBaseline = %+v", got)
	}
	if _, err := s.LoadBaseline(board.StartFEN, 4); !errors.Is(err, ErrNoBaseline) {
		t.Errorf("other depth = %v, want ErrNoBaseline", err)
	}

	all, err := s.Baselines()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("Baselines() returned %d entries, want 2", len(all))
	}
	// perft/1/... sorts before perft/3/...
	if all[0].FEN != kiwi.FEN || all[1].FEN != start.FEN {
		t.Errorf("Baselines() order = %s, %s", all[0].FEN, all[1].FEN)
	}

	if msg := got.Mismatch(start.Stats); msg != "" {
		t.Errorf("Mismatch on equal stats = %q", msg)
	}
	if msg := got.Mismatch(board.PerftStats{Nodes: 8901}); msg == "" {
		t.Error("Mismatch on different stats is empty")
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSettings(&Settings{Depth: 7, LogLevel: "warn"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Depth != 7 || got.LogLevel != "warn" {
		t.Errorf("reopened settings = %+v", got)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory: %v", err)
	}
}
