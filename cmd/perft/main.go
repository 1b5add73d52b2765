// Command perft counts move-tree leaves in parallel and checks them against
// recorded baselines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/board"
	"github.com/hailam/balarama/internal/engine"
	"github.com/hailam/balarama/internal/logging"
	"github.com/hailam/balarama/internal/storage"
)

var (
	fen      = flag.String("fen", board.StartFEN, "position to walk")
	depth    = flag.Int("depth", 5, "depth in plies")
	workers  = flag.Int("workers", 0, "goroutines (0 = GOMAXPROCS)")
	divide   = flag.Bool("divide", false, "print the count under each root move")
	record   = flag.Bool("record", false, "store the result as the baseline")
	compare  = flag.Bool("compare", false, "fail if the result differs from the stored baseline")
	list     = flag.Bool("list", false, "list stored baselines and exit")
	dbDir    = flag.String("db", "", "baseline database directory (default: platform data dir)")
	logLevel = flag.String("log-level", "info", "log level")
)

// errMismatch reports a result that differs from its baseline.
var errMismatch = errors.New("perft differs from baseline")

func main() {
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, os.Stdout, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("perft failed")
		os.Exit(1)
	}
}

// run carries out the requested walk; the baseline database is closed
// before it returns.
func run(ctx context.Context, out io.Writer, log zerolog.Logger) error {
	var store *storage.Storage
	if *record || *compare || *list {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir, log)
		} else {
			store, err = storage.NewStorage(log)
		}
		if err != nil {
			return fmt.Errorf("open baselines: %w", err)
		}
		defer store.Close()
	}

	if *list {
		baselines, err := store.Baselines()
		if err != nil {
			return fmt.Errorf("list baselines: %w", err)
		}
		for _, b := range baselines {
			fmt.Fprintf(out, "depth %d  nodes %-12d %s  (%s)\n", b.Depth, b.Stats.Nodes, b.FEN, b.RecordedAt.Format(time.DateTime))
		}
		return nil
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := engine.ParallelPerft(ctx, *pos, *depth, *workers)
	if err != nil {
		return fmt.Errorf("perft: %w", err)
	}
	elapsed := time.Since(start)

	if *divide {
		for _, e := range res.Divide {
			fmt.Fprintf(out, "%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Fprintln(out)
	}

	s := res.Stats
	fmt.Fprintf(out, "Nodes:      %d\n", s.Nodes)
	fmt.Fprintf(out, "Captures:   %d\n", s.Captures)
	fmt.Fprintf(out, "En passant: %d\n", s.EnPassant)
	fmt.Fprintf(out, "Castles:    %d\n", s.Castles)
	fmt.Fprintf(out, "Promotions: %d\n", s.Promotions)
	fmt.Fprintf(out, "Checks:     %d\n", s.Checks)
	fmt.Fprintf(out, "Checkmates: %d\n", s.Checkmates)
	fmt.Fprintf(out, "Time:       %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(out, "NPS:        %.0f\n", float64(s.Nodes)/elapsed.Seconds())
	}

	key := pos.ToFEN()
	if *compare {
		baseline, err := store.LoadBaseline(key, *depth)
		if err != nil {
			return fmt.Errorf("load baseline: %w", err)
		}
		if msg := baseline.Mismatch(s); msg != "" {
			return fmt.Errorf("%w: %s", errMismatch, msg)
		}
		log.Info().Int("depth", *depth).Uint64("nodes", s.Nodes).Msg("matches baseline")
	}

	if *record {
		if err := store.SaveBaseline(storage.PerftBaseline{FEN: key, Depth: *depth, Stats: s}); err != nil {
			return fmt.Errorf("save baseline: %w", err)
		}
		log.Info().Int("depth", *depth).Str("fen", key).Msg("baseline recorded")
	}
	return nil
}
