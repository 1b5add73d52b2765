// Command balarama runs the engine behind a UCI-style console on stdin/stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/engine"
	"github.com/hailam/balarama/internal/logging"
	"github.com/hailam/balarama/internal/storage"
	"github.com/hailam/balarama/internal/uci"
)

// options are the command-line settings. The engine overrides apply to this
// run only and are never written back to the settings database.
type options struct {
	dbDir        string
	depth        int
	qdepth       int
	mobility     int
	logLevel     string
	perftWorkers int
	cpuprofile   string
}

func main() {
	var opts options
	flag.StringVar(&opts.dbDir, "db", "", "settings database directory (default: platform data dir)")
	flag.IntVar(&opts.depth, "depth", 0, "search depth (overrides saved settings)")
	flag.IntVar(&opts.qdepth, "qdepth", -1, "quiescence depth (overrides saved settings)")
	flag.IntVar(&opts.mobility, "mobility", -1, "mobility weight in centipawns (overrides saved settings)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level (overrides saved settings)")
	flag.IntVar(&opts.perftWorkers, "perft-workers", 0, "goroutines for the perft command (0 = GOMAXPROCS)")
	flag.StringVar(&opts.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	if opts.cpuprofile == "" {
		opts.cpuprofile = os.Getenv("CPUPROFILE")
	}

	bootLog, _ := logging.New(os.Stderr, "info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, opts, os.Stdin, os.Stdout, bootLog)
	stop()
	if err != nil {
		bootLog.Error().Err(err).Msg("balarama stopped")
		os.Exit(1)
	}
}

// run serves the console until in is exhausted, "quit" or ctx is done.
// Everything it opens is closed before it returns.
func run(ctx context.Context, opts options, in io.Reader, out io.Writer, bootLog zerolog.Logger) error {
	store, err := openStore(opts.dbDir, bootLog)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			bootLog.Error().Err(err).Msg("close settings")
		}
	}()

	stored, err := store.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings := *stored
	opts.apply(&settings)

	log, err := logging.New(os.Stderr, settings.LogLevel)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", opts.cpuprofile).Msg("CPU profiling enabled")
	}

	cfg := engine.Config{
		Depth:           settings.Depth,
		QuiescenceDepth: settings.QuiescenceDepth,
		MobilityWeight:  settings.MobilityWeight,
		Logger:          log,
	}
	log.Info().
		Int("depth", cfg.Depth).
		Int("qdepth", cfg.QuiescenceDepth).
		Int("mobility", cfg.MobilityWeight).
		Msg("engine ready")

	saved := &savedSettings{stored: *stored, applied: cfg}
	protocol := uci.New(engine.NewEngine(cfg), out, log)
	protocol.PerftWorkers = opts.perftWorkers
	protocol.OnConfig = func(c engine.Config) {
		if err := store.SaveSettings(saved.update(c)); err != nil {
			log.Error().Err(err).Msg("save settings")
		}
	}

	if err := protocol.Run(ctx, in); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func openStore(dir string, log zerolog.Logger) (*storage.Storage, error) {
	if dir != "" {
		return storage.Open(dir, log)
	}
	return storage.NewStorage(log)
}

// apply overrides s with the settings given on the command line.
func (o options) apply(s *storage.Settings) {
	if o.depth > 0 {
		s.Depth = o.depth
	}
	if o.qdepth >= 0 {
		s.QuiescenceDepth = o.qdepth
	}
	if o.mobility >= 0 {
		s.MobilityWeight = o.mobility
	}
	if o.logLevel != "" {
		s.LogLevel = o.logLevel
	}
}

// savedSettings is the database copy of the settings, kept apart from the
// command-line overrides in effect.
type savedSettings struct {
	stored  storage.Settings
	applied engine.Config
}

// update folds the options changed since the last call into the stored
// settings and returns them for saving.
func (s *savedSettings) update(c engine.Config) *storage.Settings {
	if c.Depth != s.applied.Depth {
		s.stored.Depth = c.Depth
	}
	if c.QuiescenceDepth != s.applied.QuiescenceDepth {
		s.stored.QuiescenceDepth = c.QuiescenceDepth
	}
	if c.MobilityWeight != s.applied.MobilityWeight {
		s.stored.MobilityWeight = c.MobilityWeight
	}
	s.applied = c

	stored := s.stored
	return &stored
}
