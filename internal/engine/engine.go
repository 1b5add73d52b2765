package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/board"
)

// Config holds the search settings.
type Config struct {
	Depth           int // Default search depth in plies
	QuiescenceDepth int // Maximum capture plies past the horizon
	MobilityWeight  int // Centipawns per legal move of difference
	Logger          zerolog.Logger
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Depth:           5,
		QuiescenceDepth: 5,
		MobilityWeight:  10,
		Logger:          zerolog.Nop(),
	}
}

// Result is the outcome of a search.
type Result struct {
	BestMove   board.Move
	Score      float64 // Pawns, positive favours White
	Centipawns int
	Depth      int
	Nodes      uint64
	PV         []board.Move

	Elapsed     time.Duration
	MoveGenTime time.Duration
	EvalTime    time.Duration
}

// Mate reports whether the score is a forced checkmate.
func (r Result) Mate() bool {
	return r.Centipawns >= Infinite || r.Centipawns <= -Infinite
}

// Engine runs searches with a shared configuration. It is safe for
// concurrent use; each search works on its own copy of the position.
type Engine struct {
	mu  sync.Mutex
	cfg Config
}

// NewEngine creates an engine with the given settings.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the current settings.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig replaces the settings used by later searches.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

// Search finds the best move of pos to depth plies. A depth below 1 uses
// the configured depth. pos is searched as a copy.
func (e *Engine) Search(ctx context.Context, pos board.Position, depth int) (Result, error) {
	cfg := e.Config()
	if depth < 1 {
		depth = max(cfg.Depth, 1)
	}

	start := time.Now()
	s := NewSearcher(ctx, pos, depth, cfg)
	score, best, err := s.Run()
	if err != nil {
		return Result{}, fmt.Errorf("search depth %d: %w", depth, err)
	}

	res := Result{
		BestMove:    best,
		Score:       Pawns(score),
		Centipawns:  score,
		Depth:       depth,
		Nodes:       s.Nodes(),
		PV:          s.PV(),
		Elapsed:     time.Since(start),
		MoveGenTime: s.moveGenTime,
		EvalTime:    s.evalTime,
	}

	cfg.Logger.Debug().
		Int("depth", depth).
		Uint64("nodes", res.Nodes).
		Float64("score", res.Score).
		Stringer("best", res.BestMove).
		Dur("elapsed", res.Elapsed).
		Msg("search finished")

	return res, nil
}

// Evaluate returns the static evaluation of pos in pawns.
func (e *Engine) Evaluate(pos board.Position) (float64, error) {
	return Evaluate(&pos, e.Config().MobilityWeight)
}

// FormatScore renders a score for humans.
func FormatScore(r Result) string {
	if r.Centipawns >= Infinite {
		return "White mates"
	}
	if r.Centipawns <= -Infinite {
		return "Black mates"
	}
	return fmt.Sprintf("%+.2f", r.Score)
}
