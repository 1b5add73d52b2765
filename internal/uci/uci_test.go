package uci

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/engine"
)

func run(t *testing.T, script string) string {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.QuiescenceDepth = 2

	var out bytes.Buffer
	u := New(engine.NewEngine(cfg), &out, zerolog.Nop())
	if err := u.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci\nisready\n")
	for _, want := range []string{"id name Balarama", "option name Depth type spin default 5", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPositionAndDisplay(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"startpos", "position startpos\nd\n", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"moves", "position startpos moves e2e4 e7e5 g1f3\nd\n", "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"fen", "position fen 4k3/8/8/8/8/8/4P3/4K3 w - - 0 1 moves e2e4\nd\n", "4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1"},
		{"san moves", "position startpos moves e4 e5 Nf3\nd\n", "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"last move", "position startpos moves f2f3 e7e5 g2g4 d8h4\nd\n", "Last move: Qh4#"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if out := run(t, tc.script); !strings.Contains(out, tc.want) {
				t.Errorf("output missing %q:\n%s", tc.want, out)
			}
		})
	}
}

func TestPositionErrors(t *testing.T) {
	out := run(t, "position fen 8/8/8 w - -\nposition startpos moves e2e5\nd\n")
	if !strings.Contains(out, "info string invalid position") {
		t.Errorf("bad FEN not reported:\n%s", out)
	}
	if !strings.Contains(out, "info string invalid move e2e5") {
		t.Errorf("bad move not reported:\n%s", out)
	}
	// The rejected line leaves the previous position in place.
	if !strings.Contains(out, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1") {
		t.Errorf("position changed after errors:\n%s", out)
	}
}

func TestPositionRejectsBadEnPassant(t *testing.T) {
	out := run(t, "position fen 4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1\ngo depth 1\nd\n")
	if !strings.Contains(out, "info string invalid position") {
		t.Errorf("en passant onto a knight not reported:\n%s", out)
	}
	if strings.Contains(out, "bestmove d5e6") {
		t.Errorf("search played en passant onto an occupied square:\n%s", out)
	}
	if !strings.Contains(out, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1") {
		t.Errorf("position changed after a rejected FEN:\n%s", out)
	}
}

func TestGoFindsMate(t *testing.T) {
	out := run(t, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 2\nisready\n")
	if !strings.Contains(out, "bestmove a1a8") {
		t.Errorf("expected bestmove a1a8:\n%s", out)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("expected mate score:\n%s", out)
	}
	if !strings.Contains(out, "info string pv Ra8#") {
		t.Errorf("expected SAN principal variation:\n%s", out)
	}
}

func TestGoBlackScoreFromSideToMove(t *testing.T) {
	out := run(t, "position fen 3qk3/8/8/8/3Q4/8/8/4K3 b - - 0 1\ngo depth 1\n")
	if !strings.Contains(out, "bestmove d8d4") {
		t.Errorf("expected bestmove d8d4:\n%s", out)
	}
	if strings.Contains(out, "score cp -") {
		t.Errorf("winning side reported a negative score:\n%s", out)
	}
}

func TestGoWithoutMoves(t *testing.T) {
	out := run(t, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1\ngo depth 2\n")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("expected bestmove 0000:\n%s", out)
	}
}

func TestPerft(t *testing.T) {
	out := run(t, "position startpos\nperft 2\n")
	if !strings.Contains(out, "Nodes: 400") {
		t.Errorf("expected 400 nodes:\n%s", out)
	}
	if !strings.Contains(out, "e2e4: 20") {
		t.Errorf("expected divide line for e2e4:\n%s", out)
	}
}

func TestEval(t *testing.T) {
	out := run(t, "eval\n")
	if !strings.Contains(out, "Evaluation: +0.00") {
		t.Errorf("expected even evaluation:\n%s", out)
	}
}

func TestSetOption(t *testing.T) {
	var out bytes.Buffer
	eng := engine.NewEngine(engine.DefaultConfig())
	u := New(eng, &out, zerolog.Nop())

	var saved engine.Config
	u.OnConfig = func(cfg engine.Config) { saved = cfg }

	script := "setoption name Depth value 3\nsetoption name MobilityWeight value 0\nsetoption name Hash value 16\nsetoption name Depth value x\n"
	if err := u.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}

	cfg := eng.Config()
	if cfg.Depth != 3 || cfg.MobilityWeight != 0 {
		t.Errorf("config = %+v", cfg)
	}
	if saved.Depth != 3 || saved.MobilityWeight != 0 {
		t.Errorf("OnConfig saw %+v", saved)
	}
	if !strings.Contains(out.String(), "unknown option Hash") || !strings.Contains(out.String(), "invalid value for Depth") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestQuitStopsReading(t *testing.T) {
	out := run(t, "quit\nisready\n")
	if strings.Contains(out, "readyok") {
		t.Errorf("command after quit was handled:\n%s", out)
	}
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := New(engine.NewEngine(engine.DefaultConfig()), &bytes.Buffer{}, zerolog.Nop())
	r, w := io.Pipe()
	defer w.Close()
	if err := u.Run(ctx, r); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
