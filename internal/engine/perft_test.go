package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/balarama/internal/board"
)

func TestParallelPerftMatchesSerial(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
		nodes uint64
	}{
		{board.StartFEN, 3, 8902},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
		{"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1", 1, 24},
	}

	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			serial, err := pos.PerftStats(tc.depth)
			if err != nil {
				t.Fatal(err)
			}

			for _, workers := range []int{1, 4, 0} {
				res, err := ParallelPerft(context.Background(), *pos, tc.depth, workers)
				if err != nil {
					t.Fatal(err)
				}
				if res.Stats != serial {
					t.Errorf("workers %d: stats %+v, serial %+v", workers, res.Stats, serial)
				}
				if res.Stats.Nodes != tc.nodes {
					t.Errorf("perft(%d) = %d, want %d", tc.depth, res.Stats.Nodes, tc.nodes)
				}

				var sum uint64
				for _, e := range res.Divide {
					sum += e.Nodes
				}
				if sum != tc.nodes {
					t.Errorf("divide sums to %d, want %d", sum, tc.nodes)
				}
			}
		})
	}
}

func TestParallelPerftCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParallelPerft(ctx, *board.NewPosition(), 3, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParallelPerftDepthZero(t *testing.T) {
	res, err := ParallelPerft(context.Background(), *board.NewPosition(), 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Nodes != 1 {
		t.Errorf("perft(0) = %d, want 1", res.Stats.Nodes)
	}
}
