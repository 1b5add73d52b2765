package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/balarama/internal/board"
)

// PerftResult is a parallel perft total with the count under each root move.
type PerftResult struct {
	Stats  board.PerftStats
	Divide []board.DivideEntry
}

// ParallelPerft splits the root moves of pos across at most workers
// goroutines, each walking its own copy of the position. workers < 1 uses
// GOMAXPROCS. Cancelling ctx abandons moves not yet started.
func ParallelPerft(ctx context.Context, pos board.Position, depth, workers int) (PerftResult, error) {
	if depth < 1 {
		return PerftResult{Stats: board.PerftStats{Nodes: 1}}, nil
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	pos = pos.Detached()
	moves, err := pos.GenerateLegalMoves()
	if err != nil {
		return PerftResult{}, err
	}

	root := moves.Slice()
	subtotals := make([]board.PerftStats, len(root))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, m := range root {
		if gctx.Err() != nil {
			break
		}
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			child := pos
			stats, err := child.PerftStatsAfter(m, depth)
			if err != nil {
				return err
			}
			subtotals[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PerftResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return PerftResult{}, err
	}

	var res PerftResult
	res.Divide = make([]board.DivideEntry, len(root))
	for i, m := range root {
		res.Stats.Add(subtotals[i])
		res.Divide[i] = board.DivideEntry{Move: m, Nodes: subtotals[i].Nodes}
	}
	return res, nil
}
