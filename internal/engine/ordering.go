package engine

import (
	"github.com/hailam/balarama/internal/board"
)

// orderMoves moves captures, en passant and capture-promotions included, to
// the front of ml. Relative order inside each group is kept.
func orderMoves(ml *board.MoveList) {
	moves := ml.Slice()

	// Insertion-style stable partition; lists are short.
	next := 0
	for i, m := range moves {
		if !m.IsCapture() {
			continue
		}
		copy(moves[next+1:i+1], moves[next:i])
		moves[next] = m
		next++
	}
}
