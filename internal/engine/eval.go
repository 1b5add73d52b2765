// Package engine implements the evaluation and alpha-beta search.
package engine

import (
	"github.com/hailam/balarama/internal/board"
)

// Infinite is the score of a checkmate, in centipawns.
const Infinite = 1_000_000

// Material values in centipawns.
const (
	PawnValue   = 100
	KnightValue = 350
	BishopValue = 350
	RookValue   = 525
	QueenValue  = 1000
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0}

// Piece-square tables, indexed a1..h8 from White's side. Black looks up the
// vertically mirrored square.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 50, 50, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	0, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingPST = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var psts = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingPST}

// material returns material plus piece-square bonuses, White minus Black.
func material(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.King; pt++ {
		pst := psts[pt]

		for bb := pos.Pieces[board.White][pt]; bb != 0; {
			sq := bb.PopLSB()
			score += pieceValues[pt] + pst[sq]
		}
		for bb := pos.Pieces[board.Black][pt]; bb != 0; {
			sq := bb.PopLSB()
			score -= pieceValues[pt] + pst[sq.Mirror()]
		}
	}
	return score
}

// terminalScore scores a side to move with no legal moves.
func terminalScore(pos *board.Position) int {
	if !pos.InCheck() {
		return 0
	}
	if pos.SideToMove == board.White {
		return -Infinite
	}
	return Infinite
}

// evaluate returns the static score in centipawns. moves is the number of
// legal moves of the side to move.
func evaluate(pos *board.Position, moves, mobilityWeight int) (int, error) {
	if moves == 0 {
		return terminalScore(pos), nil
	}

	other, err := pos.CountLegalMovesFor(pos.SideToMove.Other())
	if err != nil {
		return 0, err
	}
	mobility := moves - other
	if pos.SideToMove == board.Black {
		mobility = -mobility
	}

	return mobilityWeight*mobility + material(pos), nil
}

// Evaluate returns the static evaluation of pos in pawns. Positive scores
// favour White; a checkmate scores ±Infinite/100 and a stalemate 0.
func Evaluate(pos *board.Position, mobilityWeight int) (float64, error) {
	moves, err := pos.CountLegalMoves()
	if err != nil {
		return 0, err
	}
	cp, err := evaluate(pos, moves, mobilityWeight)
	if err != nil {
		return 0, err
	}
	return Pawns(cp), nil
}

// Pawns converts centipawns to pawns.
func Pawns(cp int) float64 {
	return float64(cp) / 100
}
