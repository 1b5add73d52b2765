package engine

import (
	"fmt"

	"github.com/hailam/balarama/internal/board"
)

// Game is a single game for a host that talks in squares: it applies moves
// by from/to pair, takes them back and reports the board.
type Game struct {
	pos board.Position
}

// NewGame returns a game at the initial position.
func NewGame() *Game {
	return &Game{pos: *board.NewPosition()}
}

// NewGameFromFEN returns a game starting at fen.
func NewGameFromFEN(fen string) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{pos: *pos}, nil
}

// Position returns a copy of the current position.
func (g *Game) Position() board.Position {
	return g.pos
}

// LegalMoves returns the legal moves of the side to move.
func (g *Game) LegalMoves() ([]board.Move, error) {
	ml, err := g.pos.GenerateLegalMoves()
	if err != nil {
		return nil, err
	}
	return append([]board.Move(nil), ml.Slice()...), nil
}

// Apply plays the legal move from -> to. promo names the promotion piece and
// is ignored for other moves; NoPieceType promotes to a queen.
func (g *Game) Apply(from, to board.Square, promo board.PieceType) (board.Move, error) {
	p := g.pos.PieceAt(from)
	if p != board.NoPiece && p.Type() == board.Pawn && (to.Rank() == 7 || to.Rank() == 0) {
		if promo == board.NoPieceType {
			promo = board.Queen
		}
	} else {
		promo = board.NoPieceType
	}

	m, err := g.pos.FindMove(from, to, promo)
	if err != nil {
		return board.NoMove, fmt.Errorf("move %s%s: %w", from, to, err)
	}
	if err := g.pos.MakeMove(m); err != nil {
		return board.NoMove, err
	}
	return m, nil
}

// ApplyMove plays m if it is legal.
func (g *Game) ApplyMove(m board.Move) error {
	legal, err := g.pos.GenerateLegalMoves()
	if err != nil {
		return err
	}
	if !legal.Contains(m) {
		return fmt.Errorf("move %s: %w", m, board.ErrIllegalMove)
	}
	return g.pos.MakeMove(m)
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	return g.pos.UndoMove()
}

// PieceAt returns the piece on sq, or NoPiece.
func (g *Game) PieceAt(sq board.Square) board.Piece {
	return g.pos.PieceAt(sq)
}

// Snapshot returns the board in a1..h8 order.
func (g *Game) Snapshot() [64]board.Piece {
	return g.pos.Snapshot()
}

// FEN returns the current position in FEN.
func (g *Game) FEN() string {
	return g.pos.ToFEN()
}

// Status reports whether the game is still going.
func (g *Game) Status() (board.Status, error) {
	return g.pos.Status()
}

// SideToMove returns the color to move.
func (g *Game) SideToMove() board.Color {
	return g.pos.SideToMove
}
