package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/balarama/internal/board"
)

func TestGameApplyAndUndo(t *testing.T) {
	g := NewGame()
	start := g.FEN()

	m, err := g.Apply(board.E2, board.E4, board.NoPieceType)
	if err != nil {
		t.Fatal(err)
	}
	if m.Flag() != board.FlagDoublePawnPush {
		t.Errorf("e2e4 flag = %d, want double push", m.Flag())
	}
	if g.PieceAt(board.E4) != board.WhitePawn || g.PieceAt(board.E2) != board.NoPiece {
		t.Error("pawn did not move")
	}
	if g.SideToMove() != board.Black {
		t.Error("side to move not flipped")
	}
	if snap := g.Snapshot(); snap[board.E4] != board.WhitePawn {
		t.Errorf("snapshot e4 = %v", snap[board.E4])
	}

	if err := g.Undo(); err != nil {
		t.Fatal(err)
	}
	if g.FEN() != start {
		t.Errorf("after undo FEN = %q, want %q", g.FEN(), start)
	}
	if err := g.Undo(); !errors.Is(err, board.ErrNoHistory) {
		t.Errorf("undo at start = %v, want ErrNoHistory", err)
	}
}

func TestGameRejectsIllegal(t *testing.T) {
	g := NewGame()
	if _, err := g.Apply(board.E2, board.E5, board.NoPieceType); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("e2e5 = %v, want ErrIllegalMove", err)
	}
	if err := g.ApplyMove(board.NewMove(board.E7, board.E5, board.FlagDoublePawnPush)); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("black move with white to play = %v, want ErrIllegalMove", err)
	}
	if g.FEN() != board.StartFEN {
		t.Error("rejected move changed the position")
	}
}

func TestGamePromotion(t *testing.T) {
	g, err := NewGameFromFEN("4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	m, err := g.Apply(board.B7, board.B8, board.NoPieceType)
	if err != nil {
		t.Fatal(err)
	}
	if m.Promotion() != board.Queen || g.PieceAt(board.B8) != board.WhiteQueen {
		t.Errorf("default promotion = %s", m)
	}
	if err := g.Undo(); err != nil {
		t.Fatal(err)
	}

	if _, err := g.Apply(board.B7, board.B8, board.Knight); err != nil {
		t.Fatal(err)
	}
	if g.PieceAt(board.B8) != board.WhiteKnight {
		t.Errorf("b8 = %v, want white knight", g.PieceAt(board.B8))
	}
}

func TestGameStatus(t *testing.T) {
	g := NewGame()
	for _, mv := range [][2]board.Square{{board.F2, board.F3}, {board.E7, board.E5}, {board.G2, board.G4}, {board.D8, board.H4}} {
		status, err := g.Status()
		if err != nil {
			t.Fatal(err)
		}
		if status != board.Ongoing {
			t.Fatalf("status before %s%s = %s", mv[0], mv[1], status)
		}
		if _, err := g.Apply(mv[0], mv[1], board.NoPieceType); err != nil {
			t.Fatal(err)
		}
	}

	status, err := g.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status != board.Checkmate {
		t.Errorf("status = %s, want checkmate", status)
	}
	moves, err := g.LegalMoves()
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 0 {
		t.Errorf("%d legal moves after mate", len(moves))
	}
}

func TestGameSearchDoesNotAlias(t *testing.T) {
	g := NewGame()
	before := g.FEN()

	res, err := NewEngine(testConfig()).Search(context.Background(), g.Position(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.FEN() != before {
		t.Error("search changed the game")
	}
	if err := g.ApplyMove(res.BestMove); err != nil {
		t.Errorf("best move %s: %v", res.BestMove, err)
	}
}

func TestNewGameFromFENError(t *testing.T) {
	if _, err := NewGameFromFEN("not a fen"); err == nil {
		t.Error("expected error")
	}
}
