package board

import "fmt"

// castlingLoss[sq] is the rights lost when a move leaves from or lands on sq.
var castlingLoss = func() (loss [64]CastlingRights) {
	loss[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	loss[H1] = WhiteKingSideCastle
	loss[A1] = WhiteQueenSideCastle
	loss[E8] = BlackKingSideCastle | BlackQueenSideCastle
	loss[H8] = BlackKingSideCastle
	loss[A8] = BlackQueenSideCastle
	return loss
}()

// epCaptureSquare returns the square of the pawn an en passant capture onto to removes.
func epCaptureSquare(to Square, mover Color) Square {
	if mover == White {
		return to - 8
	}
	return to + 8
}

// MakeMove applies a pseudo-legal move and records it for UndoMove.
// It does not test king safety; see IsLegal.
func (p *Position) MakeMove(m Move) error {
	if p.ply >= MaxHistory {
		return ErrHistoryFull
	}

	from, to, flag := m.From(), m.To(), m.Flag()
	us := p.SideToMove
	them := us.Other()

	moved := p.board[from]
	if moved == NoPiece || moved.Color() != us {
		return fmt.Errorf("%w: %s has no %s piece", ErrIllegalMove, from, us)
	}

	captured, capturedSq := NoPiece, NoSquare
	if m.IsCapture() {
		capturedSq = to
		if flag == FlagEnPassant {
			capturedSq = epCaptureSquare(to, us)
		}
		captured = p.board[capturedSq]
		if captured == NoPiece || captured.Color() != them {
			return fmt.Errorf("%w: nothing to capture on %s", ErrIllegalMove, capturedSq)
		}
		if flag == FlagEnPassant && p.board[to] != NoPiece {
			return fmt.Errorf("%w: en passant onto occupied %s", ErrIllegalMove, to)
		}
	} else if p.board[to] != NoPiece {
		return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, to)
	}
	if m.IsCastle() {
		cs := castleFor(us, flag)
		if from != cs.king || p.board[cs.rook] != NewPiece(Rook, us) {
			return fmt.Errorf("%w: cannot castle from %s", ErrIllegalMove, from)
		}
	}

	p.history[p.ply] = historyEntry{
		move:          m,
		moved:         moved,
		captured:      captured,
		capturedSq:    capturedSq,
		castling:      p.CastlingRights,
		enPassant:     p.EnPassant,
		halfMoveClock: p.HalfMoveClock,
	}
	p.ply++

	if captured != NoPiece {
		p.toggle(captured, SquareBB(capturedSq))
		p.board[capturedSq] = NoPiece
	}

	p.toggle(moved, SquareBB(from)|SquareBB(to))
	p.board[from] = NoPiece
	p.board[to] = moved

	if m.IsPromotion() {
		promoted := NewPiece(m.Promotion(), us)
		p.toggle(moved, SquareBB(to))
		p.toggle(promoted, SquareBB(to))
		p.board[to] = promoted
	}

	if m.IsCastle() {
		cs := castleFor(us, flag)
		rook := p.board[cs.rook]
		p.toggle(rook, SquareBB(cs.rook)|SquareBB(cs.rookTo))
		p.board[cs.rook] = NoPiece
		p.board[cs.rookTo] = rook
	}

	p.CastlingRights &^= castlingLoss[from] | castlingLoss[to]

	p.EnPassant = NoSquare
	if flag == FlagDoublePawnPush {
		p.EnPassant = (from + to) / 2
	}

	if moved.Type() == Pawn || captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
	return nil
}

// UndoMove takes back the last move made with MakeMove.
func (p *Position) UndoMove() error {
	if p.ply == 0 {
		return ErrNoHistory
	}
	p.ply--
	e := p.history[p.ply]
	p.history[p.ply] = historyEntry{}

	from, to := e.move.From(), e.move.To()
	us := p.SideToMove.Other()

	if e.move.IsCastle() {
		cs := castleFor(us, e.move.Flag())
		rook := p.board[cs.rookTo]
		p.toggle(rook, SquareBB(cs.rook)|SquareBB(cs.rookTo))
		p.board[cs.rookTo] = NoPiece
		p.board[cs.rook] = rook
	}

	// The piece on to differs from the mover after a promotion.
	p.toggle(p.board[to], SquareBB(to))
	p.board[to] = NoPiece
	p.toggle(e.moved, SquareBB(from))
	p.board[from] = e.moved

	if e.captured != NoPiece {
		p.toggle(e.captured, SquareBB(e.capturedSq))
		p.board[e.capturedSq] = e.captured
	}

	p.CastlingRights = e.castling
	p.EnPassant = e.enPassant
	p.HalfMoveClock = e.halfMoveClock
	if us == Black {
		p.FullMoveNumber--
	}

	p.SideToMove = us
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
	return nil
}
