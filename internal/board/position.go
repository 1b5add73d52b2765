package board

import (
	"errors"
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// MaxHistory is the number of plies a Position can record for undo.
const MaxHistory = 512

var (
	// ErrHistoryFull is returned by MakeMove once MaxHistory plies are recorded.
	ErrHistoryFull = errors.New("board: ply history full")
	// ErrNoHistory is returned by UndoMove when nothing is recorded.
	ErrNoHistory = errors.New("board: no move to undo")
	// ErrIllegalMove is returned when a move is not legal in the position.
	ErrIllegalMove = errors.New("board: illegal move")
)

// historyEntry is everything MakeMove destroys.
type historyEntry struct {
	move          Move
	moved         Piece
	captured      Piece
	capturedSq    Square
	castling      CastlingRights
	enPassant     Square
	halfMoveClock int
}

// Position represents a complete chess position.
// A Position is a plain value: assigning it copies the whole state, history included.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	// board mirrors Pieces square by square.
	board [64]Piece

	history [MaxHistory]historyEntry
	ply     int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.board[sq]
}

// Snapshot returns every square's piece in a1..h8 order.
func (p *Position) Snapshot() [64]Piece {
	return p.board
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// Ply returns the number of recorded moves that can be undone.
func (p *Position) Ply() int {
	return p.ply
}

// LastMove returns the most recently made move, or NoMove.
func (p *Position) LastMove() Move {
	if p.ply == 0 {
		return NoMove
	}
	return p.history[p.ply-1].move
}

// KingSquare returns the king square of color c, or NoSquare.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// toggle flips piece on the squares in bb, board cache untouched.
func (p *Position) toggle(piece Piece, bb Bitboard) {
	c, pt := piece.Color(), piece.Type()
	p.Pieces[c][pt] ^= bb
	p.Occupied[c] ^= bb
}

// setPiece places a piece on an empty square.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	p.toggle(piece, SquareBB(sq))
	p.board[sq] = piece
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
}

// updateOccupied recalculates occupancy bitboards from piece bitboards.
func (p *Position) updateOccupied() {
	p.Occupied[White] = Empty
	p.Occupied[Black] = Empty

	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}

	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", p.ToFEN())
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	return sb.String()
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
}

// Validate checks the structural invariants of the position: one king per
// side, no pawns on the back ranks, disjoint piece boards, occupancy equal to
// the union of piece boards, and a board cache that agrees with the bitboards.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	var seen Bitboard
	var occ [2]Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			if seen&bb != 0 {
				return fmt.Errorf("overlapping piece boards at %s", (seen & bb).LSB())
			}
			seen |= bb
			occ[c] |= bb
		}
	}
	if occ != p.Occupied || occ[White]|occ[Black] != p.AllOccupied {
		return fmt.Errorf("occupancy out of sync with piece boards")
	}

	for sq := A1; sq <= H8; sq++ {
		want := NoPiece
		for c := White; c <= Black && want == NoPiece; c++ {
			for pt := Pawn; pt <= King; pt++ {
				if p.Pieces[c][pt].IsSet(sq) {
					want = NewPiece(pt, c)
					break
				}
			}
		}
		if p.board[sq] != want {
			return fmt.Errorf("board cache at %s holds %s, bitboards hold %s", sq, p.board[sq], want)
		}
	}

	if err := p.validateEnPassant(); err != nil {
		return err
	}

	if p.IsSquareAttacked(p.KingSquare(p.SideToMove.Other()), p.SideToMove) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

// validateEnPassant checks that the en passant target is a square the last
// mover's pawn has just passed over with a double push.
func (p *Position) validateEnPassant() error {
	sq := p.EnPassant
	if sq == NoSquare {
		return nil
	}
	if !sq.IsValid() {
		return fmt.Errorf("en passant square out of range")
	}

	rank, landed, origin := 5, sq-8, sq+8
	if p.SideToMove == Black {
		rank, landed, origin = 2, sq+8, sq-8
	}
	if sq.Rank() != rank {
		return fmt.Errorf("en passant square %s on the wrong rank", sq)
	}
	if !p.IsEmpty(sq) || !p.IsEmpty(origin) {
		return fmt.Errorf("en passant square %s is not behind a double push", sq)
	}
	if p.board[landed] != NewPiece(Pawn, p.SideToMove.Other()) {
		return fmt.Errorf("en passant square %s has no pawn in front of it", sq)
	}
	return nil
}

// Detached returns a copy of p with an empty move history. The copy plays
// on from p's position but cannot take back moves made before it.
func (p *Position) Detached() Position {
	d := *p
	d.history = [MaxHistory]historyEntry{}
	d.ply = 0
	return d
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	ksq := p.KingSquare(p.SideToMove)
	if ksq == NoSquare {
		return false
	}
	return p.AttackersOf(ksq, p.SideToMove) != 0
}
