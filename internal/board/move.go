package board

import (
	"errors"
	"fmt"
)

// MoveFlag is the 4-bit kind of a move.
// Bit 2 marks captures, bit 3 marks promotions.
type MoveFlag uint8

const (
	FlagQuiet          MoveFlag = 0
	FlagDoublePawnPush MoveFlag = 1
	FlagKingCastle     MoveFlag = 2
	FlagQueenCastle    MoveFlag = 3
	FlagCapture        MoveFlag = 4
	FlagEnPassant      MoveFlag = 5

	FlagKnightPromotion MoveFlag = 8
	FlagBishopPromotion MoveFlag = 9
	FlagRookPromotion   MoveFlag = 10
	FlagQueenPromotion  MoveFlag = 11

	FlagKnightPromotionCapture MoveFlag = 12
	FlagBishopPromotionCapture MoveFlag = 13
	FlagRookPromotionCapture   MoveFlag = 14
	FlagQueenPromotionCapture  MoveFlag = 15
)

const (
	captureBit   MoveFlag = 4
	promotionBit MoveFlag = 8
)

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-15: MoveFlag
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove packs a move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from&0x3F) | Move(to&0x3F)<<6 | Move(flag&0xF)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> 12)
}

// IsCapture reports whether the move removes an opponent piece (en passant included).
func (m Move) IsCapture() bool {
	return m.Flag()&captureBit != 0
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Flag()&promotionBit != 0
}

// IsCastle reports whether the move is a king- or queen-side castle.
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == FlagKingCastle || f == FlagQueenCastle
}

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// Promotion returns the promoted piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

// promotionFlag returns the promotion flag for a piece type.
func promotionFlag(pt PieceType, capture bool) MoveFlag {
	f := promotionBit | MoveFlag(pt-Knight)
	if capture {
		f |= captureBit
	}
	return f
}

// String returns the move in long algebraic form (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// ParseMove resolves a long algebraic move string against the legal moves of
// the position, which supplies the flag.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}

	return pos.FindMove(from, to, promo)
}

// MaxMoves is the capacity of a MoveList.
const MaxMoves = 256

// ErrMoveListFull is returned when move generation exceeds MaxMoves.
var ErrMoveListFull = errors.New("board: move list full")

// MoveList is a fixed-size list of moves to avoid allocations.
// An Add past capacity is dropped and remembered; Err reports it.
type MoveList struct {
	moves    [MaxMoves]Move
	count    int
	overflow bool
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	if ml.count == MaxMoves {
		ml.overflow = true
		return
	}
	ml.moves[ml.count] = m
	ml.count++
}

// Err returns ErrMoveListFull if any Add overflowed.
func (ml *MoveList) Err() error {
	if ml.overflow {
		return ErrMoveListFull
	}
	return nil
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
	ml.overflow = false
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
