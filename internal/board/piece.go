package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is the kind of a piece regardless of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece is a concrete (PieceType, Color) identity.
// Values are only produced by NewPiece and the named constants below;
// callers read the halves back through Type and Color.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

var pieceTable = [2][6]Piece{
	{WhitePawn, WhiteKnight, WhiteBishop, WhiteRook, WhiteQueen, WhiteKing},
	{BlackPawn, BlackKnight, BlackBishop, BlackRook, BlackQueen, BlackKing},
}

var pieceTypes = [13]PieceType{
	Pawn, Knight, Bishop, Rook, Queen, King,
	Pawn, Knight, Bishop, Rook, Queen, King,
	NoPieceType,
}

var pieceColors = [13]Color{
	White, White, White, White, White, White,
	Black, Black, Black, Black, Black, Black,
	NoColor,
}

// NewPiece creates a Piece from PieceType and Color.
// Out-of-range inputs yield NoPiece.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return pieceTable[c][pt]
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if p > NoPiece {
		return NoPieceType
	}
	return pieceTypes[p]
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p > NoPiece {
		return NoColor
	}
	return pieceColors[p]
}

const pieceChars = "PNBRQKpnbrqk"

// String returns the FEN character for the piece, or "." for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return pieceChars[p : p+1]
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(pieceChars); i++ {
		if pieceChars[i] == c {
			return Piece(i)
		}
	}
	return NoPiece
}
