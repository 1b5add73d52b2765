package board

// castle describes one castling option of one color.
type castle struct {
	right          CastlingRights
	king, kingTo   Square
	rook, rookTo   Square
	flag           MoveFlag
	empty, transit Bitboard
}

var castles = [2][2]castle{
	White: {
		{WhiteKingSideCastle, E1, G1, H1, F1, FlagKingCastle,
			SquareBB(F1) | SquareBB(G1), SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSideCastle, E1, C1, A1, D1, FlagQueenCastle,
			SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1)},
	},
	Black: {
		{BlackKingSideCastle, E8, G8, H8, F8, FlagKingCastle,
			SquareBB(F8) | SquareBB(G8), SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSideCastle, E8, C8, A8, D8, FlagQueenCastle,
			SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8)},
	},
}

// castleFor returns the castle a castling move performs.
func castleFor(c Color, flag MoveFlag) *castle {
	if flag == FlagKingCastle {
		return &castles[c][0]
	}
	return &castles[c][1]
}

// GeneratePseudoLegalMoves appends every pseudo-legal move for the side to
// move. Moves may leave the mover's king attacked, and castles are added
// whenever the right is held.
func (p *Position) GeneratePseudoLegalMoves(ml *MoveList) {
	t := Tables()
	us := p.SideToMove
	own := p.Occupied[us]
	enemies := p.Occupied[us.Other()]
	occ := p.AllOccupied

	pieces := own
	for pieces != 0 {
		from := pieces.PopLSB()
		pt := p.board[from].Type()

		if pt == Pawn {
			p.generatePawnMoves(ml, t, from)
			continue
		}

		targets := t.Attacks(pt, us, from, occ) &^ own
		addMoves(ml, from, targets&^enemies, FlagQuiet)
		addMoves(ml, from, targets&enemies, FlagCapture)
	}

	for i := range castles[us] {
		cs := &castles[us][i]
		if p.CastlingRights&cs.right == 0 {
			continue
		}
		// Rights without the pieces at home come from a malformed FEN.
		if p.board[cs.king] != NewPiece(King, us) || p.board[cs.rook] != NewPiece(Rook, us) {
			continue
		}
		ml.Add(NewMove(cs.king, cs.kingTo, cs.flag))
	}
}

func addMoves(ml *MoveList, from Square, targets Bitboard, flag MoveFlag) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopLSB(), flag))
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, t *AttackTables, from Square) {
	us := p.SideToMove
	empty := ^p.AllOccupied
	enemies := p.Occupied[us.Other()]

	lastRank := Rank8
	if us == Black {
		lastRank = Rank1
	}

	push := t.PawnPush[us][from] & empty
	if push != 0 {
		to := push.LSB()
		if push&lastRank != 0 {
			addPromotions(ml, from, to, false)
		} else {
			ml.Add(NewMove(from, to, FlagQuiet))
		}
		if double := t.PawnDoublePush[us][from] & empty; double != 0 {
			ml.Add(NewMove(from, double.LSB(), FlagDoublePawnPush))
		}
	}

	captures := t.PawnAttacks[us][from] & enemies
	for captures != 0 {
		to := captures.PopLSB()
		if SquareBB(to)&lastRank != 0 {
			addPromotions(ml, from, to, true)
		} else {
			ml.Add(NewMove(from, to, FlagCapture))
		}
	}

	if p.EnPassant != NoSquare && t.PawnAttacks[us][from].IsSet(p.EnPassant) {
		ml.Add(NewMove(from, p.EnPassant, FlagEnPassant))
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square, capture bool) {
	for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		ml.Add(NewMove(from, to, promotionFlag(pt, capture)))
	}
}

// IsLegal reports whether a pseudo-legal move keeps the mover's king safe.
// Castles are checked against the rights, emptiness and attack rules directly;
// every other move is made, tested and undone.
func (p *Position) IsLegal(m Move) (bool, error) {
	us := p.SideToMove
	them := us.Other()

	if m.IsCastle() {
		cs := castleFor(us, m.Flag())
		if !p.CastlingRights.CanCastle(us, m.Flag() == FlagKingCastle) || p.AllOccupied&cs.empty != 0 {
			return false, nil
		}
		if p.IsSquareAttacked(cs.king, them) {
			return false, nil
		}
		for transit := cs.transit; transit != 0; {
			if p.IsSquareAttacked(transit.PopLSB(), them) {
				return false, nil
			}
		}
		return true, nil
	}

	if err := p.MakeMove(m); err != nil {
		return false, err
	}
	safe := !p.IsSquareAttacked(p.KingSquare(us), them)
	if err := p.UndoMove(); err != nil {
		return false, err
	}
	return safe, nil
}

// GenerateLegalMovesInto fills ml with the legal moves of the side to move.
func (p *Position) GenerateLegalMovesInto(ml *MoveList) error {
	var pseudo MoveList
	p.GeneratePseudoLegalMoves(&pseudo)
	if err := pseudo.Err(); err != nil {
		return err
	}

	ml.Clear()
	for _, m := range pseudo.Slice() {
		legal, err := p.IsLegal(m)
		if err != nil {
			return err
		}
		if legal {
			ml.Add(m)
		}
	}
	return ml.Err()
}

// GenerateLegalMoves returns the legal moves of the side to move.
func (p *Position) GenerateLegalMoves() (*MoveList, error) {
	ml := NewMoveList()
	if err := p.GenerateLegalMovesInto(ml); err != nil {
		return nil, err
	}
	return ml, nil
}

// CountLegalMoves returns the number of legal moves of the side to move.
func (p *Position) CountLegalMoves() (int, error) {
	var ml MoveList
	if err := p.GenerateLegalMovesInto(&ml); err != nil {
		return 0, err
	}
	return ml.Len(), nil
}

// CountLegalMovesFor returns the number of legal moves c would have if it
// were to move, with no en passant target. The position is left unchanged.
func (p *Position) CountLegalMovesFor(c Color) (int, error) {
	if c == p.SideToMove {
		return p.CountLegalMoves()
	}
	side, ep := p.SideToMove, p.EnPassant
	p.SideToMove, p.EnPassant = c, NoSquare
	n, err := p.CountLegalMoves()
	p.SideToMove, p.EnPassant = side, ep
	return n, err
}

// FindMove returns the legal move from -> to with the given promotion piece
// (NoPieceType for none), or ErrIllegalMove.
func (p *Position) FindMove(from, to Square, promo PieceType) (Move, error) {
	var ml MoveList
	if err := p.GenerateLegalMovesInto(&ml); err != nil {
		return NoMove, err
	}
	for _, m := range ml.Slice() {
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return NoMove, ErrIllegalMove
}

// GameOver reports whether the side to move has no legal move.
func (p *Position) GameOver() (bool, error) {
	n, err := p.CountLegalMoves()
	return n == 0, err
}

// Status classifies a position for the side to move.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Status reports whether the game continues, or how it ended.
func (p *Position) Status() (Status, error) {
	over, err := p.GameOver()
	if err != nil || !over {
		return Ongoing, err
	}
	if p.InCheck() {
		return Checkmate, nil
	}
	return Stalemate, nil
}
