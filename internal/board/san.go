package board

import (
	"fmt"
	"strings"
)

const sanPieceChars = "PNBRQK"

// ToSAN converts a legal move to Standard Algebraic Notation.
func (m Move) ToSAN(pos *Position) (string, error) {
	if m == NoMove {
		return "-", nil
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return "", fmt.Errorf("%w: %s has no piece", ErrIllegalMove, from)
	}

	var sb strings.Builder
	switch m.Flag() {
	case FlagKingCastle:
		sb.WriteString("O-O")
	case FlagQueenCastle:
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()
		if pt != Pawn {
			sb.WriteByte(sanPieceChars[pt])
			disambig, err := disambiguation(pos, m, pt)
			if err != nil {
				return "", err
			}
			sb.WriteString(disambig)
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(sanPieceChars[m.Promotion()])
		}
	}

	if err := pos.MakeMove(m); err != nil {
		return "", err
	}
	status, err := pos.Status()
	inCheck := pos.InCheck()
	if uerr := pos.UndoMove(); uerr != nil {
		return "", uerr
	}
	if err != nil {
		return "", err
	}
	if status == Checkmate {
		sb.WriteByte('#')
	} else if inCheck {
		sb.WriteByte('+')
	}

	return sb.String(), nil
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type to the same square.
func disambiguation(pos *Position, m Move, pt PieceType) (string, error) {
	from, to := m.From(), m.To()
	pieces := pos.Pieces[pos.SideToMove][pt]

	var ml MoveList
	if err := pos.GenerateLegalMovesInto(&ml); err != nil {
		return "", err
	}

	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range ml.Slice() {
		of := other.From()
		if other.To() != to || of == from || !pieces.IsSet(of) {
			continue
		}
		ambiguous = true
		sameFile = sameFile || of.File() == from.File()
		sameRank = sameRank || of.Rank() == from.Rank()
	}

	switch {
	case !ambiguous:
		return "", nil
	case !sameFile:
		return string(rune('a' + from.File())), nil
	case !sameRank:
		return string(rune('1' + from.Rank())), nil
	default:
		return from.String(), nil
	}
}

// ParseSAN parses a SAN string and returns the matching legal move.
func ParseSAN(s string, pos *Position) (Move, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#")

	var ml MoveList
	if err := pos.GenerateLegalMovesInto(&ml); err != nil {
		return NoMove, err
	}

	switch s {
	case "O-O", "0-0":
		return findFlag(&ml, FlagKingCastle, s)
	case "O-O-O", "0-0-0":
		return findFlag(&ml, FlagQueenCastle, s)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 && idx+1 < len(s) {
		pt := strings.IndexByte(sanPieceChars, s[idx+1])
		if pt < int(Knight) || pt > int(Queen) {
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[idx+1])
		}
		promo = PieceType(pt)
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		i := strings.IndexByte(sanPieceChars, s[0])
		if i < 0 {
			return NoMove, fmt.Errorf("invalid piece letter: %c", s[0])
		}
		pt = PieceType(i)
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN move: %s", s)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}

	file, rank := -1, -1
	for _, c := range s[:len(s)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		}
	}

	for _, m := range ml.Slice() {
		from := m.From()
		switch {
		case m.To() != dest,
			pos.PieceAt(from).Type() != pt,
			file >= 0 && from.File() != file,
			rank >= 0 && from.Rank() != rank,
			isCapture && !m.IsCapture(),
			m.Promotion() != promo:
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

func findFlag(ml *MoveList, flag MoveFlag, s string) (Move, error) {
	for _, m := range ml.Slice() {
		if m.Flag() == flag {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}

// MovesToSAN converts a line of moves played from pos to SAN.
// pos itself is left unchanged.
func MovesToSAN(pos *Position, moves []Move) ([]string, error) {
	result := make([]string, 0, len(moves))
	p := pos.Detached()

	for _, m := range moves {
		san, err := m.ToSAN(&p)
		if err != nil {
			return result, err
		}
		result = append(result, san)
		if err := p.MakeMove(m); err != nil {
			return result, err
		}
	}

	return result, nil
}

// LastMoveSAN returns the most recent move in SAN, or "" when nothing has
// been played.
func (p *Position) LastMoveSAN() (string, error) {
	m := p.LastMove()
	if m == NoMove {
		return "", nil
	}
	prev := *p
	if err := prev.UndoMove(); err != nil {
		return "", err
	}
	return m.ToSAN(&prev)
}

// ParseMoveText reads a move written either in long algebraic form (e2e4)
// or in SAN (e4, Nf3, O-O).
func ParseMoveText(s string, pos *Position) (Move, error) {
	m, err := ParseMove(s, pos)
	if err == nil {
		return m, nil
	}
	if sm, serr := ParseSAN(s, pos); serr == nil {
		return sm, nil
	}
	return NoMove, err
}
