package board

import "sync"

// Direction indexes the eight ray tables.
type Direction int

const (
	North Direction = iota
	East
	NorthEast
	NorthWest
	South
	West
	SouthEast
	SouthWest
)

// Positive directions walk toward higher square indices; the nearest blocker
// on such a ray is its lowest set bit.
func (d Direction) positive() bool {
	return d <= NorthWest
}

var (
	rookDirections   = [4]Direction{North, East, South, West}
	bishopDirections = [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest}
)

// AttackTables holds every square-indexed move and attack pattern.
// It is read-only once Build returns.
type AttackTables struct {
	PawnPush       [2][64]Bitboard
	PawnDoublePush [2][64]Bitboard
	PawnAttacks    [2][64]Bitboard
	Knight         [64]Bitboard
	King           [64]Bitboard
	Rays           [64][8]Bitboard

	RookMask   [64]Bitboard
	BishopMask [64]Bitboard

	rookMagics   [64]Magic
	bishopMagics [64]Magic
	rookTable    []Bitboard
	bishopTable  []Bitboard
}

var (
	tablesOnce sync.Once
	tables     *AttackTables
)

// Tables returns the process-wide attack tables, building them on first use.
func Tables() *AttackTables {
	tablesOnce.Do(func() {
		tables = Build()
	})
	return tables
}

// Build computes a complete set of attack tables.
func Build() *AttackTables {
	t := &AttackTables{}
	t.initLeapers()
	t.initPawns()
	t.initRays()
	t.initMasks()
	t.initSliders()
	return t
}

func (t *AttackTables) initLeapers() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		var n Bitboard
		n |= (bb << 17) & NotFileA
		n |= (bb << 15) & NotFileH
		n |= (bb >> 17) & NotFileH
		n |= (bb >> 15) & NotFileA
		n |= (bb << 10) & NotFileAB
		n |= (bb << 6) & NotFileGH
		n |= (bb >> 10) & NotFileGH
		n |= (bb >> 6) & NotFileAB
		t.Knight[sq] = n

		t.King[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()
	}
}

func (t *AttackTables) initPawns() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		t.PawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		t.PawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		// No pawn ever stands on its own back rank.
		if bb&Rank1 == 0 {
			t.PawnPush[Black][sq] = bb.South()
		}
		if bb&Rank8 == 0 {
			t.PawnPush[White][sq] = bb.North()
		}

		if bb&Rank2 != 0 {
			t.PawnDoublePush[White][sq] = bb.North().North()
		}
		if bb&Rank7 != 0 {
			t.PawnDoublePush[Black][sq] = bb.South().South()
		}
	}
}

func step(b Bitboard, d Direction) Bitboard {
	switch d {
	case North:
		return b.North()
	case East:
		return b.East()
	case NorthEast:
		return b.NorthEast()
	case NorthWest:
		return b.NorthWest()
	case South:
		return b.South()
	case West:
		return b.West()
	case SouthEast:
		return b.SouthEast()
	default:
		return b.SouthWest()
	}
}

func (t *AttackTables) initRays() {
	for sq := A1; sq <= H8; sq++ {
		for d := North; d <= SouthWest; d++ {
			var ray Bitboard
			for b := step(SquareBB(sq), d); b != 0; b = step(b, d) {
				ray |= b
			}
			t.Rays[sq][d] = ray
		}
	}
}

// edge returns the last square of a non-empty ray.
func edge(ray Bitboard, d Direction) Bitboard {
	if d.positive() {
		return SquareBB(ray.MSB())
	}
	return SquareBB(ray.LSB())
}

func (t *AttackTables) initMasks() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range rookDirections {
			if ray := t.Rays[sq][d]; ray != 0 {
				t.RookMask[sq] |= ray &^ edge(ray, d)
			}
		}
		for _, d := range bishopDirections {
			if ray := t.Rays[sq][d]; ray != 0 {
				t.BishopMask[sq] |= ray &^ edge(ray, d)
			}
		}
	}
}

// slide computes the reachable squares from sq along dirs for the given
// blockers: the full rays minus everything past the nearest blocker on each.
func (t *AttackTables) slide(sq Square, blockers Bitboard, dirs [4]Direction) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		attacks |= t.Rays[sq][d]
	}
	for _, d := range dirs {
		hit := t.Rays[sq][d] & blockers
		if hit == 0 {
			continue
		}
		var nearest Square
		if d.positive() {
			nearest = hit.LSB()
		} else {
			nearest = hit.MSB()
		}
		attacks ^= t.Rays[nearest][d]
	}
	return attacks
}

// Rook returns the rook attacks from sq for the given occupancy.
func (t *AttackTables) Rook(sq Square, occupied Bitboard) Bitboard {
	m := &t.rookMagics[sq]
	return t.rookTable[m.index(occupied)]
}

// Bishop returns the bishop attacks from sq for the given occupancy.
func (t *AttackTables) Bishop(sq Square, occupied Bitboard) Bitboard {
	m := &t.bishopMagics[sq]
	return t.bishopTable[m.index(occupied)]
}

// Queen returns the union of rook and bishop attacks.
func (t *AttackTables) Queen(sq Square, occupied Bitboard) Bitboard {
	return t.Rook(sq, occupied) | t.Bishop(sq, occupied)
}

// Attacks returns the squares a piece of type pt and color c on sq attacks.
// Pawn pushes are not attacks and are excluded.
func (t *AttackTables) Attacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return t.PawnAttacks[c][sq]
	case Knight:
		return t.Knight[sq]
	case Bishop:
		return t.Bishop(sq, occupied)
	case Rook:
		return t.Rook(sq, occupied)
	case Queen:
		return t.Queen(sq, occupied)
	case King:
		return t.King[sq]
	}
	return 0
}

// AttackersOf returns the pieces of the side opposing defender that attack sq.
func (p *Position) AttackersOf(sq Square, defender Color) Bitboard {
	t := Tables()
	them := defender.Other()
	occ := p.AllOccupied
	queens := p.Pieces[them][Queen]

	return (t.PawnAttacks[defender][sq] & p.Pieces[them][Pawn]) |
		(t.Knight[sq] & p.Pieces[them][Knight]) |
		(t.King[sq] & p.Pieces[them][King]) |
		(t.Bishop(sq, occ) & (p.Pieces[them][Bishop] | queens)) |
		(t.Rook(sq, occ) & (p.Pieces[them][Rook] | queens))
}

// IsSquareAttacked returns true if sq is attacked by color by.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersOf(sq, by.Other()) != 0
}
