package board

// PerftStats counts the leaves of a perft tree by kind.
type PerftStats struct {
	Nodes      uint64
	Captures   uint64
	EnPassant  uint64
	Castles    uint64
	Promotions uint64
	Checks     uint64
	Checkmates uint64
}

// Add accumulates other into s.
func (s *PerftStats) Add(other PerftStats) {
	s.Nodes += other.Nodes
	s.Captures += other.Captures
	s.EnPassant += other.EnPassant
	s.Castles += other.Castles
	s.Promotions += other.Promotions
	s.Checks += other.Checks
	s.Checkmates += other.Checkmates
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) (uint64, error) {
	if depth <= 0 {
		return 1, nil
	}

	var ml MoveList
	if err := p.GenerateLegalMovesInto(&ml); err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(ml.Len()), nil
	}

	var nodes uint64
	for _, m := range ml.Slice() {
		if err := p.MakeMove(m); err != nil {
			return 0, err
		}
		n, err := p.Perft(depth - 1)
		if err != nil {
			return 0, err
		}
		nodes += n
		if err := p.UndoMove(); err != nil {
			return 0, err
		}
	}
	return nodes, nil
}

// PerftStats walks the legal move tree to depth and classifies every leaf
// by the move that reached it.
func (p *Position) PerftStats(depth int) (PerftStats, error) {
	var stats PerftStats
	if depth <= 0 {
		stats.Nodes = 1
		return stats, nil
	}

	var ml MoveList
	if err := p.GenerateLegalMovesInto(&ml); err != nil {
		return stats, err
	}

	for _, m := range ml.Slice() {
		sub, err := p.PerftStatsAfter(m, depth)
		if err != nil {
			return stats, err
		}
		stats.Add(sub)
	}
	return stats, nil
}

// PerftStatsAfter returns the statistics of the subtree below the legal move
// m, counting m itself as the first of depth plies.
func (p *Position) PerftStatsAfter(m Move, depth int) (PerftStats, error) {
	var stats PerftStats
	if err := p.MakeMove(m); err != nil {
		return stats, err
	}

	var err error
	if depth <= 1 {
		err = p.classifyLeaf(m, &stats)
	} else {
		stats, err = p.PerftStats(depth - 1)
	}
	if uerr := p.UndoMove(); err == nil {
		err = uerr
	}
	return stats, err
}

// classifyLeaf counts the position reached by m, which has just been made.
func (p *Position) classifyLeaf(m Move, stats *PerftStats) error {
	stats.Nodes++
	if m.IsCapture() {
		stats.Captures++
	}
	if m.IsEnPassant() {
		stats.EnPassant++
	}
	if m.IsCastle() {
		stats.Castles++
	}
	if m.IsPromotion() {
		stats.Promotions++
	}
	if p.InCheck() {
		stats.Checks++
		over, err := p.GameOver()
		if err != nil {
			return err
		}
		if over {
			stats.Checkmates++
		}
	}
	return nil
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}
