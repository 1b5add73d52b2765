package engine

import (
	"context"
	"time"

	"github.com/hailam/balarama/internal/board"
)

// pvTable stores the principal variation, triangular by ply.
type pvTable struct {
	length []int
	moves  [][]board.Move
}

func newPVTable(maxPly int) pvTable {
	t := pvTable{
		length: make([]int, maxPly+1),
		moves:  make([][]board.Move, maxPly+1),
	}
	for i := range t.moves {
		t.moves[i] = make([]board.Move, maxPly+1)
	}
	return t
}

func (t *pvTable) clear(ply int) {
	t.length[ply] = ply
}

// update makes m followed by the child's line the variation at ply.
func (t *pvTable) update(ply int, m board.Move) {
	t.moves[ply][ply] = m
	end := t.length[ply+1]
	copy(t.moves[ply][ply+1:end], t.moves[ply+1][ply+1:end])
	t.length[ply] = end
}

func (t *pvTable) line() []board.Move {
	return append([]board.Move(nil), t.moves[0][:t.length[0]]...)
}

// Searcher runs one fixed-depth search on its own copy of a position.
type Searcher struct {
	ctx            context.Context
	pos            board.Position
	depth          int
	qdepth         int
	mobilityWeight int

	lists []board.MoveList
	pv    pvTable

	nodes       uint64
	moveGenTime time.Duration
	evalTime    time.Duration
}

// NewSearcher prepares a search of pos to depth plies with the given
// settings. The search runs on a detached copy of pos, so the length of the
// game behind it does not count against the move history.
func NewSearcher(ctx context.Context, pos board.Position, depth int, cfg Config) *Searcher {
	maxPly := depth + cfg.QuiescenceDepth + 1
	return &Searcher{
		ctx:            ctx,
		pos:            pos.Detached(),
		depth:          depth,
		qdepth:         cfg.QuiescenceDepth,
		mobilityWeight: cfg.MobilityWeight,
		lists:          make([]board.MoveList, maxPly+1),
		pv:             newPVTable(maxPly),
	}
}

// Run searches and returns the score in centipawns with the best root move,
// NoMove if the root has no legal move.
func (s *Searcher) Run() (int, board.Move, error) {
	score, err := s.alphaBeta(0, s.depth, -Infinite-1, Infinite+1)
	if err != nil {
		return 0, board.NoMove, err
	}
	best := board.NoMove
	if s.pv.length[0] > 0 {
		best = s.pv.moves[0][0]
	}
	return score, best, nil
}

// PV returns the principal variation of the last Run.
func (s *Searcher) PV() []board.Move {
	return s.pv.line()
}

// Nodes returns the number of nodes visited.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

func (s *Searcher) stopped() error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return nil
	}
}

func (s *Searcher) generate(ply int) (*board.MoveList, error) {
	start := time.Now()
	ml := &s.lists[ply]
	err := s.pos.GenerateLegalMovesInto(ml)
	s.moveGenTime += time.Since(start)
	return ml, err
}

func (s *Searcher) evaluate(moves int) (int, error) {
	start := time.Now()
	score, err := evaluate(&s.pos, moves, s.mobilityWeight)
	s.evalTime += time.Since(start)
	return score, err
}

// child makes m, scores the resulting position and takes m back.
func (s *Searcher) child(m board.Move, fn func() (int, error)) (int, error) {
	if err := s.pos.MakeMove(m); err != nil {
		return 0, err
	}
	score, err := fn()
	if uerr := s.pos.UndoMove(); err == nil {
		err = uerr
	}
	return score, err
}

// alphaBeta is a fail-soft minimax search: White maximises, Black
// minimises. Among equal scores the later move wins, so after accepting a
// move the window is kept open to a tie with it.
func (s *Searcher) alphaBeta(ply, depth, alpha, beta int) (int, error) {
	if depth <= 0 {
		return s.quiesce(ply, s.qdepth, alpha, beta)
	}
	if err := s.stopped(); err != nil {
		return 0, err
	}
	s.nodes++
	s.pv.clear(ply)

	ml, err := s.generate(ply)
	if err != nil {
		return 0, err
	}
	if ml.Len() == 0 {
		return s.evaluate(0)
	}
	orderMoves(ml)

	if s.pos.SideToMove == board.White {
		best := -Infinite
		for _, m := range ml.Slice() {
			v, err := s.child(m, func() (int, error) {
				return s.alphaBeta(ply+1, depth-1, alpha, beta)
			})
			if err != nil {
				return 0, err
			}
			if v >= best {
				best = v
				s.pv.update(ply, m)
				if best >= beta {
					break
				}
				alpha = max(alpha, best-1)
			}
		}
		return best, nil
	}

	best := Infinite
	for _, m := range ml.Slice() {
		v, err := s.child(m, func() (int, error) {
			return s.alphaBeta(ply+1, depth-1, alpha, beta)
		})
		if err != nil {
			return 0, err
		}
		if v <= best {
			best = v
			s.pv.update(ply, m)
			if best <= alpha {
				break
			}
			beta = min(beta, best+1)
		}
	}
	return best, nil
}

// quiesce resolves captures until the position is quiet or qdepth runs out.
// The side to move may stand pat on the static score unless it is in check,
// in which case every legal move is searched.
func (s *Searcher) quiesce(ply, qdepth, alpha, beta int) (int, error) {
	if err := s.stopped(); err != nil {
		return 0, err
	}
	s.nodes++
	s.pv.clear(ply)

	ml, err := s.generate(ply)
	if err != nil {
		return 0, err
	}
	if ml.Len() == 0 || qdepth == 0 {
		return s.evaluate(ml.Len())
	}

	inCheck := s.pos.InCheck()
	maximizing := s.pos.SideToMove == board.White

	best := Infinite
	if maximizing {
		best = -Infinite
	}
	if !inCheck {
		stand, err := s.evaluate(ml.Len())
		if err != nil {
			return 0, err
		}
		best = stand
		if maximizing {
			if best >= beta {
				return best, nil
			}
			alpha = max(alpha, best)
		} else {
			if best <= alpha {
				return best, nil
			}
			beta = min(beta, best)
		}
	}

	orderMoves(ml)
	for _, m := range ml.Slice() {
		if !inCheck && !m.IsCapture() {
			continue
		}
		v, err := s.child(m, func() (int, error) {
			return s.quiesce(ply+1, qdepth-1, alpha, beta)
		})
		if err != nil {
			return 0, err
		}

		if maximizing {
			if v > best {
				best = v
				s.pv.update(ply, m)
				if best >= beta {
					break
				}
				alpha = max(alpha, best)
			}
		} else if v < best {
			best = v
			s.pv.update(ply, m)
			if best <= alpha {
				break
			}
			beta = min(beta, best)
		}
	}
	return best, nil
}
