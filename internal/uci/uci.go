// Package uci implements a UCI-style text console for the engine.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/balarama/internal/board"
	"github.com/hailam/balarama/internal/engine"
)

// UCI implements the console protocol over a reader and a writer.
type UCI struct {
	engine *engine.Engine
	game   *engine.Game
	log    zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	// Search state
	searching  bool
	searchDone chan struct{}
	cancel     context.CancelFunc

	// PerftWorkers bounds the goroutines used by "perft"; 0 means GOMAXPROCS.
	PerftWorkers int

	// OnConfig is called after setoption changes the engine settings.
	OnConfig func(engine.Config)
}

// New creates a protocol handler writing responses to out.
func New(eng *engine.Engine, out io.Writer, log zerolog.Logger) *UCI {
	return &UCI{
		engine: eng,
		game:   engine.NewGame(),
		log:    log,
		out:    out,
	}
}

func (u *UCI) send(format string, args ...interface{}) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands from in until "quit", end of input or ctx is done.
// Run waits for a running search before it returns; "quit" stops it first.
func (u *UCI) Run(ctx context.Context, in io.Reader) error {
	defer u.waitSearch()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !u.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle runs one command line. It returns false on "quit".
func (u *UCI) Handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.waitSearch()
		u.send("readyok")
	case "ucinewgame":
		u.handleStop()
		u.game = engine.NewGame()
	case "position":
		u.handleStop()
		u.handlePosition(args)
	case "go":
		u.handleGo(ctx, args)
	case "stop":
		u.handleStop()
	case "quit":
		u.handleStop()
		return false
	case "setoption":
		u.handleSetOption(args)
	// Debug commands
	case "d":
		u.handleDisplay()
	case "perft":
		u.handlePerft(ctx, args)
	case "eval":
		u.handleEval()
	default:
		u.log.Debug().Str("command", cmd).Msg("unknown command")
	}
	return true
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	cfg := u.engine.Config()
	u.send("id name Balarama")
	u.send("id author Balarama authors")
	u.send("")
	u.send("option name Depth type spin default %d min 1 max 32", cfg.Depth)
	u.send("option name QuiescenceDepth type spin default %d min 0 max 32", cfg.QuiescenceDepth)
	u.send("option name MobilityWeight type spin default %d min 0 max 100", cfg.MobilityWeight)
	u.send("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}
	var moves []string
	if movesAt < len(args) {
		moves = args[movesAt+1:]
	}

	var game *engine.Game
	switch args[0] {
	case "startpos":
		game = engine.NewGame()
	case "fen":
		g, err := engine.NewGameFromFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.send("info string invalid position: %v", err)
			return
		}
		game = g
	default:
		return
	}

	for _, s := range moves {
		pos := game.Position()
		m, err := board.ParseMoveText(s, &pos)
		if err == nil {
			err = game.ApplyMove(m)
		}
		if err != nil {
			u.send("info string invalid move %s: %v", s, err)
			return
		}
	}
	u.game = game
}

// handleGo starts a search. Only "go depth N" is honoured; anything else
// searches to the configured depth.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	u.handleStop()

	depth := 0
	for i := 0; i < len(args); i++ {
		if args[i] == "depth" && i+1 < len(args) {
			depth, _ = strconv.Atoi(args[i+1])
			i++
		}
	}

	pos := u.game.Position()
	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.searching = true
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)
		defer cancel()

		res, err := u.engine.Search(ctx, pos, depth)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				u.log.Error().Err(err).Msg("search failed")
			}
			u.send("bestmove %s", fallbackMove(pos))
			return
		}
		u.sendInfo(pos, res)
		u.send("bestmove %s", res.BestMove)
	}()
}

// fallbackMove returns the first legal move, or NoMove.
func fallbackMove(pos board.Position) board.Move {
	ml, err := pos.GenerateLegalMoves()
	if err != nil || ml.Len() == 0 {
		return board.NoMove
	}
	return ml.Get(0)
}

// sendInfo outputs the search result in UCI format. Scores are from the
// side to move.
func (u *UCI) sendInfo(pos board.Position, res engine.Result) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", res.Depth))

	cp := res.Centipawns
	if pos.SideToMove == board.Black {
		cp = -cp
	}
	if res.Mate() {
		moves := (len(res.PV) + 1) / 2
		if cp < 0 {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %d", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", cp))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", res.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", res.Elapsed.Milliseconds()))
	if res.Elapsed > 0 {
		nps := uint64(float64(res.Nodes) / res.Elapsed.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(res.PV) > 0 {
		pv := make([]string, len(res.PV))
		for i, m := range res.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.send("info %s", strings.Join(parts, " "))

	if len(res.PV) > 0 {
		san, err := board.MovesToSAN(&pos, res.PV)
		if err != nil {
			u.log.Warn().Err(err).Msg("pv to SAN")
			return
		}
		u.send("info string pv %s", strings.Join(san, " "))
	}
}

// handleDisplay prints the board and the last move played.
func (u *UCI) handleDisplay() {
	pos := u.game.Position()
	u.send("%s", strings.TrimRight(pos.String(), "\n"))
	if last, err := pos.LastMoveSAN(); err != nil {
		u.log.Warn().Err(err).Msg("last move to SAN")
	} else if last != "" {
		u.send("Last move: %s", last)
	}
}

func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// handleStop stops the current search.
func (u *UCI) handleStop() {
	if u.searching {
		u.cancel()
		u.waitSearch()
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		u.send("info string invalid value for %s: %q", name, value)
		return
	}

	cfg := u.engine.Config()
	switch strings.ToLower(name) {
	case "depth":
		cfg.Depth = max(n, 1)
	case "quiescencedepth":
		cfg.QuiescenceDepth = n
	case "mobilityweight":
		cfg.MobilityWeight = n
	default:
		u.send("info string unknown option %s", name)
		return
	}
	u.engine.SetConfig(cfg)
	if u.OnConfig != nil {
		u.OnConfig(cfg)
	}
}

// handlePerft runs a divided parallel perft.
func (u *UCI) handlePerft(ctx context.Context, args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}

	start := time.Now()
	res, err := engine.ParallelPerft(ctx, u.game.Position(), depth, u.PerftWorkers)
	if err != nil {
		u.send("info string perft failed: %v", err)
		return
	}
	elapsed := time.Since(start)

	for _, e := range res.Divide {
		u.send("%s: %d", e.Move, e.Nodes)
	}
	u.send("")
	u.send("Nodes: %d", res.Stats.Nodes)
	u.send("Time: %v", elapsed)
	if elapsed > 0 {
		u.send("NPS: %.0f", float64(res.Stats.Nodes)/elapsed.Seconds())
	}
}

func (u *UCI) handleEval() {
	score, err := u.engine.Evaluate(u.game.Position())
	if err != nil {
		u.send("info string eval failed: %v", err)
		return
	}
	u.send("Evaluation: %+.2f (white side)", score)
}
