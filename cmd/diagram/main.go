// Command diagram writes a PNG picture of a position.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hailam/balarama/internal/board"
	"github.com/hailam/balarama/internal/diagram"
	"github.com/hailam/balarama/internal/logging"
)

var (
	fen      = flag.String("fen", board.StartFEN, "position to draw")
	moves    = flag.String("moves", "", "space-separated moves to play first, e.g. \"e2e4 e7e5\" or \"e4 e5 Nf3\"")
	out      = flag.String("o", "board.png", "output file")
	size     = flag.Int("size", 48, "square size in pixels")
	flip     = flag.Bool("flip", false, "draw Black at the bottom")
	noCoords = flag.Bool("no-coords", false, "omit file and rank labels")
	logLevel = flag.String("log-level", "info", "log level")
)

func main() {
	flag.Parse()

	log, err := logging.New(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("parse position")
	}

	opts := diagram.DefaultOptions()
	opts.SquareSize = *size
	opts.Flip = *flip
	opts.Coordinates = !*noCoords

	for _, s := range strings.Fields(*moves) {
		m, err := board.ParseMoveText(s, pos)
		if err != nil {
			log.Fatal().Err(err).Str("move", s).Msg("parse move")
		}
		if err := pos.MakeMove(m); err != nil {
			log.Fatal().Err(err).Str("move", s).Msg("play move")
		}
	}
	if last := pos.LastMove(); last != board.NoMove {
		opts.Highlight = []board.Square{last.From(), last.To()}
		san, err := pos.LastMoveSAN()
		if err != nil {
			log.Fatal().Err(err).Msg("last move")
		}
		opts.Caption = moveCaption(pos, san)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	if err := diagram.WritePNG(f, pos.Snapshot(), opts); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("render")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Msg("write output")
	}
	log.Info().Str("file", *out).Str("fen", pos.ToFEN()).Msg("diagram written")
}

// moveCaption numbers the last move the way a score sheet does: "12. Nf3"
// for White, "12... Nf6" for Black.
func moveCaption(pos *board.Position, san string) string {
	if pos.SideToMove == board.Black {
		return fmt.Sprintf("%d. %s", pos.FullMoveNumber, san)
	}
	return fmt.Sprintf("%d... %s", pos.FullMoveNumber-1, san)
}
