// Package diagram renders board snapshots to PNG images.
package diagram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/balarama/internal/board"
)

// Options control the look of a diagram.
type Options struct {
	SquareSize  int  // Pixels per square
	Flip        bool // Draw Black at the bottom
	Coordinates bool // Draw file letters and rank numbers
	Highlight   []board.Square
	Caption     string // Drawn in a band under the board when set

	Light, Dark, Marked color.RGBA
}

// DefaultOptions returns a 48px board with coordinates.
func DefaultOptions() Options {
	return Options{
		SquareSize:  48,
		Coordinates: true,
		Light:       color.RGBA{0xf0, 0xd9, 0xb5, 0xff},
		Dark:        color.RGBA{0xb5, 0x88, 0x63, 0xff},
		Marked:      color.RGBA{0xcd, 0xd2, 0x6a, 0xff},
	}
}

var (
	background = color.RGBA{0x30, 0x2e, 0x2b, 0xff}
	whiteDisc  = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
	blackDisc  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	discEdge   = color.RGBA{0x10, 0x10, 0x10, 0xff}
)

// layout maps squares to pixels.
type layout struct {
	sq, margin int
	caption    int
	flip       bool
}

func newLayout(opts Options) layout {
	l := layout{sq: opts.SquareSize, flip: opts.Flip}
	if opts.Coordinates {
		l.margin = opts.SquareSize / 2
	}
	if opts.Caption != "" {
		l.caption = opts.SquareSize * 2 / 3
	}
	return l
}

func (l layout) size() (int, int) {
	return l.margin + 8*l.sq, 8*l.sq + l.margin + l.caption
}

// origin returns the top-left pixel of sq.
func (l layout) origin(sq board.Square) (int, int) {
	col, row := sq.File(), 7-sq.Rank()
	if l.flip {
		col, row = 7-col, 7-row
	}
	return l.margin + col*l.sq, row * l.sq
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// SVG writes the board squares and piece discs as an SVG document.
// Piece letters are drawn separately by Render.
func SVG(w io.Writer, snapshot [64]board.Piece, opts Options) {
	l := newLayout(opts)
	width, height := l.size()

	marked := make(map[board.Square]bool, len(opts.Highlight))
	for _, sq := range opts.Highlight {
		marked[sq] = true
	}

	canvas := svg.New(w)
	canvas.Startview(width, height, 0, 0, width, height)
	canvas.Rect(0, 0, width, height, "fill:"+hex(background))

	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := l.origin(sq)
		fill := opts.Light
		if (sq.File()+sq.Rank())%2 == 0 {
			fill = opts.Dark
		}
		if marked[sq] {
			fill = opts.Marked
		}
		canvas.Rect(x, y, l.sq, l.sq, "fill:"+hex(fill))
	}

	r := l.sq * 2 / 5
	stroke := fmt.Sprintf(";stroke:%s;stroke-width:%g", hex(discEdge), float64(l.sq)/24)
	for sq := board.A1; sq <= board.H8; sq++ {
		p := snapshot[sq]
		if p == board.NoPiece {
			continue
		}
		x, y := l.origin(sq)
		fill := whiteDisc
		if p.Color() == board.Black {
			fill = blackDisc
		}
		canvas.Circle(x+l.sq/2, y+l.sq/2, r, "fill:"+hex(fill)+stroke)
	}

	canvas.End()
}

// Render draws the diagram.
func Render(snapshot [64]board.Piece, opts Options) (*image.RGBA, error) {
	if opts.SquareSize < 8 {
		return nil, fmt.Errorf("invalid square size: %d", opts.SquareSize)
	}
	l := newLayout(opts)
	w, h := l.size()

	var doc bytes.Buffer
	SVG(&doc, snapshot, opts)
	icon, err := oksvg.ReadIconStream(&doc)
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	if err := drawLabels(rgba, snapshot, l, opts.Caption); err != nil {
		return nil, err
	}
	return rgba, nil
}

// drawLabels writes piece letters on the discs, the coordinates and the
// caption.
func drawLabels(dst *image.RGBA, snapshot [64]board.Piece, l layout, caption string) error {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	pieceFace, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(l.sq) * 0.45,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer pieceFace.Close()

	for sq := board.A1; sq <= board.H8; sq++ {
		p := snapshot[sq]
		if p == board.NoPiece {
			continue
		}
		ink := blackDisc
		if p.Color() == board.Black {
			ink = whiteDisc
		}
		x, y := l.origin(sq)
		label := strings.ToUpper(p.String())
		centre(dst, pieceFace, label, ink, x+l.sq/2, y+l.sq/2)
	}

	ink := color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	if caption != "" {
		captionFace, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(l.caption) * 0.6,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return err
		}
		defer captionFace.Close()
		w, _ := l.size()
		centre(dst, captionFace, caption, ink, w/2, 8*l.sq+l.margin+l.caption/2)
	}

	if l.margin == 0 {
		return nil
	}

	coordFace, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(l.margin) * 0.6,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer coordFace.Close()

	for i := 0; i < 8; i++ {
		file, rank := board.NewSquare(i, 0), board.NewSquare(0, i)
		fx, _ := l.origin(file)
		_, ry := l.origin(rank)
		centre(dst, coordFace, string(rune('a'+i)), ink, fx+l.sq/2, 8*l.sq+l.margin/2)
		centre(dst, coordFace, string(rune('1'+i)), ink, l.margin/2, ry+l.sq/2)
	}
	return nil
}

// centre draws s centred on (cx, cy).
func centre(dst *image.RGBA, face font.Face, s string, ink color.RGBA, cx, cy int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(ink), Face: face}
	m := face.Metrics()
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(cx) - width/2,
		Y: fixed.I(cy) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)
}

// WritePNG renders the diagram and encodes it to w.
func WritePNG(w io.Writer, snapshot [64]board.Piece, opts Options) error {
	img, err := Render(snapshot, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
