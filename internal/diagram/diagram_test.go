package diagram

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/hailam/balarama/internal/board"
)

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2
}

// squareCorner returns a pixel inside sq, clear of any disc.
func squareCorner(l layout, sq board.Square) (int, int) {
	x, y := l.origin(sq)
	return x + 3, y + 3
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	SVG(&buf, board.NewPosition().Snapshot(), DefaultOptions())
	svg := buf.String()
	if n := strings.Count(svg, "<circle"); n != 32 {
		t.Errorf("%d piece discs, want 32", n)
	}
	if n := strings.Count(svg, "<rect"); n != 65 {
		t.Errorf("%d rects, want 65", n)
	}
	if !strings.Contains(svg, `viewBox="0 0 408 408"`) {
		t.Errorf("SVG has no viewBox for a 408px board:\n%.200s", svg)
	}
}

func TestRenderSquares(t *testing.T) {
	opts := DefaultOptions()
	opts.Highlight = []board.Square{board.E2}
	snap := board.NewPosition().Snapshot()

	img, err := Render(snap, opts)
	if err != nil {
		t.Fatal(err)
	}

	l := newLayout(opts)
	w, h := l.size()
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("image %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
	if w != 24+8*48 {
		t.Errorf("width = %d", w)
	}

	tests := []struct {
		sq   board.Square
		want color.RGBA
	}{
		{board.A1, opts.Dark},
		{board.H1, opts.Light},
		{board.E4, opts.Light},
		{board.D4, opts.Dark},
		{board.E2, opts.Marked},
	}
	for _, tc := range tests {
		x, y := squareCorner(l, tc.sq)
		if got := img.RGBAAt(x, y); !near(got, tc.want) {
			t.Errorf("%s corner = %v, want %v", tc.sq, got, tc.want)
		}
	}

	// The centre of an occupied square is covered by a disc.
	x, y := l.origin(board.E1)
	if got := img.RGBAAt(x+l.sq/2-8, y+l.sq/2); near(got, opts.Dark) || near(got, opts.Light) {
		t.Errorf("e1 centre shows the square colour %v", got)
	}
}

func TestRenderFlipped(t *testing.T) {
	opts := DefaultOptions()
	opts.Flip = true
	opts.Coordinates = false
	l := newLayout(opts)

	if x, y := l.origin(board.A1); x != 7*48 || y != 0 {
		t.Errorf("flipped a1 origin = %d,%d", x, y)
	}
	if x, y := l.origin(board.H8); x != 0 || y != 7*48 {
		t.Errorf("flipped h8 origin = %d,%d", x, y)
	}

	img, err := Render(board.NewPosition().Snapshot(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8*48 || b.Dy() != 8*48 {
		t.Errorf("image %dx%d without coordinates", b.Dx(), b.Dy())
	}
}

func TestWritePNG(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.SquareSize = 32
	if err := WritePNG(&buf, pos.Snapshot(), opts); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16+8*32 {
		t.Errorf("decoded width = %d", b.Dx())
	}
}

func TestRenderRejectsTinySquares(t *testing.T) {
	opts := DefaultOptions()
	opts.SquareSize = 2
	if _, err := Render(board.NewPosition().Snapshot(), opts); err == nil {
		t.Error("expected error for 2px squares")
	}
}

func TestRenderCaption(t *testing.T) {
	opts := DefaultOptions()
	opts.Caption = "1. e4"
	l := newLayout(opts)

	w, h := l.size()
	if w != 24+8*48 || h != 8*48+24+32 {
		t.Fatalf("captioned size = %dx%d", w, h)
	}

	img, err := Render(board.NewPosition().Snapshot(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("image %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}

	// Some pixel in the caption band is lighter than the background.
	band := image.Rect(0, 8*48+24, w, h)
	lit := false
	for y := band.Min.Y; y < band.Max.Y && !lit; y++ {
		for x := band.Min.X; x < band.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R > 0x80 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Error("caption band is blank")
	}
}
