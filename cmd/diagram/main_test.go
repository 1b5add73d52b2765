package main

import (
	"testing"

	"github.com/hailam/balarama/internal/board"
)

func TestMoveCaption(t *testing.T) {
	pos := board.NewPosition()
	tests := []struct {
		move string
		want string
	}{
		{"e4", "1. e4"},
		{"e5", "1... e5"},
		{"Nf3", "2. Nf3"},
	}
	for _, tc := range tests {
		m, err := board.ParseMoveText(tc.move, pos)
		if err != nil {
			t.Fatal(err)
		}
		if err := pos.MakeMove(m); err != nil {
			t.Fatal(err)
		}
		san, err := pos.LastMoveSAN()
		if err != nil {
			t.Fatal(err)
		}
		if got := moveCaption(pos, san); got != tc.want {
			t.Errorf("after %s caption = %q, want %q", tc.move, got, tc.want)
		}
	}
}
