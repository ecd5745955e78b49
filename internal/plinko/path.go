package plinko

import (
	"math"

	"casino-minigames/internal/rng"
)

// Point is a ball position in board percentages: X left to right, Y top to
// bottom, both in [0, 100].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BinCenter is the horizontal centre of bin i on a board of n bins.
func BinCenter(i, n int) float64 {
	w := 100 / float64(n)
	return float64(i)*w + w/2
}

// Path walks from the top centre toward the selected bin with jitter of up to
// an eighth of a bin on each of the n-1 peg rows, then lands exactly on the
// bin centre.
func Path(bin, n int, src rng.Source) []Point {
	rows := n - 1
	w := 100 / float64(n)
	final := BinCenter(bin, n)
	spacing := 100 / float64(rows+1)

	path := make([]Point, 0, rows+1)
	for i := 0; i < rows; i++ {
		t := float64(i+1) / float64(rows+1)
		x := 50 + (final-50)*t
		x += src.Float64()*w/4 - w/8
		path = append(path, Point{
			X: math.Min(math.Max(x, 0), 100),
			Y: float64(i+1) * spacing,
		})
	}
	return append(path, Point{X: final, Y: 100})
}
