package analysis

import (
	"math"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds a trajectory in the (x, y) plane.
type PhasePortrait struct {
	Points []Point
}

// NewPhasePortrait pairs xs and ys, keeping every stride-th sample and
// dropping non-finite points.
func NewPhasePortrait(xs, ys []float64, stride int) *PhasePortrait {
	if stride < 1 {
		stride = 1
	}
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}

	portrait := &PhasePortrait{Points: make([]Point, 0, n/stride+1)}
	for i := 0; i < n; i += stride {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			portrait.Points = append(portrait.Points, Point{X: xs[i], Y: ys[i]})
		}
	}
	return portrait
}

// Bounds returns the extent of the portrait.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	return minX, maxX, minY, maxY
}

// ASCII renders the portrait on a width x height character canvas. Early
// points are drawn as '.', middle ones as 'o' and late ones as '●', so the
// direction of an outward Euler spiral is visible.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.Bounds()

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	n := len(p.Points)
	for i, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		switch {
		case i < n/3:
			canvas[row][col] = '.'
		case i < 2*n/3:
			canvas[row][col] = 'o'
		default:
			canvas[row][col] = '●'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
