package surface

import "math"

type point struct {
	x, y float64
}

func (p point) add(q point) point     { return point{p.x + q.x, p.y + q.y} }
func (p point) sub(q point) point     { return point{p.x - q.x, p.y - q.y} }
func (p point) mul(k float64) point   { return point{p.x * k, p.y * k} }
func (p point) len() float64          { return math.Hypot(p.x, p.y) }
func (p point) cross(q point) float64 { return p.x*q.y - p.y*q.x }
func (p point) dot(q point) float64   { return p.x*q.x + p.y*q.y }

// segment is one straight piece of a subpath waiting to be stroked.
type segment struct {
	a, b    point
	start   bool  // a is the first point of its subpath
	prev    point // unit direction of the preceding segment
	hasPrev bool
}

// path accumulates segments between strokes.
type path struct {
	cur     point
	hasCur  bool
	start   bool
	dir     point
	hasDir  bool
	pending []segment
}

// BeginPath discards the current path, including segments not yet stroked.
func (s *Surface) BeginPath() {
	s.path = path{pending: s.path.pending[:0]}
}

// MoveTo starts a new subpath at (x, y).
func (s *Surface) MoveTo(x, y float64) {
	p := &s.path
	p.cur = point{x, y}
	p.hasCur = true
	p.start = true
	p.hasDir = false
}

// LineTo adds a straight segment from the current point to (x, y).
// Without a current point it behaves like MoveTo.
func (s *Surface) LineTo(x, y float64) {
	p := &s.path
	if !p.hasCur {
		s.MoveTo(x, y)
		return
	}
	to := point{x, y}
	p.pending = append(p.pending, segment{
		a:       p.cur,
		b:       to,
		start:   p.start,
		prev:    p.dir,
		hasPrev: p.hasDir,
	})
	if d := to.sub(p.cur); d.len() > 0 {
		p.dir = d.mul(1 / d.len())
		p.hasDir = true
		p.start = false
	}
	p.cur = to
}

// Stroke paints the segments added since the previous Stroke with the
// current line width, cap, join, stroke color, global alpha and composite
// operation. Segments already stroked are not painted again, so a stroke
// per LineTo composites every segment exactly once.
func (s *Surface) Stroke() {
	segs := s.path.pending
	s.path.pending = segs[:0]
	if len(segs) == 0 || s.state.LineWidth <= 0 {
		return
	}

	hw := s.state.LineWidth / 2
	var polys [][]point
	for _, sg := range segs {
		polys = s.state.outline(polys, sg, hw)
	}
	s.fill(polys)
}
