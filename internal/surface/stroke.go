package surface

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/layers/internal/blend"
)

// outline appends the polygons covering one stroked segment: its body,
// the caps at its ends and the join with the preceding segment.
func (st *State) outline(polys [][]point, sg segment, hw float64) [][]point {
	d := sg.b.sub(sg.a)
	l := d.len()
	if l == 0 {
		if !sg.start {
			return polys
		}
		switch st.LineCap {
		case CapRound:
			polys = append(polys, circle(sg.a, hw))
		case CapSquare:
			c := sg.a
			polys = append(polys, []point{{c.x - hw, c.y - hw}, {c.x + hw, c.y - hw}, {c.x + hw, c.y + hw}, {c.x - hw, c.y + hw}})
		}
		return polys
	}

	u := d.mul(1 / l)
	n := point{-u.y, u.x}.mul(hw)
	a, b := sg.a, sg.b
	if st.LineCap == CapSquare {
		ext := u.mul(hw)
		b = b.add(ext)
		if sg.start {
			a = a.sub(ext)
		}
	}
	polys = append(polys, []point{a.add(n), b.add(n), b.sub(n), a.sub(n)})

	if st.LineCap == CapRound {
		polys = append(polys, circle(sg.b, hw))
		if sg.start {
			polys = append(polys, circle(sg.a, hw))
		}
	}
	if sg.hasPrev {
		polys = st.join(polys, sg.a, sg.prev, u, hw)
	}
	return polys
}

// join appends the polygon filling the outer corner at v between the unit
// directions d0 and d1.
func (st *State) join(polys [][]point, v, d0, d1 point, hw float64) [][]point {
	cross := d0.cross(d1)
	if math.Abs(cross) < 1e-12 && d0.dot(d1) > 0 {
		return polys
	}
	if st.LineJoin == JoinRound {
		return append(polys, circle(v, hw))
	}

	o := -1.0
	if cross < 0 {
		o = 1
	}
	n0 := point{-d0.y, d0.x}.mul(o * hw)
	n1 := point{-d1.y, d1.x}.mul(o * hw)
	pa, pb := v.add(n0), v.add(n1)

	if st.LineJoin == JoinMiter {
		limit := st.MiterLimit
		if limit <= 0 {
			limit = 10
		}
		m := n0.add(n1)
		if ml := m.len(); ml > 0 && 2*hw/ml <= limit {
			tip := v.add(m.mul(2 * hw * hw / (ml * ml)))
			return append(polys, []point{v, pa, tip, pb})
		}
	}
	return append(polys, []point{v, pa, pb})
}

// circle approximates a disc with a polygon fine enough for its radius.
func circle(c point, r float64) []point {
	n := int(math.Ceil(2 * math.Pi * r / 1.5))
	n = min(max(n, 8), 256)
	pts := make([]point, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = point{c.x + r*math.Cos(t), c.y + r*math.Sin(t)}
	}
	return pts
}

// fill rasterizes the union of polys into a coverage mask and composites
// the stroke color through it.
func (s *Surface) fill(polys [][]point) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, poly := range polys {
		for _, p := range poly {
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
	}
	if len(polys) == 0 || math.IsNaN(minX+minY+maxX+maxY) {
		return
	}
	// Clamp before converting so that far-away points cannot overflow int.
	r := image.Rect(
		int(math.Floor(math.Max(minX, -1))),
		int(math.Floor(math.Max(minY, -1))),
		int(math.Ceil(math.Min(maxX, float64(s.width+1)))),
		int(math.Ceil(math.Min(maxY, float64(s.height+1)))),
	).Intersect(s.pix.Rect)
	if r.Empty() {
		return
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	for _, poly := range polys {
		poly = clipPolygon(poly, r)
		if len(poly) < 3 {
			continue
		}
		if signedArea(poly) < 0 {
			reverse(poly)
		}
		ox, oy := float64(r.Min.X), float64(r.Min.Y)
		z.MoveTo(float32(poly[0].x-ox), float32(poly[0].y-oy))
		for _, p := range poly[1:] {
			z.LineTo(float32(p.x-ox), float32(p.y-oy))
		}
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	c := s.state.strokeColor()
	for y := 0; y < r.Dy(); y++ {
		dst := s.pix.Pix[s.pix.PixOffset(r.Min.X, r.Min.Y+y):s.pix.PixOffset(r.Max.X, r.Min.Y+y)]
		blend.Mask(dst, mask.Pix[y*mask.Stride:y*mask.Stride+r.Dx()], c, s.state.Composite)
	}
}

// signedArea returns twice the signed area of poly.
func signedArea(poly []point) float64 {
	var a float64
	for i, p := range poly {
		a += p.cross(poly[(i+1)%len(poly)])
	}
	return a
}

func reverse(poly []point) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}

// clipPolygon clips poly to r with the Sutherland-Hodgman algorithm.
func clipPolygon(poly []point, r image.Rectangle) []point {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	edges := []struct {
		inside func(point) bool
		cut    func(a, b point) point
	}{
		{func(p point) bool { return p.x >= x0 }, func(a, b point) point { return lerpX(a, b, x0) }},
		{func(p point) bool { return p.x <= x1 }, func(a, b point) point { return lerpX(a, b, x1) }},
		{func(p point) bool { return p.y >= y0 }, func(a, b point) point { return lerpY(a, b, y0) }},
		{func(p point) bool { return p.y <= y1 }, func(a, b point) point { return lerpY(a, b, y1) }},
	}
	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]point, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, p := range in {
			switch {
			case e.inside(p) && e.inside(prev):
				out = append(out, p)
			case e.inside(p):
				out = append(out, e.cut(prev, p), p)
			case e.inside(prev):
				out = append(out, e.cut(prev, p))
			}
			prev = p
		}
	}
	return out
}

func lerpX(a, b point, x float64) point {
	t := (x - a.x) / (b.x - a.x)
	return point{x, a.y + t*(b.y-a.y)}
}

func lerpY(a, b point, y float64) point {
	t := (y - a.y) / (b.y - a.y)
	return point{a.x + t*(b.x-a.x), y}
}
