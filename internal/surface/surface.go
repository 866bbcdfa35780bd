// Package surface implements the software drawing surface behind a layer.
//
// A Surface is a fixed-size straight-alpha RGBA pixel buffer with a
// canvas-like drawing state: line width, cap and join, stroke color,
// global alpha and composite operation. Strokes are rasterized with
// golang.org/x/image/vector and composited through internal/blend.
//
// Surface is not safe for concurrent use.
package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/layers/internal/blend"
)

// Surface is a sized pixel buffer with drawing state.
type Surface struct {
	width  int
	height int
	pix    *image.NRGBA
	state  State
	saved  []State
	path   path
}

// New creates a transparent surface with the given dimensions.
// Negative dimensions are treated as zero.
func New(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	return &Surface{
		width:  width,
		height: height,
		pix:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		state:  DefaultState(),
	}
}

// Width returns the width of the surface.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the height of the surface.
func (s *Surface) Height() int {
	return s.height
}

// Bounds returns the pixel bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.pix.Rect
}

// State returns the current drawing state.
func (s *Surface) State() State {
	return s.state
}

// SetState replaces the current drawing state.
func (s *Surface) SetState(st State) {
	s.state = st
}

// Save pushes a copy of the drawing state.
func (s *Surface) Save() {
	s.saved = append(s.saved, s.state)
}

// Restore pops the drawing state pushed by the matching Save.
// Without a matching Save it does nothing.
func (s *Surface) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.state = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

// At returns the straight-alpha color of a pixel.
func (s *Surface) At(x, y int) color.NRGBA {
	return s.pix.NRGBAAt(x, y)
}

// Snapshot returns a copy of the pixel content.
func (s *Surface) Snapshot() *image.NRGBA {
	dst := image.NewNRGBA(s.pix.Rect)
	copy(dst.Pix, s.pix.Pix)
	return dst
}

// Clear erases the whole surface to transparent.
func (s *Surface) Clear() {
	clear(s.pix.Pix)
}

// ClearRect erases the given rectangle to transparent. The rectangle is
// clipped to the surface bounds.
func (s *Surface) ClearRect(x, y, w, h int) {
	r := image.Rect(x, y, x+w, y+h).Intersect(s.pix.Rect)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		clear(s.pix.Pix[s.pix.PixOffset(r.Min.X, py):s.pix.PixOffset(r.Max.X, py)])
	}
}

// DrawImage composites img with its top-left corner at the origin using
// the current GlobalAlpha and Composite operation. Parts of img outside
// the surface are clipped.
func (s *Surface) DrawImage(img image.Image) {
	sb := img.Bounds()
	r := image.Rect(0, 0, sb.Dx(), sb.Dy()).Intersect(s.pix.Rect)
	if r.Empty() {
		return
	}

	// NRGBA sources are read in place so that pasting our own exports
	// is lossless; anything else is converted once.
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(sb)
		draw.Draw(src, sb, img, sb.Min, draw.Src)
	}

	alpha := s.state.alpha()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst := s.pix.Pix[s.pix.PixOffset(r.Min.X, y):s.pix.PixOffset(r.Max.X, y)]
		off := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		blend.Row(dst, src.Pix[off:off+4*r.Dx()], alpha, s.state.Composite)
	}
}
