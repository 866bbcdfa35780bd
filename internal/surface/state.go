package surface

import (
	"image/color"

	"github.com/gogpu/layers/internal/blend"
)

// Cap is the shape drawn at the open ends of a stroked path.
type Cap uint8

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Join is the shape drawn where two stroked segments meet.
type Join uint8

const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

// ParseCap returns the cap with the given canvas name.
func ParseCap(name string) (Cap, bool) {
	switch name {
	case "butt":
		return CapButt, true
	case "round":
		return CapRound, true
	case "square":
		return CapSquare, true
	}
	return CapButt, false
}

// ParseJoin returns the join with the given canvas name.
func ParseJoin(name string) (Join, bool) {
	switch name {
	case "miter":
		return JoinMiter, true
	case "round":
		return JoinRound, true
	case "bevel":
		return JoinBevel, true
	}
	return JoinMiter, false
}

// State holds the drawing parameters applied by Stroke and DrawImage.
type State struct {
	LineWidth   float64
	LineCap     Cap
	LineJoin    Join
	MiterLimit  float64
	StrokeStyle color.NRGBA
	GlobalAlpha float64
	Composite   blend.Op
}

// DefaultState returns the initial drawing state of a surface: a one
// pixel opaque black butt-capped line composited with source-over.
func DefaultState() State {
	return State{
		LineWidth:   1,
		LineCap:     CapButt,
		LineJoin:    JoinMiter,
		MiterLimit:  10,
		StrokeStyle: color.NRGBA{A: 0xff},
		GlobalAlpha: 1,
		Composite:   blend.SourceOver,
	}
}

// alpha returns GlobalAlpha as a byte.
func (s *State) alpha() byte {
	switch {
	case s.GlobalAlpha <= 0:
		return 0
	case s.GlobalAlpha >= 1:
		return 255
	}
	return byte(s.GlobalAlpha*255 + 0.5)
}

// strokeColor returns the premultiplied stroke color with GlobalAlpha applied.
func (s *State) strokeColor() [4]byte {
	c := s.StrokeStyle
	a := uint16(c.A) * uint16(s.alpha())
	return blend.Premultiply(c.R, c.G, c.B, byte((a+127)/255))
}
