package layers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/layers/internal/blend"
)

// Mode is a named brush mode. Each mode is bound to one pixel compositing
// operation.
type Mode string

// Brush modes.
const (
	ModePaint   Mode = "paint"   // source-over
	ModeErase   Mode = "erase"   // destination-out
	ModeBehind  Mode = "behind"  // destination-over
	ModeInside  Mode = "inside"  // source-atop
	ModeLighten Mode = "lighten" // lighter
	ModeDarken  Mode = "darken"  // darker
)

// modes maps every valid mode to its compositing operation.
var modes = map[Mode]blend.Op{
	ModePaint:   blend.SourceOver,
	ModeErase:   blend.DestinationOut,
	ModeBehind:  blend.DestinationOver,
	ModeInside:  blend.SourceAtop,
	ModeLighten: blend.Lighter,
	ModeDarken:  blend.Darker,
}

// Modes returns the valid brush modes.
func Modes() []Mode {
	return []Mode{ModePaint, ModeErase, ModeBehind, ModeInside, ModeLighten, ModeDarken}
}

// Line styles. A style names both the line cap and the line join.
const (
	StyleRound  = "round"
	StyleButt   = "butt"
	StyleSquare = "square"
	StyleBevel  = "bevel"
	StyleMiter  = "miter"
)

// Brush defaults.
const (
	DefaultColor   = "#000000"
	DefaultOpacity = 1.0
	DefaultStyle   = StyleRound
	DefaultSize    = 10
)

// Brush describes how strokes are painted: color, width, opacity, line
// style and compositing mode.
//
// Setters never fail: size and opacity are clamped and unknown modes or
// styles fall back to the defaults. Create brushes with NewBrush; the
// zero Brush is not valid until loaded.
type Brush struct {
	color   string
	opacity float64
	style   string
	size    int
	mode    Mode
}

// BrushData is a partial brush update. Only non-nil fields are applied.
type BrushData struct {
	Color   *string  `json:"color,omitempty" toml:"color"`
	Opacity *float64 `json:"opacity,omitempty" toml:"opacity"`
	Style   *string  `json:"style,omitempty" toml:"style"`
	Size    *int     `json:"size,omitempty" toml:"size"`
	Mode    *string  `json:"mode,omitempty" toml:"mode"`
}

// NewBrush returns the default brush with the given updates applied in order.
func NewBrush(data ...BrushData) Brush {
	b := Brush{
		color:   DefaultColor,
		opacity: DefaultOpacity,
		style:   DefaultStyle,
		size:    DefaultSize,
		mode:    ModePaint,
	}
	for _, d := range data {
		b.Load(d)
	}
	return b
}

// Color returns the stroke color exactly as it was set.
func (b Brush) Color() string { return b.color }

// Opacity returns the stroke opacity in [0, 1].
func (b Brush) Opacity() float64 { return b.opacity }

// Style returns the line cap and join style.
func (b Brush) Style() string { return b.style }

// Size returns the stroke width in pixels, at least 1.
func (b Brush) Size() int { return b.size }

// Mode returns the brush mode.
func (b Brush) Mode() Mode { return b.mode }

// SetSize sets the stroke width, flooring at 1.
func (b *Brush) SetSize(size int) {
	b.size = max(size, 1)
}

// SetOpacity sets the opacity clamped to [0, 1]. NaN becomes 0.
func (b *Brush) SetOpacity(opacity float64) {
	if math.IsNaN(opacity) {
		opacity = 0
	}
	b.opacity = min(max(opacity, 0), 1)
}

// SetColor sets the stroke color. The value is stored verbatim; colors
// the surface cannot parse leave the previous stroke color in effect when
// the brush is loaded onto a layer.
func (b *Brush) SetColor(color string) {
	b.color = color
}

// SetStyle sets the line style. Unknown styles fall back to round.
func (b *Brush) SetStyle(style string) {
	switch style {
	case StyleRound, StyleButt, StyleSquare, StyleBevel, StyleMiter:
		b.style = style
	default:
		b.style = StyleRound
	}
}

// SetMode sets the brush mode. Unknown modes fall back to paint.
func (b *Brush) SetMode(mode Mode) {
	if _, ok := modes[mode]; ok {
		b.mode = mode
		return
	}
	b.mode = ModePaint
}

// CompositeOperation returns the canvas name of the compositing
// operation bound to the brush mode, e.g. "source-over" for paint.
func (b Brush) CompositeOperation() string {
	return b.op().String()
}

func (b Brush) op() blend.Op {
	if op, ok := modes[b.mode]; ok {
		return op
	}
	return blend.SourceOver
}

// Load applies the non-nil fields of d through the matching setters.
func (b *Brush) Load(d BrushData) {
	if d.Color != nil {
		b.SetColor(*d.Color)
	}
	if d.Opacity != nil {
		b.SetOpacity(*d.Opacity)
	}
	if d.Size != nil {
		b.SetSize(*d.Size)
	}
	if d.Style != nil {
		b.SetStyle(*d.Style)
	}
	if d.Mode != nil {
		b.SetMode(Mode(*d.Mode))
	}
}

// Leading numbers accepted in the string forms of size and opacity, as in
// "12px" or " 0.5".
var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// UnmarshalJSON decodes a partial brush update. Size and opacity may be
// numbers or numeric strings; a fractional size is truncated. Values of
// the wrong type and strings without a leading number are skipped.
func (d *BrushData) UnmarshalJSON(data []byte) error {
	var raw struct {
		Color   any `json:"color"`
		Opacity any `json:"opacity"`
		Style   any `json:"style"`
		Size    any `json:"size"`
		Mode    any `json:"mode"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*d = BrushData{
		Color: jsonString(raw.Color),
		Style: jsonString(raw.Style),
		Mode:  jsonString(raw.Mode),
	}
	if f, ok := jsonNumber(raw.Opacity, floatPrefix); ok {
		d.Opacity = &f
	}
	if f, ok := jsonNumber(raw.Size, intPrefix); ok {
		n := int(max(min(math.Trunc(f), math.MaxInt32), math.MinInt32))
		d.Size = &n
	}
	return nil
}

func jsonString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// jsonNumber reads a decoded JSON number, or the leading number of a
// string matched by prefix.
func jsonNumber(v any, prefix *regexp.Regexp) (float64, bool) {
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = prefix.FindString(strings.TrimSpace(v))
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Data returns the brush as a complete BrushData.
func (b Brush) Data() BrushData {
	mode := string(b.mode)
	return BrushData{
		Color:   &b.color,
		Opacity: &b.opacity,
		Style:   &b.style,
		Size:    &b.size,
		Mode:    &mode,
	}
}

// String implements fmt.Stringer.
func (b Brush) String() string {
	return fmt.Sprintf("Brush(%s, %dpx, %s, %.2f, %s)", b.color, b.size, b.style, b.opacity, b.mode)
}

type brushJSON struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Style   string  `json:"style"`
	Size    int     `json:"size"`
	Mode    Mode    `json:"mode"`
}

// MarshalJSON encodes the brush as a flat object of its five fields.
func (b Brush) MarshalJSON() ([]byte, error) {
	return json.Marshal(brushJSON{
		Color:   b.color,
		Opacity: b.opacity,
		Style:   b.style,
		Size:    b.size,
		Mode:    b.mode,
	})
}

// UnmarshalJSON applies the fields present in data as a partial update,
// coercing values as BrushData.UnmarshalJSON does. Decoding into the zero
// Brush starts from the defaults. Unknown fields are ignored.
func (b *Brush) UnmarshalJSON(data []byte) error {
	var d BrushData
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("layers: decode brush: %w", err)
	}
	if b.size == 0 {
		*b = NewBrush()
	}
	b.Load(d)
	return nil
}

// ParseBrush decodes a brush: the default brush updated with the fields
// present in data.
func ParseBrush(data []byte) (Brush, error) {
	b := NewBrush()
	if err := b.UnmarshalJSON(data); err != nil {
		return Brush{}, err
	}
	return b, nil
}
