package layers

import (
	"context"
	"fmt"
)

// Painter is the entry point for painting on a layer stack. It owns one
// collection and one brush, and routes drawing calls to the current layer.
//
// The current layer is the layer at the collection's current index, so it
// stays a member when layers are inserted, moved or removed through the
// collection directly. The brush is pushed into a layer whenever that
// layer becomes current and whenever the brush changes, so strokes always
// use the painter's brush.
type Painter struct {
	width  int
	height int

	layers *Collection
	brush  Brush

	// loaded is the last layer the brush was pushed into.
	loaded *Layer
}

// NewPainter creates a painter and selects the bottom layer.
//
// Without WithCollection the painter builds a collection of the configured
// size holding a single "Background" layer.
func NewPainter(opts ...Option) *Painter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := o.layers
	if c == nil {
		c = NewCollection(o.width, o.height)
	}
	b := NewBrush()
	if o.brush != nil {
		b = *o.brush
	}

	p := &Painter{
		width:  c.Width(),
		height: c.Height(),
		layers: c,
		brush:  b,
	}
	// An empty collection leaves the painter without a current layer.
	_, _ = p.SetCurrentLayer(Index(0))
	return p
}

// Width returns the canvas width.
func (p *Painter) Width() int { return p.width }

// Height returns the canvas height.
func (p *Painter) Height() int { return p.height }

// Layers returns the painter's collection.
func (p *Painter) Layers() *Collection { return p.layers }

// Brush returns a copy of the current brush.
func (p *Painter) Brush() Brush { return p.brush }

// CurrentLayer returns the layer drawing calls go to, or nil when the
// collection is empty.
func (p *Painter) CurrentLayer() *Layer {
	return p.layers.currentLayer()
}

// CurrentIndex returns the stack index of the current layer, or -1 when
// there is none.
func (p *Painter) CurrentIndex() int {
	if p.layers.Len() == 0 {
		return -1
	}
	return p.layers.CurrentIndex()
}

// SetCurrentLayer makes the layer loc names current and loads the brush
// into it. It returns the new current layer, which views can use as the
// change notification. When loc names no member it returns ErrNotFound and
// the current layer is unchanged.
func (p *Painter) SetCurrentLayer(loc Locator) (*Layer, error) {
	l := p.layers.Get(loc)
	if l == nil {
		return nil, fmt.Errorf("layers: select %s: %w", loc, ErrNotFound)
	}
	p.layers.SetCurrentIndex(p.layers.IndexOf(l))
	p.load(l)
	return l, nil
}

// SetBrush replaces the brush and loads it into the current layer.
func (p *Painter) SetBrush(b Brush) {
	p.brush = b
	p.applyBrush()
}

// UpdateBrush applies a partial brush update and loads the result into the
// current layer.
func (p *Painter) UpdateBrush(d BrushData) {
	p.brush.Load(d)
	p.applyBrush()
}

func (p *Painter) applyBrush() {
	if l := p.CurrentLayer(); l != nil {
		p.load(l)
	}
}

func (p *Painter) load(l *Layer) {
	l.LoadBrush(p.brush)
	p.loaded = l
}

// target returns the current layer with the brush loaded, or nil.
func (p *Painter) target() *Layer {
	l := p.CurrentLayer()
	if l != nil && l != p.loaded {
		p.load(l)
	}
	return l
}

// BeginPath starts a new path on the current layer.
func (p *Painter) BeginPath() {
	if l := p.target(); l != nil {
		l.BeginPath()
	}
}

// MoveTo moves the pen of the current layer to (x, y).
func (p *Painter) MoveTo(x, y float64) {
	if l := p.target(); l != nil {
		l.MoveTo(x, y)
	}
}

// LineTo extends the path of the current layer to (x, y) and strokes the
// new segment immediately.
func (p *Painter) LineTo(x, y float64) {
	l := p.target()
	if l == nil {
		return
	}
	l.LineTo(x, y)
	l.Stroke()
}

// NewLayer creates a layer at where, the top by default, and makes it
// current.
func (p *Painter) NewLayer(name string, where ...Where) *Layer {
	l := p.layers.CreateLayer(name, where...)
	_, _ = p.SetCurrentLayer(Ref(l))
	return l
}

// RemoveLayer removes the layer loc names and returns it, or nil when loc
// names no member. Removing the current layer selects the bottom layer.
func (p *Painter) RemoveLayer(loc Locator) *Layer {
	cur := p.CurrentLayer()
	l := p.layers.RemoveLayer(loc)
	if l == nil || l != cur {
		return l
	}
	_, _ = p.SetCurrentLayer(Index(0))
	return l
}

// ToJSON waits for pending loads and serializes the painter's collection.
func (p *Painter) ToJSON(ctx context.Context) ([]byte, error) {
	return p.layers.ToJSON(ctx)
}

// ParsePainter rebuilds a painter from a serialized collection. The
// painter takes the document's canvas size and selects the bottom layer.
func ParsePainter(ctx context.Context, data []byte, opts ...Option) (*Painter, error) {
	c, err := FromJSON(ctx, data)
	if err != nil {
		return nil, err
	}
	return NewPainter(append(opts, WithCollection(c))...), nil
}
