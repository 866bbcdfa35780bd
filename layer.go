package layers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/layers/internal/blend"
	"github.com/gogpu/layers/internal/surface"
)

var layerIDs atomic.Uint64

// Layer is one paintable surface of a stack. It owns its pixels and its
// drawing state; brush parameters reach it only through LoadBrush.
//
// The pixel surface is guarded by a mutex because image loads are applied
// from their decoding goroutines. Everything else is meant to be driven
// from a single goroutine.
type Layer struct {
	id     uint64
	name   string
	width  int
	height int

	mu      sync.Mutex
	surface *surface.Surface
	visible bool
	loads   []*Load

	// owner is the collection holding the layer. detached is set when the
	// owner removes it and cleared when a collection takes it again.
	owner    *Collection
	detached bool
}

// NewLayer creates a transparent, visible layer. Layers are normally
// created through Collection.CreateLayer; a standalone layer can be added
// with Collection.InsertLayer. The name is stored in Unicode NFC form.
func NewLayer(name string, width, height int) *Layer {
	return &Layer{
		id:      layerIDs.Add(1),
		name:    norm.NFC.String(name),
		width:   width,
		height:  height,
		surface: surface.New(width, height),
		visible: true,
	}
}

// ID returns an identifier unique among all layers of the process,
// suitable as a map key for views.
func (l *Layer) ID() uint64 { return l.id }

// Name returns the display name.
func (l *Layer) Name() string { return l.name }

// Width returns the layer width in pixels.
func (l *Layer) Width() int { return l.width }

// Height returns the layer height in pixels.
func (l *Layer) Height() int { return l.height }

// Visible reports whether the layer is shown.
func (l *Layer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// SetVisible shows or hides the layer.
func (l *Layer) SetVisible(v bool) {
	l.mu.Lock()
	l.visible = v
	l.mu.Unlock()
}

// ToggleVisible flips the visibility and returns the new value.
func (l *Layer) ToggleVisible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = !l.visible
	return l.visible
}

// Clear erases the layer to transparent.
func (l *Layer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface.ClearRect(0, 0, l.width, l.height)
}

// LoadBrush pushes the brush into the layer's drawing state: line width,
// line cap and join, stroke color, global alpha and composite operation.
// A color the surface cannot parse keeps the previous stroke color.
func (l *Layer) LoadBrush(b Brush) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.surface.State()
	st.LineWidth = float64(b.Size())
	st.LineCap, st.LineJoin = capJoin(b.Style())
	if c, ok := surface.ParseColor(b.Color()); ok {
		st.StrokeStyle = c
	}
	st.GlobalAlpha = b.Opacity()
	st.Composite = b.op()
	l.surface.SetState(st)
}

// capJoin maps a brush style to the surface cap and join it names.
func capJoin(style string) (surface.Cap, surface.Join) {
	switch style {
	case StyleButt:
		return surface.CapButt, surface.JoinMiter
	case StyleSquare:
		return surface.CapSquare, surface.JoinMiter
	case StyleBevel:
		return surface.CapButt, surface.JoinBevel
	case StyleMiter:
		return surface.CapButt, surface.JoinMiter
	}
	return surface.CapRound, surface.JoinRound
}

// BeginPath starts a new path on the layer's drawing context.
func (l *Layer) BeginPath() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface.BeginPath()
}

// MoveTo starts a new subpath at (x, y).
func (l *Layer) MoveTo(x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface.MoveTo(x, y)
}

// LineTo adds a segment to (x, y) without painting it.
func (l *Layer) LineTo(x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface.LineTo(x, y)
}

// Stroke paints the segments added since the previous Stroke.
func (l *Layer) Stroke() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.surface.Stroke()
}

// LoadImage decodes the image at uri in the background and pastes it at
// the origin. uri may be a data: URI, a file:// URL or a filesystem path.
//
// Unless preserve is set the layer is cleared first. The paste always uses
// plain source-over at full opacity, whatever brush is loaded. A failed
// decode leaves the pixels untouched, and so does a decode that finishes
// after the layer was removed from its collection.
func (l *Layer) LoadImage(uri string, preserve bool) *Load {
	ld := newLoad()
	l.mu.Lock()
	l.loads = append(l.loads, ld)
	l.mu.Unlock()

	Logger().Debug("layers: load started", "layer", l.name, "id", l.id)
	go func() {
		img, err := surface.Open(uri)
		err = l.apply(ld, img, err, preserve)
		switch {
		case errors.Is(err, ErrDetached):
			Logger().Warn("layers: load discarded", "layer", l.name, "id", l.id)
		case err != nil:
			Logger().Warn("layers: load failed", "layer", l.name, "id", l.id, "err", err)
		default:
			Logger().Debug("layers: load complete", "layer", l.name, "id", l.id)
		}
		ld.finish(err)
	}()
	return ld
}

func (l *Layer) apply(ld *Load, img image.Image, err error, preserve bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loads = slices.DeleteFunc(l.loads, func(x *Load) bool { return x == ld })
	if err != nil {
		return err
	}
	if l.detached {
		return ErrDetached
	}

	if !preserve {
		l.surface.Clear()
	}
	l.surface.Save()
	st := l.surface.State()
	st.Composite = blend.SourceOver
	st.GlobalAlpha = 1
	l.surface.SetState(st)
	l.surface.DrawImage(img)
	l.surface.Restore()
	return nil
}

// Pending returns the number of loads that have not finished.
func (l *Layer) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

// Wait blocks until every load started before the call has finished, or
// until ctx is done. Load failures are reported by the Load values
// themselves; Wait returns only the context error.
func (l *Layer) Wait(ctx context.Context) error {
	l.mu.Lock()
	pending := slices.Clone(l.loads)
	l.mu.Unlock()

	for _, ld := range pending {
		select {
		case <-ld.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// claim makes c the owner of l. It reports false when another collection
// already holds l.
func (l *Layer) claim(c *Collection) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner != nil && l.owner != c {
		return false
	}
	l.owner = c
	l.detached = false
	return true
}

// release ends c's ownership of l. Loads finishing afterwards are
// discarded. It does nothing when c is not the owner.
func (l *Layer) release(c *Collection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == c {
		l.owner = nil
		l.detached = true
	}
}

// Image returns a copy of the layer pixels.
func (l *Layer) Image() *image.NRGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.surface.Snapshot()
}

// DataURL returns the layer pixels as a PNG data URI.
func (l *Layer) DataURL() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.surface.DataURL()
}

type layerJSON struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// MarshalJSON encodes the layer as {"name": ..., "data": <PNG data URI>}.
// Pending loads are not awaited; call Wait first to include them.
func (l *Layer) MarshalJSON() ([]byte, error) {
	data, err := l.DataURL()
	if err != nil {
		return nil, err
	}
	return json.Marshal(layerJSON{Name: l.name, Data: data})
}

// state returns the current drawing state.
func (l *Layer) state() surface.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.surface.State()
}
