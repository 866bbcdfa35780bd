package layers

import (
	"context"
	"fmt"
	"image"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/layers/internal/surface"
)

// Collection is an ordered stack of equally sized layers. Index 0 is the
// bottom of the stack and is painted first when merging.
//
// The collection keeps a current index that Above and Below insert
// relative to. Structural changes keep it on the same layer when that
// layer stays a member.
type Collection struct {
	width  int
	height int
	items  []*Layer

	current int
}

// NewCollection creates a collection whose layers are width x height
// pixels. Dimensions below 1 are raised to 1. Unless WithoutBackground is
// given the collection starts with one layer named "Background".
func NewCollection(width, height int, opts ...CollectionOption) *Collection {
	o := defaultCollectionOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection{
		width:  max(width, 1),
		height: max(height, 1),
	}
	if !o.empty {
		c.CreateLayer(o.background)
	}
	return c
}

// Width returns the width shared by every layer.
func (c *Collection) Width() int { return c.width }

// Height returns the height shared by every layer.
func (c *Collection) Height() int { return c.height }

// Size returns the layer dimensions.
func (c *Collection) Size() (width, height int) { return c.width, c.height }

// Len returns the number of layers.
func (c *Collection) Len() int { return len(c.items) }

// Layers returns the layers bottom to top. The slice is a copy.
func (c *Collection) Layers() []*Layer {
	return slices.Clone(c.items)
}

// CurrentIndex returns the index Above and Below are resolved against.
func (c *Collection) CurrentIndex() int { return c.current }

// SetCurrentIndex sets the index Above and Below are resolved against,
// clamped to the stack.
func (c *Collection) SetCurrentIndex(i int) {
	c.current = i
	c.clampCurrent()
}

func (c *Collection) clampCurrent() {
	c.current = max(min(c.current, len(c.items)-1), 0)
}

// currentLayer returns the layer at the current index, or nil when empty.
func (c *Collection) currentLayer() *Layer {
	if len(c.items) == 0 {
		return nil
	}
	return c.items[c.current]
}

// follow moves the current index back onto l after a structural change.
func (c *Collection) follow(l *Layer) {
	if i := c.IndexOf(l); i >= 0 {
		c.current = i
	}
	c.clampCurrent()
}

// resolve turns an insertion target into an index in [0, len].
func (c *Collection) resolve(where Where) int {
	var i int
	switch where.kind {
	case whereIndex:
		i = where.index
	case whereAbove:
		i = c.current + 1
	case whereBelow:
		i = c.current
	case whereBottom:
		i = 0
	default:
		i = len(c.items)
	}
	return max(min(i, len(c.items)), 0)
}

// CreateLayer creates a layer of the collection size and inserts it at
// where, the top of the stack by default.
func (c *Collection) CreateLayer(name string, where ...Where) *Layer {
	w := Top
	if len(where) > 0 {
		w = where[0]
	}
	l := NewLayer(name, c.width, c.height)
	l.claim(c)
	c.insert(l, c.resolve(w))
	return l
}

// InsertLayer adds an existing layer at where. The layer must have the
// collection size and must not belong to this or any other collection.
func (c *Collection) InsertLayer(l *Layer, where Where) error {
	switch {
	case l == nil:
		return ErrNilLayer
	case c.IndexOf(l) >= 0:
		return fmt.Errorf("layers: insert %s: %w", Ref(l), ErrDuplicate)
	case l.Width() != c.width || l.Height() != c.height:
		return fmt.Errorf("layers: insert %s (%dx%d into %dx%d): %w",
			Ref(l), l.Width(), l.Height(), c.width, c.height, ErrSizeMismatch)
	case !l.claim(c):
		return fmt.Errorf("layers: insert %s: held by another collection: %w", Ref(l), ErrDuplicate)
	}
	c.insert(l, c.resolve(where))
	return nil
}

func (c *Collection) insert(l *Layer, i int) {
	cur := c.currentLayer()
	c.items = slices.Insert(c.items, i, l)
	c.follow(cur)
	Logger().Debug("layers: layer inserted", "layer", l.Name(), "id", l.ID(), "index", i)
}

// Get resolves loc to a member layer, or nil when it names none.
func (c *Collection) Get(loc Locator) *Layer {
	switch loc.kind {
	case byTop:
		if len(c.items) == 0 {
			return nil
		}
		return c.items[len(c.items)-1]
	case byRef:
		if c.IndexOf(loc.layer) < 0 {
			return nil
		}
		return loc.layer
	}
	if loc.index < 0 || loc.index >= len(c.items) {
		return nil
	}
	return c.items[loc.index]
}

// IndexOf returns the stack index of l, or -1 when l is not a member.
func (c *Collection) IndexOf(l *Layer) int {
	if l == nil {
		return -1
	}
	return slices.Index(c.items, l)
}

// Position is IndexOf reporting ErrNotFound for a non-member.
func (c *Collection) Position(l *Layer) (int, error) {
	i := c.IndexOf(l)
	if i < 0 {
		if l == nil {
			return -1, ErrNilLayer
		}
		return -1, ErrNotFound
	}
	return i, nil
}

// splice removes the layer at i and keeps the current index on its layer.
func (c *Collection) splice(i int) *Layer {
	l := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	if i < c.current {
		c.current--
	}
	c.clampCurrent()
	return l
}

// RemoveLayer removes the layer loc names and returns it, or returns nil
// when loc names no member. Image loads still pending on the removed
// layer are not applied.
func (c *Collection) RemoveLayer(loc Locator) *Layer {
	l := c.Get(loc)
	if l == nil {
		return nil
	}
	i := c.IndexOf(l)
	c.splice(i)
	l.release(c)
	Logger().Debug("layers: layer removed", "layer", l.Name(), "id", l.ID(), "index", i)
	return l
}

// MoveLayer moves a member layer to where. The target is resolved after
// the layer has been taken out of the stack, so At(n) is the index the
// layer ends up at.
func (c *Collection) MoveLayer(l *Layer, where Where) error {
	from, err := c.Position(l)
	if err != nil {
		return fmt.Errorf("layers: move %s: %w", Ref(l), err)
	}
	cur := c.currentLayer()
	c.splice(from)
	to := c.resolve(where)
	c.items = slices.Insert(c.items, to, l)
	c.follow(cur)
	Logger().Debug("layers: layer moved", "layer", l.Name(), "id", l.ID(), "from", from, "to", to)
	return nil
}

// MoveUp moves l one position towards the top. It does nothing when l is
// already the top layer.
func (c *Collection) MoveUp(l *Layer) error {
	i, err := c.Position(l)
	if err != nil {
		return fmt.Errorf("layers: move up %s: %w", Ref(l), err)
	}
	if i == len(c.items)-1 {
		return nil
	}
	return c.MoveLayer(l, At(i+1))
}

// MoveDown moves l one position towards the bottom. It does nothing when
// l is already the bottom layer.
func (c *Collection) MoveDown(l *Layer) error {
	i, err := c.Position(l)
	if err != nil {
		return fmt.Errorf("layers: move down %s: %w", Ref(l), err)
	}
	if i == 0 {
		return nil
	}
	return c.MoveLayer(l, At(i-1))
}

// Wait blocks until every image load pending on any member has finished,
// or ctx is done.
func (c *Collection) Wait(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range c.items {
		l := l
		g.Go(func() error {
			return l.Wait(ctx)
		})
	}
	return g.Wait()
}

// Merged waits for pending loads and composites every layer, bottom to
// top, with source-over onto a transparent image of the collection size.
// Hidden layers are included.
func (c *Collection) Merged(ctx context.Context) (*image.NRGBA, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}
	dst := surface.New(c.width, c.height)
	for _, l := range c.items {
		dst.DrawImage(l.Image())
	}
	Logger().Debug("layers: merged", "layers", len(c.items), "width", c.width, "height", c.height)
	return dst.Snapshot(), nil
}

// MergedData returns Merged as a PNG data URI.
func (c *Collection) MergedData(ctx context.Context) (string, error) {
	img, err := c.Merged(ctx)
	if err != nil {
		return "", err
	}
	return surface.EncodeDataURL(img)
}
