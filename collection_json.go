package layers

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// document is the persisted form of a collection.
type document struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Layers []layerJSON `json:"layers"`
}

// MarshalJSON encodes the collection as {"width", "height", "layers"},
// layers listed bottom to top. Pending loads are not awaited; ToJSON
// waits for them.
func (c *Collection) MarshalJSON() ([]byte, error) {
	doc := document{
		Width:  c.width,
		Height: c.height,
		Layers: make([]layerJSON, 0, len(c.items)),
	}
	for _, l := range c.items {
		data, err := l.DataURL()
		if err != nil {
			return nil, fmt.Errorf("layers: encode layer %q: %w", l.Name(), err)
		}
		doc.Layers = append(doc.Layers, layerJSON{Name: l.Name(), Data: data})
	}
	return json.Marshal(doc)
}

// ToJSON waits for pending loads and serializes the collection.
func (c *Collection) ToJSON(ctx context.Context) ([]byte, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}
	return c.MarshalJSON()
}

// FromJSON rebuilds a collection from a document produced by ToJSON.
// Layers are created in document order and their images decoded
// concurrently; FromJSON returns once every decode has finished. A layer
// with empty data stays blank.
func FromJSON(ctx context.Context, data []byte) (*Collection, error) {
	c := &Collection{}
	if err := c.decode(ctx, data); err != nil {
		return nil, err
	}
	return c, nil
}

// UnmarshalJSON replaces the receiver's layers with those the document
// describes, waiting for every layer image to decode. Layers the receiver
// held before are released.
func (c *Collection) UnmarshalJSON(data []byte) error {
	return c.decode(context.Background(), data)
}

// decode fills c from a document. The receiver is untouched when the
// document cannot be parsed; when a layer image fails to decode, c is
// left without layers.
func (c *Collection) decode(ctx context.Context, data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("layers: decode document: %w", err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return fmt.Errorf("layers: %dx%d: %w", doc.Width, doc.Height, ErrInvalidSize)
	}

	c.reset(doc.Width, doc.Height)
	g, gctx := errgroup.WithContext(ctx)
	for _, lj := range doc.Layers {
		l := c.CreateLayer(lj.Name)
		if lj.Data == "" {
			continue
		}
		ld := l.LoadImage(lj.Data, false)
		g.Go(func() error {
			if err := ld.Wait(gctx); err != nil {
				return fmt.Errorf("layers: load layer %q: %w", l.Name(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Loads still running are discarded once their layer is released.
		c.reset(doc.Width, doc.Height)
		return err
	}
	Logger().Debug("layers: document loaded", "layers", c.Len(), "width", c.width, "height", c.height)
	return nil
}

// reset releases every layer and resizes the now empty collection.
func (c *Collection) reset(width, height int) {
	for _, l := range c.items {
		l.release(c)
	}
	c.items = nil
	c.current = 0
	c.width, c.height = width, height
}
