package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/layers"
)

// script is a painting session read from TOML.
//
//	width = 320
//	height = 200
//
//	[brush]
//	color = "#c03"
//	size = 4
//
//	[[step]]
//	op = "layer"
//	name = "Sketch"
//
//	[[step]]
//	op = "stroke"
//	points = [[10, 10], [200, 120], [300, 40]]
type script struct {
	Width  int              `toml:"width"`
	Height int              `toml:"height"`
	Brush  layers.BrushData `toml:"brush"`
	Steps  []step           `toml:"step"`
}

// step is one painter operation. Which fields apply depends on Op.
type step struct {
	Op string `toml:"op"`

	// Target layer, by name or by stack index. Without either the
	// current layer is used.
	Layer string `toml:"layer"`
	Index *int   `toml:"index"`

	Name     string           `toml:"name"`  // layer
	Where    string           `toml:"where"` // layer, move: top, bottom, above, below, up, down or an index
	Brush    layers.BrushData `toml:"brush"`
	Points   [][2]float64     `toml:"points"`
	Image    string           `toml:"image"` // data: URI, file:// URL or path
	Preserve bool             `toml:"preserve"`
}

var errUnknownLayer = errors.New("no such layer")

func parseScript(data string) (*script, error) {
	var s script
	md, err := toml.Decode(data, &s)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("parse script: unknown keys %s", strings.Join(names, ", "))
	}
	return &s, nil
}

func readScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScript(string(data))
}

// run executes the script on a new painter and waits for image loads. A
// failed load is reported against the step that started it; loads on
// layers a later step removed are not.
func (s *script) run(ctx context.Context) (*layers.Painter, error) {
	opts := []layers.Option{layers.WithBrush(layers.NewBrush(s.Brush))}
	if s.Width > 0 && s.Height > 0 {
		opts = append(opts, layers.WithSize(s.Width, s.Height))
	}
	p := layers.NewPainter(opts...)

	loads := make(map[int]*layers.Load)
	for i, st := range s.Steps {
		ld, err := st.apply(p)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
		if ld != nil {
			loads[i] = ld
		}
	}
	if err := p.Layers().Wait(ctx); err != nil {
		return nil, err
	}
	for i, st := range s.Steps {
		ld := loads[i]
		if ld == nil {
			continue
		}
		if err := ld.Err(); err != nil && !errors.Is(err, layers.ErrDetached) {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}
	return p, nil
}

// apply performs the step. Image steps return the started load.
func (st *step) apply(p *layers.Painter) (*layers.Load, error) {
	if st.Op == "layer" {
		p.NewLayer(st.Name, layers.ParseWhere(st.Where))
		return nil, nil
	}

	l, err := st.target(p)
	if err != nil {
		return nil, err
	}
	switch st.Op {
	case "select":
		_, err = p.SetCurrentLayer(layers.Ref(l))
	case "brush":
		p.UpdateBrush(st.Brush)
	case "stroke":
		if len(st.Points) == 0 {
			return nil, errors.New("stroke needs points")
		}
		if l != p.CurrentLayer() {
			if _, err := p.SetCurrentLayer(layers.Ref(l)); err != nil {
				return nil, err
			}
		}
		p.BeginPath()
		p.MoveTo(st.Points[0][0], st.Points[0][1])
		for _, pt := range st.Points[1:] {
			p.LineTo(pt[0], pt[1])
		}
	case "move":
		c := p.Layers()
		switch st.Where {
		case "up":
			err = c.MoveUp(l)
		case "down":
			err = c.MoveDown(l)
		default:
			err = c.MoveLayer(l, layers.ParseWhere(st.Where))
		}
	case "remove":
		p.RemoveLayer(layers.Ref(l))
	case "toggle":
		l.ToggleVisible()
	case "image":
		return l.LoadImage(st.Image, st.Preserve), nil
	default:
		return nil, fmt.Errorf("unknown op %q", st.Op)
	}
	return nil, err
}

// target resolves the layer a step operates on.
func (st *step) target(p *layers.Painter) (*layers.Layer, error) {
	c := p.Layers()
	switch {
	case st.Layer != "":
		for _, l := range c.Layers() {
			if strings.EqualFold(l.Name(), st.Layer) {
				return l, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", errUnknownLayer, st.Layer)
	case st.Index != nil:
		if l := c.Get(layers.Index(*st.Index)); l != nil {
			return l, nil
		}
		return nil, fmt.Errorf("%w: index %d", errUnknownLayer, *st.Index)
	}
	if l := p.CurrentLayer(); l != nil {
		return l, nil
	}
	return nil, fmt.Errorf("%w: no current layer", errUnknownLayer)
}
