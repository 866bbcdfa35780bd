// Package layers provides a layered raster painting engine.
//
// # Overview
//
// A [Painter] owns a [Collection] of equally sized [Layer] values and one
// [Brush]. Drawing calls go to the current layer; the brush decides the
// stroke color, width, opacity, line style and compositing mode. Layers
// can be reordered, hidden, removed, merged into one image and saved to or
// restored from JSON with each layer encoded as a PNG data URI.
//
// # Quick Start
//
//	p := layers.NewPainter(layers.WithSize(640, 480))
//	p.NewLayer("Sketch")
//	p.UpdateBrush(layers.BrushData{Color: ptr("#c03"), Size: ptr(4)})
//
//	p.BeginPath()
//	p.MoveTo(10, 10)
//	p.LineTo(200, 120) // stroked immediately
//
//	img, err := p.Layers().Merged(ctx)
//
// # Brush Modes
//
// Every brush mode is bound to one compositing operation:
//
//	paint    source-over
//	erase    destination-out
//	behind   destination-over
//	inside   source-atop
//	lighten  lighter
//	darken   darker
//
// # Stack Order
//
// Index 0 is the bottom of the stack. Insertion targets ([Where]) are
// [Top], [Bottom], [Above] and [Below] the collection's current index, or
// an explicit index via [At]. Layers are looked up with a [Locator]:
// [Index], [TopLayer] or [Ref].
//
// # Image Loads
//
// [Layer.LoadImage] decodes in the background and returns a [Load].
// [Collection.Wait], [Collection.Merged], [Collection.ToJSON] and
// [FromJSON] wait for outstanding loads before they report.
//
// # Logging
//
// The package logs through log/slog. Logging is disabled by default; enable
// it with [SetLogger].
package layers
