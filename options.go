package layers

// Option configures a Painter during creation.
//
// Example:
//
//	// Default 600x400 canvas with a single "Background" layer
//	p := layers.NewPainter()
//
//	// Custom canvas size and brush
//	p := layers.NewPainter(layers.WithSize(1024, 768), layers.WithBrush(brush))
type Option func(*options)

// options holds optional configuration for Painter creation.
type options struct {
	width  int
	height int
	layers *Collection
	brush  *Brush
}

// Default canvas size of a Painter.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// defaultOptions returns the default painter options.
func defaultOptions() options {
	return options{
		width:  DefaultWidth,
		height: DefaultHeight,
	}
}

// WithSize sets the canvas size of a Painter that builds its own collection.
// It is ignored when WithCollection is also given.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithCollection makes the Painter use an existing collection.
// The painter adopts the collection's dimensions.
func WithCollection(c *Collection) Option {
	return func(o *options) {
		o.layers = c
	}
}

// WithBrush sets the initial brush.
func WithBrush(b Brush) Option {
	return func(o *options) {
		o.brush = &b
	}
}

// CollectionOption configures a Collection during creation.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	background string
	empty      bool
}

// BackgroundName is the name of the layer every new collection starts with.
const BackgroundName = "Background"

func defaultCollectionOptions() collectionOptions {
	return collectionOptions{background: BackgroundName}
}

// WithoutBackground creates the collection with no layers at all.
// Deserialization uses it to rebuild the stack from the document alone.
func WithoutBackground() CollectionOption {
	return func(o *collectionOptions) {
		o.empty = true
	}
}

// WithBackground names the initial layer.
func WithBackground(name string) CollectionOption {
	return func(o *collectionOptions) {
		o.background = name
	}
}
