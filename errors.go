package layers

import "errors"

// Errors reported by collection and layer operations.
var (
	// ErrNotFound is returned when a layer expected in the collection is
	// not a member, e.g. when moving a layer that was already removed.
	ErrNotFound = errors.New("layers: layer not found")

	// ErrDuplicate is returned when inserting a layer that is already a member.
	ErrDuplicate = errors.New("layers: layer already in collection")

	// ErrSizeMismatch is returned when inserting a layer whose dimensions
	// differ from the collection's.
	ErrSizeMismatch = errors.New("layers: layer size does not match collection")

	// ErrInvalidSize is returned when a document declares a non-positive
	// canvas size.
	ErrInvalidSize = errors.New("layers: invalid canvas size")

	// ErrDetached is reported by a Load whose layer was removed from its
	// collection before the image finished decoding.
	ErrDetached = errors.New("layers: layer removed before load completed")

	// ErrNilLayer is returned when a nil layer is passed where one is required.
	ErrNilLayer = errors.New("layers: nil layer")
)
