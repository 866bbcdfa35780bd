package layers

import (
	"fmt"
	"strconv"
)

type whereKind uint8

const (
	whereTop whereKind = iota
	whereIndex
	whereAbove
	whereBelow
	whereBottom
)

// Where is an insertion target in a layer stack. The zero value is Top.
type Where struct {
	kind  whereKind
	index int
}

// Insertion targets.
var (
	Top    = Where{kind: whereTop}    // after the last layer
	Above  = Where{kind: whereAbove}  // directly above the current index
	Below  = Where{kind: whereBelow}  // at the current index, pushing it up
	Bottom = Where{kind: whereBottom} // index 0
)

// At targets the given stack index.
func At(index int) Where {
	return Where{kind: whereIndex, index: index}
}

// ParseWhere parses "top", "above", "below", "bottom" or a decimal index.
// Anything else targets the top of the stack.
func ParseWhere(s string) Where {
	switch s {
	case "above":
		return Above
	case "below":
		return Below
	case "bottom":
		return Bottom
	}
	if i, err := strconv.Atoi(s); err == nil {
		return At(i)
	}
	return Top
}

// String implements fmt.Stringer.
func (w Where) String() string {
	switch w.kind {
	case whereIndex:
		return strconv.Itoa(w.index)
	case whereAbove:
		return "above"
	case whereBelow:
		return "below"
	case whereBottom:
		return "bottom"
	}
	return "top"
}

type locatorKind uint8

const (
	byIndex locatorKind = iota
	byTop
	byRef
)

// Locator identifies a layer of a collection by stack index, as the
// topmost layer, or by reference. The zero value is Index(0).
type Locator struct {
	kind  locatorKind
	index int
	layer *Layer
}

// TopLayer locates the last layer of the stack.
var TopLayer = Locator{kind: byTop}

// Index locates the layer at the given stack index.
func Index(i int) Locator {
	return Locator{kind: byIndex, index: i}
}

// Ref locates l itself. It resolves only while l is a member.
func Ref(l *Layer) Locator {
	return Locator{kind: byRef, layer: l}
}

// String implements fmt.Stringer.
func (loc Locator) String() string {
	switch loc.kind {
	case byTop:
		return "top"
	case byRef:
		if loc.layer == nil {
			return "layer <nil>"
		}
		return fmt.Sprintf("layer %q (#%d)", loc.layer.Name(), loc.layer.ID())
	}
	return "index " + strconv.Itoa(loc.index)
}
