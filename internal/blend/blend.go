// Package blend implements the compositing operations used to paint onto
// a layer surface.
//
// All operations work with premultiplied alpha values in the range 0-255,
// the layout of image.RGBA. Operation names follow the HTML canvas
// globalCompositeOperation vocabulary so that they round-trip through the
// persisted brush format unchanged.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Op is a pixel compositing operation.
type Op uint8

const (
	SourceOver      Op = iota // S + D*(1-Sa) [default]
	DestinationOut            // D*(1-Sa)
	DestinationOver           // S*(1-Da) + D
	SourceAtop                // S*Da + D*(1-Sa)
	Lighter                   // min(S + D, 255)
	Darker                    // W3C darken, min(Cs, Cb); keeps the canvas name "darker"
	Copy                      // S
)

var opNames = [...]string{
	SourceOver:      "source-over",
	DestinationOut:  "destination-out",
	DestinationOver: "destination-over",
	SourceAtop:      "source-atop",
	Lighter:         "lighter",
	Darker:          "darker",
	Copy:            "copy",
}

// String returns the canvas name of the operation.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return opNames[SourceOver]
}

// ParseOp returns the operation with the given canvas name.
// Unknown names report false and SourceOver.
func ParseOp(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return SourceOver, false
}

// Func is the signature for per-pixel compositing.
// All values are premultiplied alpha, 0-255.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// GetFunc returns the compositing function for op.
// Returns source-over for unknown operations.
func GetFunc(op Op) Func {
	switch op {
	case SourceOver:
		return blendSourceOver
	case DestinationOut:
		return blendDestinationOut
	case DestinationOver:
		return blendDestinationOver
	case SourceAtop:
		return blendSourceAtop
	case Lighter:
		return blendPlus
	case Darker:
		return blendDarken
	case Copy:
		return blendSource
	default:
		return blendSourceOver
	}
}
