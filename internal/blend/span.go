package blend

// Mask composites the premultiplied color c into the straight-alpha
// pixels of dst (image.NRGBA layout), scaling c by the matching coverage
// value of mask. Pixels with zero coverage are left untouched.
// len(dst) must be at least 4*len(mask).
func Mask(dst, mask []byte, c [4]byte, op Op) {
	f := GetFunc(op)
	for i, cov := range mask {
		if cov == 0 {
			continue
		}
		sr, sg, sb, sa := c[0], c[1], c[2], c[3]
		if cov != 255 {
			sr, sg, sb, sa = mulDiv255(sr, cov), mulDiv255(sg, cov), mulDiv255(sb, cov), mulDiv255(sa, cov)
		}
		composite(dst[i*4:i*4+4:i*4+4], f, sr, sg, sb, sa)
	}
}

// Row composites the straight-alpha pixels of src onto the straight-alpha
// pixels of dst, scaling every source pixel by opacity first. Fully
// transparent source pixels leave dst untouched unless op is Copy.
//
// A source pixel whose result is the source itself (copy, or source-over
// onto a transparent pixel or with an opaque source) is copied verbatim,
// so pasting an image onto a cleared row reproduces it byte for byte.
func Row(dst, src []byte, opacity byte, op Op) {
	f := GetFunc(op)
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		if opacity == 255 && (op == Copy || op == SourceOver && (dst[i+3] == 0 || src[i+3] == 255)) {
			copy(dst[i:i+4], src[i:i+4])
			continue
		}
		sa := mulDiv255(src[i+3], opacity)
		if sa == 0 && op != Copy {
			continue
		}
		composite(dst[i:i+4:i+4], f, mulDiv255(src[i], sa), mulDiv255(src[i+1], sa), mulDiv255(src[i+2], sa), sa)
	}
}

// composite blends a premultiplied source pixel into one straight-alpha
// destination pixel.
func composite(p []byte, f Func, sr, sg, sb, sa byte) {
	da := p[3]
	r, g, b, a := f(sr, sg, sb, sa, mulDiv255(p[0], da), mulDiv255(p[1], da), mulDiv255(p[2], da), da)
	p[0], p[1], p[2], p[3] = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a), a
}

// Premultiply converts a straight-alpha color to premultiplied form.
func Premultiply(r, g, b, a byte) [4]byte {
	return [4]byte{mulDiv255(r, a), mulDiv255(g, a), mulDiv255(b, a), a}
}
