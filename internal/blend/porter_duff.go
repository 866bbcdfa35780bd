package blend

// Porter-Duff operators on premultiplied pixels. Every operator computes
// S*Fs + D*Fd per channel; the factors are listed with each function.

// porterDuff applies the factors fs and fd to all four channels.
func porterDuff(sr, sg, sb, sa, dr, dg, db, da, fs, fd byte) (byte, byte, byte, byte) {
	ch := func(s, d byte) byte {
		return addClamp(mulDiv255(s, fs), mulDiv255(d, fd))
	}
	return ch(sr, dr), ch(sg, dg), ch(sb, db), ch(sa, da)
}

// blendSource replaces destination with source. Fs = 1, Fd = 0.
func blendSource(sr, sg, sb, sa, _, _, _, _ byte) (byte, byte, byte, byte) {
	return sr, sg, sb, sa
}

// blendSourceOver: Fs = 1, Fd = 1 - Sa.
func blendSourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return porterDuff(sr, sg, sb, sa, dr, dg, db, da, 255, 255-sa)
}

// blendDestinationOver: Fs = 1 - Da, Fd = 1.
func blendDestinationOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return porterDuff(sr, sg, sb, sa, dr, dg, db, da, 255-da, 255)
}

// blendDestinationOut: Fs = 0, Fd = 1 - Sa.
func blendDestinationOut(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return porterDuff(sr, sg, sb, sa, dr, dg, db, da, 0, 255-sa)
}

// blendSourceAtop: Fs = Da, Fd = 1 - Sa. The result alpha is exactly Da.
func blendSourceAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	r, g, b, _ := porterDuff(sr, sg, sb, sa, dr, dg, db, da, da, 255-sa)
	return r, g, b, da
}

// blendPlus adds source and destination, saturating. Fs = 1, Fd = 1.
func blendPlus(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return porterDuff(sr, sg, sb, sa, dr, dg, db, da, 255, 255)
}
