package blend

// separableBlend applies a per-channel blend function B using the W3C
// formula: Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Cs, Cb)
// where Cs and Cb are the unmultiplied source and backdrop colors.
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	br := blendChan(unpremultiply(sr, sa), unpremultiply(dr, da))
	bg := blendChan(unpremultiply(sg, sa), unpremultiply(dg, da))
	bb := blendChan(unpremultiply(sb, sa), unpremultiply(db, da))

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	r := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, br))
	g := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bg))
	b := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bb))
	a := addClamp(sa, mulDiv255(da, invSa))
	return r, g, b, a
}

// blendDarken selects the darker of source and destination.
// Formula: B(Cb, Cs) = min(Cb, Cs)
func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, minByte)
}
