// Package blend implements the compositing operators used by the stamp
// compositor.
//
// All operations work with premultiplied alpha values in the range 0-255.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// blendSourceOver composites source over destination.
// Formula: S + D * (1 - Sa)
func blendSourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addClamp(sr, MulDiv255(dr, invSa)),
		addClamp(sg, MulDiv255(dg, invSa)),
		addClamp(sb, MulDiv255(db, invSa)),
		addClamp(sa, MulDiv255(da, invSa))
}

// StampOver composites a premultiplied color c, scaled by coverage cov,
// over the RGBA8 pixel at px[0:4].
func StampOver(px []byte, c [4]byte, cov byte) {
	if cov == 0 || c[3] == 0 {
		return
	}
	sr, sg, sb, sa := c[0], c[1], c[2], c[3]
	if cov != 255 {
		sr = MulDiv255(sr, cov)
		sg = MulDiv255(sg, cov)
		sb = MulDiv255(sb, cov)
		sa = MulDiv255(sa, cov)
	}
	px[0], px[1], px[2], px[3] = blendSourceOver(sr, sg, sb, sa, px[0], px[1], px[2], px[3])
}
