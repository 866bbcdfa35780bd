package surface

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS color: "#rgb", "#rgba", "#rrggbb", "#rrggbbaa",
// "rgb(r, g, b)", "rgba(r, g, b, a)", "transparent" or an SVG color name.
// It reports false for anything else.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, false
	case s == "transparent":
		return color.NRGBA{}, true
	case s[0] == '#':
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	c, ok := colornames.Map[s]
	if !ok {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, true
}

// parseHex parses the digits of a hex color without the leading '#'.
func parseHex(hex string) (color.NRGBA, bool) {
	var v [4]uint8
	v[3] = 0xff

	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			d, ok := hexDigit(hex[i])
			if !ok {
				return color.NRGBA{}, false
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return color.NRGBA{}, false
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// parseFunc parses "rgb(...)" and "rgba(...)" with 0-255 channels and an
// optional 0-1 alpha.
func parseFunc(s string) (color.NRGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end != len(s)-1 {
		return color.NRGBA{}, false
	}
	name := strings.TrimSpace(s[:open])
	args := strings.Split(s[open+1:end], ",")
	if (name != "rgb" && name != "rgba") || len(args) < 3 || len(args) > 4 {
		return color.NRGBA{}, false
	}

	var v [4]uint8
	v[3] = 0xff
	for i, arg := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		if i == 3 {
			f *= 255
		}
		v[i] = uint8(min(max(f, 0), 255) + 0.5)
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}, true
}
