package surface

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Data URI errors.
var (
	// ErrNotDataURL is returned when a string is not a data: URI.
	ErrNotDataURL = errors.New("surface: not a data URI")

	// ErrEmptyData is returned when a data URI carries no payload.
	ErrEmptyData = errors.New("surface: empty image data")
)

const pngPrefix = "data:image/png;base64,"

// DataURL encodes the surface content as a PNG data URI.
func (s *Surface) DataURL() (string, error) {
	return EncodeDataURL(s.pix)
}

// EncodeDataURL encodes img as a base64 PNG data URI.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("surface: encode PNG: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL decodes the image carried by a data URI. The payload may
// be base64 or percent-encoded; the format is detected from the content,
// so png, jpeg, gif, bmp, tiff and webp are accepted whatever the
// declared media type.
func DecodeDataURL(uri string) (image.Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("surface: malformed data URI: missing ','")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		var err error
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, fmt.Errorf("surface: decode base64: %w", err)
		}
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("surface: unescape data URI: %w", err)
		}
		data = []byte(s)
	}
	return decode(data)
}

// Open decodes the image referenced by uri: a data: URI, a file:// URL or
// a plain filesystem path.
func Open(uri string) (image.Image, error) {
	if strings.HasPrefix(uri, "data:") {
		return DecodeDataURL(uri)
	}
	name := uri
	if strings.HasPrefix(uri, "file:") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("surface: parse %q: %w", uri, err)
		}
		name = u.Path
	}
	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("surface: open image: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("surface: decode image: %w", err)
	}
	return img, nil
}
