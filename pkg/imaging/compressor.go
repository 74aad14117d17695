package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"

	// Screenshot payloads arrive as PNG (agent encoders) or JPEG.
	_ "image/png"

	"golang.org/x/image/draw"
)

// Compressor re-encodes agent screenshots to bounded JPEG thumbnails and
// digests the encoded bytes so identical frames deduplicate to one key.
type Compressor struct {
	Quality   int
	MaxWidth  int
	MaxHeight int
}

// Result is the outcome of a single compression run. Digest is the SHA-256
// hex of the encoded bytes; storage and cache layers address frames by it.
type Result struct {
	Base64 string
	Bytes  []byte
	Digest string
	SizeKB float64
}

func NewCompressor(quality, maxWidth, maxHeight int) *Compressor {
	return &Compressor{
		Quality:   quality,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}
}

// CompressBase64 decodes a base64 screenshot, flattens it to opaque RGB,
// downscales it so neither dimension exceeds the configured cap, re-encodes
// as JPEG and digests the result.
func (c *Compressor) CompressBase64(encoded string) (*Result, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return c.Compress(raw)
}

func (c *Compressor) Compress(raw []byte) (*Result, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	targetW, targetH := c.fit(width, height)

	// Flatten to an opaque RGBA canvas. The JPEG encoder drops alpha, and
	// scaling wants a draw.Image destination anyway.
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	if targetW == width && targetH == height {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	data := buf.Bytes()
	sum := sha256.Sum256(data)

	return &Result{
		Base64: base64.StdEncoding.EncodeToString(data),
		Bytes:  data,
		Digest: hex.EncodeToString(sum[:]),
		SizeKB: float64(len(data)) / 1024,
	}, nil
}

// fit shrinks (w, h) so both fit inside the configured cap while keeping the
// aspect ratio. Images already inside the cap are returned untouched.
func (c *Compressor) fit(w, h int) (int, int) {
	if w <= c.MaxWidth && h <= c.MaxHeight {
		return w, h
	}

	ratioW := float64(c.MaxWidth) / float64(w)
	ratioH := float64(c.MaxHeight) / float64(h)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	scaledW := int(float64(w) * ratio)
	scaledH := int(float64(h) * ratio)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}
	return scaledW, scaledH
}
