package thumbcache

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/materialvault/materialvault/internal/vault"
)

const (
	// ThumbQuality is the JPEG quality of encoded artifacts.
	ThumbQuality = 80

	placeholderSize = 128
)

var (
	placeholderDefault = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	placeholderError   = color.NRGBA{R: 0x40, G: 0x20, B: 0x20, A: 0xff}
)

// Artifact is one rendered thumbnail: encoded image bytes plus dimensions.
type Artifact struct {
	Data   []byte
	Width  int
	Height int
}

// Renderer turns a resolved asset payload into a preview image at the
// requested size. The engine-side preview pipeline implements this; the
// package ships a standalone fallback.
type Renderer interface {
	Render(ctx context.Context, payload *vault.Payload, size int) (image.Image, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, payload *vault.Payload, size int) (image.Image, error)

func (f RendererFunc) Render(ctx context.Context, payload *vault.Payload, size int) (image.Image, error) {
	return f(ctx, payload, size)
}

// SwatchRenderer renders material payloads without an engine: payloads whose
// data decodes as an image are cropped to a square preview, anything else
// becomes a flat swatch colored deterministically from the asset path.
type SwatchRenderer struct{}

// NewSwatchRenderer returns the standalone fallback renderer.
func NewSwatchRenderer() SwatchRenderer {
	return SwatchRenderer{}
}

// Render implements Renderer.
func (SwatchRenderer) Render(_ context.Context, payload *vault.Payload, size int) (image.Image, error) {
	if payload != nil && len(payload.Data) > 0 {
		if img, err := imaging.Decode(bytes.NewReader(payload.Data)); err == nil {
			return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
		}
	}

	var path string
	if payload != nil {
		path = payload.Path
	}
	return imaging.New(size, size, swatchColor(path)), nil
}

// RenderArtifact runs the renderer and encodes the result as a JPEG artifact.
func RenderArtifact(ctx context.Context, r Renderer, payload *vault.Payload, size int) (*Artifact, error) {
	img, err := r.Render(ctx, payload, size)
	if err != nil {
		return nil, err
	}
	return encodeArtifact(img)
}

func encodeArtifact(img image.Image) (*Artifact, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ThumbQuality)); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &Artifact{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// placeholderArtifact renders a flat placeholder shown before real
// thumbnails arrive.
func placeholderArtifact(c color.NRGBA) *Artifact {
	art, err := encodeArtifact(imaging.New(placeholderSize, placeholderSize, c))
	if err != nil {
		// Flat JPEG encoding of an in-memory image cannot fail at runtime.
		return &Artifact{Width: placeholderSize, Height: placeholderSize}
	}
	return art
}

// swatchColor derives a stable color from an asset path.
func swatchColor(path string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(path))
	sum := h.Sum32()
	return color.NRGBA{
		R: uint8(sum),
		G: uint8(sum >> 8),
		B: uint8(sum >> 16),
		A: 0xff,
	}
}
