package sapling

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrTextureDisposed is returned when drawing a texture whose base image has
// been disposed.
var ErrTextureDisposed = errors.New("sapling: texture disposed")

// TextureSource is implemented by anything backed by an uploadable image.
// UploadIfTexture claims exactly the items that implement it.
type TextureSource interface {
	Source() image.Image
}

// baseTexture is the image shared by a texture and all its sub-textures.
type baseTexture struct {
	source   image.Image
	gpu      *ebiten.Image // source itself, or a lazily made copy of a CPU source
	disposed bool
}

// Texture is a rectangular frame of a source image. Sub-textures made with
// SubTexture share the base image, so forcing one resident forces them all.
type Texture struct {
	base  *baseTexture
	Frame image.Rectangle
}

// NewTexture wraps src. An *ebiten.Image is drawn directly; any other
// image.Image is copied into an ebiten image the first time it is drawn.
func NewTexture(src image.Image) *Texture {
	b := &baseTexture{source: src}
	if img, ok := src.(*ebiten.Image); ok {
		b.gpu = img
	}
	return &Texture{base: b, Frame: src.Bounds()}
}

// NewTextureFromImage copies img into a new ebiten image. Ebitengine defers
// the pixel upload until the image is first used as a draw source, which is
// what UploadForcer exists to trigger early.
func NewTextureFromImage(img image.Image) *Texture {
	return NewTexture(ebiten.NewImageFromImage(img))
}

// SubTexture returns a texture for frame, given in the source image's
// coordinates, sharing this texture's base image.
func (t *Texture) SubTexture(frame image.Rectangle) *Texture {
	return &Texture{base: t.base, Frame: frame.Intersect(t.base.source.Bounds())}
}

// Source returns the base image. It satisfies TextureSource.
func (t *Texture) Source() image.Image {
	return t.base.source
}

// Width returns the frame width in pixels.
func (t *Texture) Width() int {
	return t.Frame.Dx()
}

// Height returns the frame height in pixels.
func (t *Texture) Height() int {
	return t.Frame.Dy()
}

// Image returns the frame as an ebiten image, converting a CPU source on the
// first call.
func (t *Texture) Image() (*ebiten.Image, error) {
	img, err := t.gpuBase()
	if err != nil {
		return nil, err
	}
	if t.Frame == img.Bounds() {
		return img, nil
	}
	return img.SubImage(t.Frame).(*ebiten.Image), nil
}

// gpuBase returns the whole base image on the GPU. A CPU source is copied
// into an ebiten image on first use, keeping its bounds so frames stay valid.
func (t *Texture) gpuBase() (*ebiten.Image, error) {
	b := t.base
	if b.disposed {
		return nil, ErrTextureDisposed
	}
	if b.gpu == nil {
		b.gpu = ebiten.NewImageFromImageWithOptions(b.source, &ebiten.NewImageFromImageOptions{
			PreserveBounds: true,
		})
	}
	return b.gpu, nil
}

// Dispose deallocates the GPU image when this texture owns one. Every texture
// sharing the base image stops drawing.
func (t *Texture) Dispose() {
	b := t.base
	if b.disposed {
		return
	}
	b.disposed = true
	if b.gpu != nil {
		b.gpu.Deallocate()
		b.gpu = nil
	}
}

// IsDisposed reports whether the base image has been disposed.
func (t *Texture) IsDisposed() bool {
	return t.base.disposed
}
