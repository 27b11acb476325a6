package sapling

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// Surface is the small offscreen canvas an UploadForcer draws through. Only
// the side effect of drawing matters; the pixels it ends up holding are
// discardable.
type Surface interface {
	Width() int
	Height() int
	// DrawCropped draws the crop rectangle of src, given relative to the
	// source's top-left corner, scaled over the whole surface.
	DrawCropped(src image.Image, crop image.Rectangle)
	// Release frees the surface. It must not be drawn to afterwards.
	Release()
}

// --- Ebiten ---

// EbitenSurface is an offscreen ebiten image. Drawing an *ebiten.Image through
// it makes Ebitengine flush that image's pending pixels to the GPU.
type EbitenSurface struct {
	image *ebiten.Image
	w, h  int
	op    ebiten.DrawImageOptions
}

// NewEbitenSurface creates an offscreen surface of the given size.
func NewEbitenSurface(w, h int) *EbitenSurface {
	return &EbitenSurface{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying image, or nil after Release.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.image
}

// Width returns the surface width in pixels.
func (s *EbitenSurface) Width() int {
	return s.w
}

// Height returns the surface height in pixels.
func (s *EbitenSurface) Height() int {
	return s.h
}

// Fill fills the surface with c.
func (s *EbitenSurface) Fill(c Color) {
	s.image.Fill(c.toRGBA())
}

// DrawCropped draws crop of src over the surface. Sources that are not ebiten
// images have no GPU copy to force and are skipped.
func (s *EbitenSurface) DrawCropped(src image.Image, crop image.Rectangle) {
	img, ok := src.(*ebiten.Image)
	if !ok {
		Logger().Debug("upload skipped: source is not an ebiten image", "type", typeName(src))
		return
	}
	crop = crop.Add(img.Bounds().Min).Intersect(img.Bounds())
	if crop.Empty() {
		return
	}
	sub := img.SubImage(crop).(*ebiten.Image)

	op := &s.op
	op.GeoM.Reset()
	op.GeoM.Scale(float64(s.w)/float64(crop.Dx()), float64(s.h)/float64(crop.Dy()))
	op.Blend = ebiten.BlendCopy
	s.image.DrawImage(sub, op)
}

// Resize deallocates the old image and creates a new one at the given size.
func (s *EbitenSurface) Resize(w, h int) {
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(w, h)
	s.w = w
	s.h = h
}

// Release deallocates the image.
func (s *EbitenSurface) Release() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}

// --- Raster ---

// RasterSurface is a CPU surface backed by an *image.RGBA. It draws CPU
// images, which makes it the surface of choice when no graphics device is
// available. Ebiten images are skipped: reading their pixels back needs a
// running game loop, and the GPU copy they stand for already exists.
type RasterSurface struct {
	img   *image.RGBA
	w, h  int
	draws int
}

// NewRasterSurface creates a CPU surface of the given size.
func NewRasterSurface(w, h int) *RasterSurface {
	return &RasterSurface{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		w:   w,
		h:   h,
	}
}

// Image returns the backing image, or nil after Release.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// Width returns the surface width in pixels.
func (s *RasterSurface) Width() int {
	return s.w
}

// Height returns the surface height in pixels.
func (s *RasterSurface) Height() int {
	return s.h
}

// Draws returns how many non-empty crops have been drawn.
func (s *RasterSurface) Draws() int {
	return s.draws
}

// DrawCropped scales crop of src over the surface with bilinear filtering.
func (s *RasterSurface) DrawCropped(src image.Image, crop image.Rectangle) {
	if _, ok := src.(*ebiten.Image); ok {
		Logger().Debug("raster draw skipped: source is an ebiten image")
		return
	}
	b := src.Bounds()
	crop = crop.Add(b.Min).Intersect(b)
	if crop.Empty() {
		return
	}
	xdraw.ApproxBiLinear.Scale(s.img, s.img.Bounds(), src, crop, xdraw.Src, nil)
	s.draws++
}

// Release drops the backing image.
func (s *RasterSurface) Release() {
	s.img = nil
}
