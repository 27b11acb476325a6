package sapling

import (
	"fmt"
	"image"
)

// UploadHook tries to make item resident on the GPU. It reports whether it
// claimed the item; the first hook to claim an item ends the chain for it.
type UploadHook func(f *UploadForcer, item any) bool

// UploadOption configures an UploadForcer.
type UploadOption func(*UploadForcer)

// WithSurface replaces the default 16x16 ebiten surface.
func WithSurface(s Surface) UploadOption {
	return func(f *UploadForcer) {
		f.surface = s
	}
}

// WithHooks registers hooks after the built-in texture hook.
func WithHooks(hooks ...UploadHook) UploadOption {
	return func(f *UploadForcer) {
		f.hooks = append(f.hooks, hooks...)
	}
}

// UploadForcer forces lazily uploaded images onto the GPU ahead of their first
// real draw by drawing a small crop of each through an offscreen surface.
//
// The forcer never creates work on its own. A scheduler such as Prepare hands
// it items through Process. An UploadForcer owns its surface exclusively and
// is not safe for concurrent use.
type UploadForcer struct {
	surface Surface
	hooks   []UploadHook
}

// NewUploadForcer creates a forcer with the built-in UploadIfTexture hook
// registered first.
func NewUploadForcer(opts ...UploadOption) *UploadForcer {
	f := &UploadForcer{hooks: []UploadHook{UploadIfTexture}}
	for _, opt := range opts {
		opt(f)
	}
	if f.surface == nil {
		f.surface = NewEbitenSurface(16, 16)
	}
	return f
}

// RegisterHook appends h to the hook chain. Registering the same hook twice
// runs it twice.
func (f *UploadForcer) RegisterHook(h UploadHook) {
	if h == nil {
		panic("sapling: RegisterHook with nil hook")
	}
	f.hooks = append(f.hooks, h)
}

// Process runs the hook chain on item in registration order and reports
// whether any hook claimed it. An unclaimed item is the caller's to handle.
func (f *UploadForcer) Process(item any) bool {
	for _, h := range f.hooks {
		if h(f, item) {
			return true
		}
	}
	return false
}

// Surface returns the offscreen surface, or nil after Destroy.
func (f *UploadForcer) Surface() Surface {
	return f.surface
}

// Destroy releases the surface. The forcer must not process textures
// afterwards; the built-in hook panics if it does.
func (f *UploadForcer) Destroy() {
	if f.surface != nil {
		f.surface.Release()
		f.surface = nil
	}
}

// UploadIfTexture is the built-in hook. It claims every TextureSource and
// draws the top-left corner of its source, at most surface-sized, over the
// whole surface. A *Texture is drawn from its GPU copy, which is made here
// when the texture was built from a CPU image, so the pixel upload happens now
// rather than on the texture's first real draw. It returns true for any
// texture-like item whatever the draw does, and false without drawing for
// anything else.
func UploadIfTexture(f *UploadForcer, item any) bool {
	ts, ok := item.(TextureSource)
	if !ok {
		return false
	}
	if f.surface == nil {
		panic("sapling: upload surface released")
	}
	src, err := uploadSource(ts)
	if err != nil {
		Logger().Debug("upload skipped", "type", typeName(item), "err", err)
		return true
	}
	if src == nil {
		return true
	}
	b := src.Bounds()
	crop := UploadCrop(b.Dx(), b.Dy(), f.surface.Width(), f.surface.Height())
	f.surface.DrawCropped(src, crop)
	return true
}

// uploadSource resolves the image UploadIfTexture draws for ts.
func uploadSource(ts TextureSource) (image.Image, error) {
	t, ok := ts.(*Texture)
	if !ok {
		return ts.Source(), nil
	}
	if t == nil {
		return nil, nil
	}
	img, err := t.gpuBase()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// UploadCrop returns the source rectangle UploadIfTexture draws for a srcW x
// srcH image through a sw x sh surface. A zero source dimension falls back to
// the surface dimension, since some decoders report zero for images that do
// hold pixels.
func UploadCrop(srcW, srcH, sw, sh int) image.Rectangle {
	iw := sw
	if srcW != 0 {
		iw = min(sw, srcW)
	}
	ih := sh
	if srcH != 0 {
		ih = min(sh, srcH)
	}
	return image.Rect(0, 0, iw, ih)
}

// typeName formats v's dynamic type for log attributes.
func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
