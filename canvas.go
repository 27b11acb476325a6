package sapling

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// maskLayer is one level of the canvas mask stack: an offscreen image that
// collects the masked subtree's drawing until the matching PopMask.
type maskLayer struct {
	img  *ebiten.Image
	mask *Node
}

// CanvasRenderer is the software-path Painter. It draws straight onto a target
// image and implements masks as a stack of pooled offscreen layers: PushMask
// redirects drawing into a fresh layer, and PopMask clips that layer to the
// mask's alpha and composites it onto the layer below.
//
// A CanvasRenderer is not safe for concurrent use.
type CanvasRenderer struct {
	target *ebiten.Image
	layers []maskLayer
	pool   renderTexturePool

	drawOp ebiten.DrawImageOptions
	triOp  ebiten.DrawTrianglesOptions

	// maskFailures counts mask subtrees that failed to render during PopMask.
	maskFailures int
}

// NewCanvasRenderer creates a renderer with no target. Call Begin before
// drawing.
func NewCanvasRenderer() *CanvasRenderer {
	return &CanvasRenderer{}
}

// Begin sets the frame's target image.
func (c *CanvasRenderer) Begin(target *ebiten.Image) {
	if target == nil {
		panic("sapling: CanvasRenderer.Begin with nil target")
	}
	if len(c.layers) != 0 {
		panic("sapling: CanvasRenderer.Begin with unbalanced masks")
	}
	c.target = target
}

// End finishes the frame. It panics if a PushMask was left unpaired.
func (c *CanvasRenderer) End() {
	if len(c.layers) != 0 {
		panic("sapling: CanvasRenderer.End with unbalanced masks")
	}
	c.target = nil
}

// Depth returns the number of masks currently pushed.
func (c *CanvasRenderer) Depth() int {
	return len(c.layers)
}

// current returns the image drawing is directed to.
func (c *CanvasRenderer) current() *ebiten.Image {
	if n := len(c.layers); n > 0 {
		return c.layers[n-1].img
	}
	if c.target == nil {
		panic("sapling: CanvasRenderer used outside Begin/End")
	}
	return c.target
}

// PushMask starts collecting drawing into a new layer that PopMask will clip
// to mask.
func (c *CanvasRenderer) PushMask(mask *Node) {
	b := c.current().Bounds()
	img := c.pool.Acquire(b.Max.X, b.Max.Y)
	c.layers = append(c.layers, maskLayer{img: img, mask: mask})
}

// PopMask clips the top layer to its mask and composites it onto the layer
// below. Panics without a matching PushMask. A panic raised by the mask's own
// content leaves the stack as it was before the matching PushMask.
func (c *CanvasRenderer) PopMask() {
	n := len(c.layers)
	if n == 0 {
		panic("sapling: PopMask without PushMask")
	}
	top := c.layers[n-1]
	c.layers = c.layers[:n-1]
	defer c.pool.Release(top.img)

	b := top.img.Bounds()
	shape := c.pool.Acquire(b.Dx(), b.Dy())
	defer c.pool.Release(shape)
	c.drawMaskShape(shape, top.mask)

	var op ebiten.DrawImageOptions
	op.Blend = BlendMask.EbitenBlend()
	top.img.DrawImage(shape, &op)

	op = ebiten.DrawImageOptions{}
	c.current().DrawImage(top.img, &op)
}

// drawMaskShape rasterizes mask into shape. The mask draws through this
// renderer, so masks on mask nodes nest like any other. The shape layer is
// popped on every exit path.
func (c *CanvasRenderer) drawMaskShape(shape *ebiten.Image, mask *Node) {
	c.layers = append(c.layers, maskLayer{img: shape})
	depth := len(c.layers)
	defer func() {
		c.layers = c.layers[:depth-1]
	}()
	if err := Render(mask, c); err != nil {
		c.maskFailures++
		Logger().Warn("mask render failed", "mask", mask.Name, "err", err)
	}
}

// DrawImage draws img onto the current layer.
func (c *CanvasRenderer) DrawImage(img *ebiten.Image, transform [6]float64, tint Color, blend BlendMode) {
	op := &c.drawOp
	op.GeoM = affineGeoM(transform)
	op.ColorScale = tint.colorScale(1)
	op.Blend = blend.EbitenBlend()
	c.current().DrawImage(img, op)
}

// DrawTriangles draws premultiplied world-space vertices onto the current layer.
func (c *CanvasRenderer) DrawTriangles(vertices []ebiten.Vertex, indices []uint16, img *ebiten.Image, blend BlendMode) {
	if img == nil || len(vertices) == 0 || len(indices) == 0 {
		return
	}
	op := &c.triOp
	op.Blend = blend.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	c.current().DrawTriangles(vertices, indices, img, op)
}

// Dispose deallocates the pooled mask layers.
func (c *CanvasRenderer) Dispose() {
	c.pool.Dispose()
}

// affineGeoM converts a [6]float64 transform into an ebiten.GeoM.
func affineGeoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}
