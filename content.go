package sapling

import "github.com/hajimehoshi/ebiten/v2"

// Content draws a node's own pixels. Render calls it after pushing the
// node's mask and before descending into children. Implementations that
// need to rasterize should check whether r is a Painter; a Renderer that
// cannot paint simply gets nothing drawn.
type Content interface {
	RenderContent(n *Node, r Renderer) error
}

// ContentFunc adapts a plain function to Content.
type ContentFunc func(n *Node, r Renderer) error

// RenderContent calls f(n, r).
func (f ContentFunc) RenderContent(n *Node, r Renderer) error {
	return f(n, r)
}

// nodeTint returns the node color with world alpha folded into A.
func nodeTint(n *Node) Color {
	return Color{n.Color.R, n.Color.G, n.Color.B, n.Color.A * n.worldAlpha}
}

// --- Sprite ---

// SpriteContent draws a texture frame with its top-left at the node's origin.
type SpriteContent struct {
	Texture *Texture
}

// RenderContent draws the sprite through r when r is a Painter.
func (c *SpriteContent) RenderContent(n *Node, r Renderer) error {
	p, ok := r.(Painter)
	if !ok || c.Texture == nil {
		return nil
	}
	img, err := c.Texture.Image()
	if err != nil {
		return err
	}
	p.DrawImage(img, n.worldTransform, nodeTint(n), n.BlendMode)
	return nil
}

// --- Mesh ---

// MeshContent draws arbitrary triangles. Vertex DstX/DstY are in the node's
// local space and SrcX/SrcY are relative to the texture frame. A nil Texture
// draws with a shared 1x1 white pixel so the node color shows through; give
// such vertices SrcX/SrcY of 0.5.
type MeshContent struct {
	Vertices []ebiten.Vertex
	Indices  []uint16
	Texture  *Texture

	transformed []ebiten.Vertex // preallocated transform buffer
}

// NewMesh creates a node that draws triangles with tex.
func NewMesh(name string, tex *Texture, vertices []ebiten.Vertex, indices []uint16) *Node {
	return NewNode(name, &MeshContent{Vertices: vertices, Indices: indices, Texture: tex})
}

// RenderContent transforms the vertices to world space and draws them through
// r when r is a Painter.
func (c *MeshContent) RenderContent(n *Node, r Renderer) error {
	p, ok := r.(Painter)
	if !ok || len(c.Vertices) == 0 || len(c.Indices) == 0 {
		return nil
	}
	img, srcX, srcY, err := meshImage(c.Texture)
	if err != nil {
		return err
	}
	c.transformed = ensureVertexBuffer(c.transformed, len(c.Vertices))
	transformVertices(c.Vertices, c.transformed, n.worldTransform, nodeTint(n), srcX, srcY)
	p.DrawTriangles(c.transformed, c.Indices, img, n.BlendMode)
	return nil
}

// meshImage resolves the image a mesh samples from along with the frame
// origin that vertex source coordinates are offset by.
func meshImage(tex *Texture) (*ebiten.Image, float32, float32, error) {
	if tex == nil {
		return ensureWhitePixel(), 0, 0, nil
	}
	img, err := tex.Image()
	if err != nil {
		return nil, 0, 0, err
	}
	return img, float32(tex.Frame.Min.X), float32(tex.Frame.Min.Y), nil
}
