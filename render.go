package sapling

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer is the mask capability the traversal drives. PushMask and PopMask
// calls made by Render are always paired and nest with subtree boundaries.
type Renderer interface {
	PushMask(mask *Node)
	PopMask()
}

// Painter is a Renderer that can also rasterize node content. Content
// implementations type-assert for it.
type Painter interface {
	Renderer
	// DrawImage draws img with the given [a, b, c, d, tx, ty] transform.
	// tint is not premultiplied and already carries world alpha in A.
	DrawImage(img *ebiten.Image, transform [6]float64, tint Color, blend BlendMode)
	// DrawTriangles draws world-space vertices with premultiplied colors.
	DrawTriangles(vertices []ebiten.Vertex, indices []uint16, img *ebiten.Image, blend BlendMode)
}

// Render draws n and its subtree depth-first, children in slice order.
//
// A node that is invisible, has world alpha <= 0, or is not renderable is
// skipped together with its whole subtree: no mask calls, no content, no
// descent. Otherwise its mask (if any) is pushed before its content draws and
// popped after the last child, on every exit path including errors and
// panics. The first content error stops the traversal and is returned.
//
// World alpha is read as computed by the last UpdateTransforms call.
func Render(n *Node, r Renderer) error {
	return render(n, r, nil)
}

// renderStats counts traversal work for debug logging.
type renderStats struct {
	visited    int
	culled     int
	maskPushes int
}

func render(n *Node, r Renderer, st *renderStats) error {
	if !n.Visible || n.worldAlpha <= 0 || !n.Renderable {
		if st != nil {
			st.culled++
		}
		return nil
	}
	if st != nil {
		st.visited++
	}

	if n.mask != nil {
		updateMaskTransform(n)
		r.PushMask(n.mask)
		defer r.PopMask()
		if st != nil {
			st.maskPushes++
		}
	}

	if n.Content != nil {
		if err := n.Content.RenderContent(n, r); err != nil {
			return fmt.Errorf("sapling: render %q: %w", n.Name, err)
		}
	}

	for _, child := range n.children {
		if err := render(child, r, st); err != nil {
			return err
		}
	}
	return nil
}
