package sapling

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// RopeJoinMode controls how segments join in a Rope mesh.
type RopeJoinMode uint8

const (
	// RopeJoinMiter extends segment corners to a sharp point.
	RopeJoinMiter RopeJoinMode = iota
	// RopeJoinBevel keeps the averaged normal unscaled, avoiding spikes.
	RopeJoinBevel
)

// RopeCurveMode selects the curve algorithm used by Rope.Update.
type RopeCurveMode uint8

const (
	RopeCurveLine        RopeCurveMode = iota // straight line from Start to End
	RopeCurveCatenary                         // drooping rope with Sag pixels of gravity
	RopeCurveQuadBezier                       // quadratic Bézier through Controls[0]
	RopeCurveCubicBezier                      // cubic Bézier through both Controls
	RopeCurveWave                             // sine wave along the Start→End line
	RopeCurveCustom                           // points from PointsFunc
)

// RopeConfig configures a Rope mesh.
type RopeConfig struct {
	// Width is the ribbon thickness for an untextured rope. A textured rope
	// is always as thick as its texture is tall.
	Width    float64
	JoinMode RopeJoinMode

	// TextureScale selects UV mapping along the path. Zero stretches the
	// texture once over the whole rope; a positive value tiles it, advancing
	// TextureScale texels per pixel of path length.
	TextureScale float64

	CurveMode RopeCurveMode
	Segments  int // number of subdivisions (default 20)

	// Endpoint positions (pointers). Update dereferences these each call,
	// so you can bind them once and mutate the underlying Vec2 freely.
	Start *Vec2
	End   *Vec2

	// Sag is the catenary droop in pixels.
	Sag float64

	// Controls are the Bézier control points. Quadratic uses Controls[0];
	// cubic uses both.
	Controls [2]*Vec2

	// Wave parameters.
	Amplitude float64
	Frequency float64 // cycles along the rope length
	Phase     float64 // phase offset in radians

	// PointsFunc receives a preallocated buffer and returns the path to use.
	PointsFunc func(buf []Vec2) []Vec2
}

// Rope is Content that draws a textured ribbon along a polyline.
//
// Geometry is rebuilt at render time only when AutoUpdate is set or the
// texture height no longer matches the width the vertices were built with,
// so a rope with a stable texture costs one UV pass and one draw per frame.
type Rope struct {
	Texture *Texture

	// AutoUpdate rebuilds geometry on every render.
	AutoUpdate bool

	node   *Node
	config RopeConfig
	points []Vec2

	vertices    []ebiten.Vertex
	indices     []uint16
	transformed []ebiten.Vertex
	width       float64 // width the current vertices were built with

	cumLen []float64 // cumulative path length per point
	ptsBuf []Vec2    // preallocated points buffer for Update
}

// NewRope creates a rope node following points. tex may be nil for a solid
// ribbon tinted by the node color.
func NewRope(name string, tex *Texture, points []Vec2, cfg RopeConfig) (*Rope, *Node) {
	r := &Rope{Texture: tex, config: cfg}
	r.width = r.targetWidth()
	n := NewNode(name, r)
	r.node = n
	r.SetPoints(points)
	return r, n
}

// Node returns the node the rope draws for.
func (r *Rope) Node() *Node {
	return r.node
}

// Config returns a pointer to the rope's configuration so callers can mutate
// fields directly before calling Update.
func (r *Rope) Config() *RopeConfig {
	return &r.config
}

// Width returns the width the current geometry was built with.
func (r *Rope) Width() float64 {
	return r.width
}

// Update recomputes the path from the current RopeConfig and rebuilds the
// mesh. Start and End must be non-nil except for RopeCurveCustom.
func (r *Rope) Update() {
	cfg := &r.config
	if cfg.CurveMode != RopeCurveCustom && (cfg.Start == nil || cfg.End == nil) {
		return
	}
	segs := cfg.Segments
	if segs <= 0 {
		segs = 20
	}

	if cfg.CurveMode == RopeCurveCustom {
		if cfg.PointsFunc == nil {
			return
		}
		r.ptsBuf = cfg.PointsFunc(r.ptsBuf[:0])
		r.SetPoints(r.ptsBuf)
		return
	}

	eval := r.curve()
	if eval == nil {
		return
	}
	if cap(r.ptsBuf) < segs+1 {
		r.ptsBuf = make([]Vec2, segs+1)
	}
	r.ptsBuf = r.ptsBuf[:segs+1]
	for i := range r.ptsBuf {
		r.ptsBuf[i] = eval(float64(i) / float64(segs))
	}
	r.SetPoints(r.ptsBuf)
}

// curve returns the parametric curve for the configured mode, or nil when a
// required control point is missing.
func (r *Rope) curve() func(t float64) Vec2 {
	cfg := &r.config
	s, e := *cfg.Start, *cfg.End
	switch cfg.CurveMode {
	case RopeCurveCatenary:
		return func(t float64) Vec2 {
			return Vec2{s.X + (e.X-s.X)*t, s.Y + (e.Y-s.Y)*t + cfg.Sag*math.Sin(math.Pi*t)}
		}
	case RopeCurveQuadBezier:
		if cfg.Controls[0] == nil {
			return nil
		}
		c := *cfg.Controls[0]
		return func(t float64) Vec2 {
			u := 1 - t
			return Vec2{
				u*u*s.X + 2*u*t*c.X + t*t*e.X,
				u*u*s.Y + 2*u*t*c.Y + t*t*e.Y,
			}
		}
	case RopeCurveCubicBezier:
		if cfg.Controls[0] == nil || cfg.Controls[1] == nil {
			return nil
		}
		c1, c2 := *cfg.Controls[0], *cfg.Controls[1]
		return func(t float64) Vec2 {
			u := 1 - t
			return Vec2{
				u*u*u*s.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*e.X,
				u*u*u*s.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*e.Y,
			}
		}
	case RopeCurveWave:
		dx, dy := e.X-s.X, e.Y-s.Y
		var px, py float64 // perpendicular unit vector
		if ln := math.Hypot(dx, dy); ln > 1e-10 {
			px, py = -dy/ln, dx/ln
		}
		return func(t float64) Vec2 {
			off := cfg.Amplitude * math.Sin(cfg.Frequency*2*math.Pi*t+cfg.Phase)
			return Vec2{s.X + dx*t + px*off, s.Y + dy*t + py*off}
		}
	default:
		return func(t float64) Vec2 {
			return Vec2{s.X + (e.X-s.X)*t, s.Y + (e.Y-s.Y)*t}
		}
	}
}

// maxRopePoints keeps every vertex index of a rope within uint16.
const maxRopePoints = 1 << 15

// SetPoints replaces the path and rebuilds the geometry at the current
// width. For N points: 2N vertices, 6(N-1) indices. Panics with more than
// 32768 points.
func (r *Rope) SetPoints(points []Vec2) {
	if len(points) > maxRopePoints {
		panic(fmt.Sprintf("sapling: rope %q has %d points, max %d", r.nodeName(), len(points), maxRopePoints))
	}
	if cap(r.points) < len(points) {
		r.points = make([]Vec2, len(points))
	}
	r.points = r.points[:len(points)]
	copy(r.points, points)
	r.buildGeometry()
}

func (r *Rope) nodeName() string {
	if r.node == nil {
		return ""
	}
	return r.node.Name
}

// targetWidth is the width the geometry should have for the current texture.
func (r *Rope) targetWidth() float64 {
	if r.Texture == nil {
		return r.config.Width
	}
	return float64(r.Texture.Height())
}

// buildGeometry lays out vertex positions and indices for r.points at r.width.
func (r *Rope) buildGeometry() {
	points := r.points
	n := len(points)
	if n < 2 {
		r.vertices = r.vertices[:0]
		r.indices = r.indices[:0]
		return
	}

	r.vertices = ensureVertexBuffer(r.vertices, n*2)
	numInds := (n - 1) * 6
	if cap(r.indices) < numInds {
		r.indices = make([]uint16, numInds)
	}
	r.indices = r.indices[:numInds]

	halfW := r.width / 2
	for i := 0; i < n; i++ {
		nx, ny := r.normalAt(i)
		vi := i * 2
		r.vertices[vi] = ebiten.Vertex{
			DstX:   float32(points[i].X + nx*halfW),
			DstY:   float32(points[i].Y + ny*halfW),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
		r.vertices[vi+1] = ebiten.Vertex{
			DstX:   float32(points[i].X - nx*halfW),
			DstY:   float32(points[i].Y - ny*halfW),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}

	// Two triangles per segment.
	for i := 0; i < n-1; i++ {
		ii := i * 6
		v := uint16(i * 2)
		r.indices[ii+0] = v
		r.indices[ii+1] = v + 1
		r.indices[ii+2] = v + 2
		r.indices[ii+3] = v + 1
		r.indices[ii+4] = v + 3
		r.indices[ii+5] = v + 2
	}
}

// normalAt returns the offset direction for point i. Interior points use the
// averaged normal of both segments, extended for miter joins (max 2x).
func (r *Rope) normalAt(i int) (float64, float64) {
	points := r.points
	n := len(points)
	if i == 0 {
		return perpendicular(points[0], points[1])
	}
	if i == n-1 {
		return perpendicular(points[n-2], points[n-1])
	}
	nx0, ny0 := perpendicular(points[i-1], points[i])
	nx1, ny1 := perpendicular(points[i], points[i+1])
	nx, ny := nx0+nx1, ny0+ny1
	if ln := math.Hypot(nx, ny); ln > 1e-10 {
		nx /= ln
		ny /= ln
	}
	if r.config.JoinMode == RopeJoinMiter {
		if dot := nx0*nx + ny0*ny; dot > 0.1 {
			scale := math.Min(1/dot, 2)
			nx *= scale
			ny *= scale
		}
	}
	return nx, ny
}

// calculateUVs assigns texture coordinates along the path in frame space.
func (r *Rope) calculateUVs() {
	n := len(r.points)
	if n < 2 {
		return
	}
	if r.Texture == nil {
		for i := range r.vertices {
			r.vertices[i].SrcX, r.vertices[i].SrcY = 0.5, 0.5
		}
		return
	}

	if cap(r.cumLen) < n {
		r.cumLen = make([]float64, n)
	}
	r.cumLen = r.cumLen[:n]
	r.cumLen[0] = 0
	for i := 1; i < n; i++ {
		r.cumLen[i] = r.cumLen[i-1] + math.Hypot(r.points[i].X-r.points[i-1].X, r.points[i].Y-r.points[i-1].Y)
	}
	total := r.cumLen[n-1]
	texW := float64(r.Texture.Width())
	texH := float32(r.Texture.Height())

	for i := 0; i < n; i++ {
		var u float64
		switch {
		case r.config.TextureScale > 0:
			u = r.cumLen[i] * r.config.TextureScale
		case total > 0:
			u = r.cumLen[i] / total * texW
		}
		r.vertices[i*2].SrcX, r.vertices[i*2].SrcY = float32(u), 0
		r.vertices[i*2+1].SrcX, r.vertices[i*2+1].SrcY = float32(u), texH
	}
}

// RenderContent rebuilds stale geometry, refreshes UVs and tint, and draws
// the ribbon through r when it is a Painter.
func (r *Rope) RenderContent(n *Node, rd Renderer) error {
	if w := r.targetWidth(); r.AutoUpdate || r.width != w {
		r.width = w
		r.buildGeometry()
	}
	p, ok := rd.(Painter)
	if !ok || len(r.indices) == 0 {
		return nil
	}
	img, srcX, srcY, err := meshImage(r.Texture)
	if err != nil {
		return err
	}
	r.calculateUVs()
	r.transformed = ensureVertexBuffer(r.transformed, len(r.vertices))
	transformVertices(r.vertices, r.transformed, n.worldTransform, nodeTint(n), srcX, srcY)
	p.DrawTriangles(r.transformed, r.indices, img, n.BlendMode)
	return nil
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}
