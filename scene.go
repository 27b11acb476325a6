package sapling

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is the top-level object that owns the node tree, the canvas renderer,
// and the upload machinery that feeds it.
type Scene struct {
	root     *Node
	renderer *CanvasRenderer
	forcer   *UploadForcer
	prepare  *Prepare
	tweens   []*TweenGroup
	updateFn func() error
	debug    bool

	// ClearColor fills the target before each Draw. The zero value leaves
	// the target untouched.
	ClearColor Color
}

// NewScene creates a scene with a root container. opts configure the scene's
// UploadForcer.
func NewScene(opts ...UploadOption) *Scene {
	forcer := NewUploadForcer(opts...)
	return &Scene{
		root:     NewContainer("root"),
		renderer: NewCanvasRenderer(),
		forcer:   forcer,
		prepare:  NewPrepare(forcer),
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Renderer returns the scene's canvas renderer.
func (s *Scene) Renderer() *CanvasRenderer {
	return s.renderer
}

// Forcer returns the scene's upload forcer. Register custom upload hooks on
// it.
func (s *Scene) Forcer() *UploadForcer {
	return s.forcer
}

// Prepare returns the upload queue drained at the start of every Draw.
func (s *Scene) Prepare() *Prepare {
	return s.prepare
}

// SetUpdateFunc sets a callback run at the end of every Update. A non-nil
// error stops Run.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFn = fn
}

// AddTween registers g to be advanced by Update until it is done.
func (s *Scene) AddTween(g *TweenGroup) {
	if g == nil {
		panic("sapling: AddTween with nil group")
	}
	s.tweens = append(s.tweens, g)
}

// NumTweens returns the number of tweens still running.
func (s *Scene) NumTweens() int {
	return len(s.tweens)
}

// Update advances tweens by dt seconds, drops finished ones, and runs the
// update callback.
func (s *Scene) Update(dt float32) error {
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live

	if s.updateFn != nil {
		return s.updateFn()
	}
	return nil
}

// Draw uploads the next batch of prepared items, refreshes transforms, and
// renders the tree onto screen. A content error aborts the frame and is
// returned; the renderer's mask stack is balanced either way.
func (s *Scene) Draw(screen *ebiten.Image) error {
	var start time.Time
	if s.debug {
		start = time.Now()
	}

	prepared := s.prepare.Tick()
	UpdateTransforms(s.root)

	if s.ClearColor != (Color{}) {
		screen.Fill(s.ClearColor.toRGBA())
	}

	var st renderStats
	s.renderer.Begin(screen)
	err := render(s.root, s.renderer, &st)
	s.renderer.End()

	if s.debug {
		s.debugLog(st, prepared, time.Since(start))
	}
	return err
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and per-frame
// render stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Dispose destroys the upload forcer and frees the renderer's mask layers.
// The scene must not be drawn afterwards.
func (s *Scene) Dispose() {
	s.forcer.Destroy()
	s.renderer.Dispose()
	s.tweens = nil
}
