package sapling

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// Resizable allows the window to be resized. The scene keeps drawing at
	// Width x Height.
	Resizable bool

	// ShowFPS prints FPS and TPS in the top-left corner.
	ShowFPS bool

	// Debug turns on the scene's debug mode.
	Debug bool
}

// Run opens a window and drives scene until the window closes or the scene's
// update callback returns an error. A render error ends the loop on the next
// tick and is returned.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("sapling: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.Debug {
		scene.SetDebugMode(true)
	}

	g := &game{scene: scene, cfg: cfg}
	Logger().Info("run", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	err := ebiten.RunGame(g)
	scene.Dispose()
	return err
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene   *Scene
	cfg     RunConfig
	drawErr error
}

func (g *game) Update() error {
	if g.drawErr != nil {
		return g.drawErr
	}
	return g.scene.Update(float32(1.0 / float64(ebiten.TPS())))
}

func (g *game) Draw(screen *ebiten.Image) {
	if err := g.scene.Draw(screen); err != nil && g.drawErr == nil {
		Logger().Error("frame failed", "err", err)
		g.drawErr = err
	}
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
