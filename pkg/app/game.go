package app

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/hakutaku/hakoniwa/pkg/engine"
)

// Game hosts the engine inside Ebitengine's frame loop: one engine tick per
// Update, scene and diagnostics rendering in Draw.
type Game struct {
	engine  *engine.Engine
	timeout time.Duration
	started time.Time
}

// NewGame wraps an engine for the windowed host.
func NewGame(e *engine.Engine, timeout time.Duration) *Game {
	return &Game{
		engine:  e,
		timeout: timeout,
		started: time.Now(),
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.timeout > 0 && time.Since(g.started) >= g.timeout {
		return ebiten.Termination
	}
	g.engine.Update()
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	for _, obj := range g.engine.Objects() {
		switch obj.Kind {
		case engine.KindSprite:
			vector.DrawFilledRect(screen,
				float32(obj.X), float32(obj.Y), ballSize, ballSize,
				color.RGBA{R: 0x66, G: 0xCC, B: 0xFF, A: 0xFF}, false)
		case engine.KindText:
			text.Draw(screen, obj.Text, basicfont.Face7x13, int(obj.X), int(obj.Y), color.White)
		}
	}
	g.drawHUD(screen)
}

// drawHUD shows the run state plus the stuck or halt diagnosis. This is the
// presentation of the engine's diagnostic read-outs.
func (g *Game) drawHUD(screen *ebiten.Image) {
	face := basicfont.Face7x13
	text.Draw(screen, fmt.Sprintf("state: %s", g.engine.State()), face, 8, 16, color.White)

	if diag := g.engine.StuckLoopInfo(); diag != nil {
		msg := fmt.Sprintf("stuck loop: %s lines %d-%d (%d iterations)",
			diag.Script, diag.StartLine, diag.EndLine, diag.Count)
		text.Draw(screen, msg, face, 8, 32, color.RGBA{R: 0xFF, G: 0xCC, B: 0x00, A: 0xFF})
	}

	if info := g.engine.RuntimeErrorInfo(); info != nil {
		loc := info.Script
		if info.HasLine {
			loc = fmt.Sprintf("%s:%d", info.Script, info.Line)
		}
		msg := fmt.Sprintf("script error at %s: %s", loc, info.Message)
		text.Draw(screen, msg, face, 8, 32, color.RGBA{R: 0xFF, G: 0x44, B: 0x44, A: 0xFF})
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return demoScreenW, demoScreenH
}

// runWindowed shows the scene in a window until it is closed or the timeout
// elapses.
func (app *Application) runWindowed() error {
	ebiten.SetWindowSize(demoScreenW, demoScreenH)
	ebiten.SetWindowTitle("hakoniwa")

	game := NewGame(app.engine, app.config.Timeout)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("host loop failed: %w", err)
	}
	app.log.Info("window closed", "state", app.engine.State().String())
	return nil
}
