package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/scenecore/app"
	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/persist"
	"github.com/milk9111/scenecore/render/ebitenrender"
	"go.uber.org/zap"
)

const quicksavePath = "saves/quicksave.yaml"

type Game struct {
	app      *app.App
	renderer *ebitenrender.Renderer

	paused bool
	quit   bool
	status string
	ui     *ebitenui.UI
}

func NewGame(a *app.App) *Game {
	g := &Game{
		app:      a,
		renderer: ebitenrender.NewRenderer(nil),
	}
	g.ui = NewPauseUI(g)
	return g
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.app.SetDebugDraw(!g.app.Config.DebugDraw)
	}
	if g.paused {
		g.ui.Update()
		return nil
	}

	g.app.Step()
	for _, ev := range g.app.World.Events() {
		logging.Logger().Debug("collision",
			zap.Uint64("frame", ev.Frame),
			zap.String("a", ev.A.Name),
			zap.String("b", ev.B.Name),
			zap.Stringer("state", ev.State))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x18, G: 0x18, B: 0x20, A: 0xff})
	g.renderer.Zoom = g.app.World.Camera.Zoom
	g.app.World.Draw(g.renderer, nil)
	g.renderer.Flush(screen)

	w := g.app.World
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frame: %d  FPS: %.2f  Entities: %d  %s",
		w.Frame(), ebiten.ActualFPS(), w.Len(), g.status))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.app.Config.Window.Width, g.app.Config.Window.Height
}

func (g *Game) resume() {
	g.paused = false
}

func (g *Game) save() {
	if err := persist.Save(g.app.World, quicksavePath); err != nil {
		logging.Logger().Warn("quicksave failed", zap.Error(err))
		g.status = "save failed"
		return
	}
	g.status = "saved " + quicksavePath
}

func (g *Game) restart() {
	if err := g.app.LoadScene(""); err != nil {
		logging.Logger().Warn("restart failed", zap.Error(err))
		g.status = "restart failed"
		return
	}
	g.status = ""
	g.paused = false
}
