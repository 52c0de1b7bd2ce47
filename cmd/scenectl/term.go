package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/scenecore/app"
	"github.com/milk9111/scenecore/render/termrender"
	"github.com/spf13/cobra"
)

func NewTermCmd(root *rootOptions) *cobra.Command {
	var scene string
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Play a scene in the terminal (space pauses, d toggles colliders, q quits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.LoadScene(scene); err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			newTermView(a, screen).run(0)
			return nil
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "scene file (defaults to the config's scene)")
	return cmd
}

type termView struct {
	app      *app.App
	screen   tcell.Screen
	renderer *termrender.Renderer
	paused   bool
}

func newTermView(a *app.App, screen tcell.Screen) *termView {
	return &termView{app: a, screen: screen, renderer: termrender.NewRenderer()}
}

// run steps the world on a ticker until the user quits. A positive maxTicks
// stops it after that many ticks.
func (v *termView) run(maxTicks int) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) * v.app.Config.Step()))
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticks := 0
	for {
		select {
		case ev := <-events:
			if !v.handle(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				v.app.Step()
				v.app.World.Events()
			}
			v.draw()
			ticks++
			if maxTicks > 0 && ticks >= maxTicks {
				return
			}
		}
	}
}

func (v *termView) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'd':
				v.app.SetDebugDraw(!v.app.Config.DebugDraw)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *termView) draw() {
	w := v.app.World
	v.app.World.Draw(v.renderer, nil)
	v.renderer.Flush(v.screen)
	status := fmt.Sprintf("frame %d  entities %d", w.Frame(), w.Len())
	if v.paused {
		status += "  [paused]"
	}
	for i, r := range status {
		v.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}
