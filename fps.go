package argallery

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const fpsRefresh = 0.5 // seconds between overlay redraws

// fpsOverlay draws frame rate and gallery state in the top-left corner. The
// text is rendered into its own image every fpsRefresh seconds.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	line    string
}

func newFPSOverlay() *fpsOverlay {
	// Room for two lines of the debug font.
	return &fpsOverlay{img: ebiten.NewImage(420, 32), elapsed: fpsRefresh}
}

// Update redraws the overlay when it is due.
func (o *fpsOverlay) Update(dt float64, g *Gallery) {
	o.elapsed += dt
	if o.elapsed < fpsRefresh {
		return
	}
	o.elapsed = 0
	o.line = statusLine(g)

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f  TPS: %.1f\n%s", ebiten.ActualFPS(), ebiten.ActualTPS(), o.line))
}

// Draw composites the overlay onto screen.
func (o *fpsOverlay) Draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}

// statusLine summarizes placement mode, tracked walls, paintings and any
// pick in flight.
func statusLine(g *Gallery) string {
	s := fmt.Sprintf("mode %s  walls %d  paintings %d",
		g.Dispatcher().Mode(), g.Tracker().Len(), len(g.Scene().Paintings()))
	if op := g.Picking(); op != nil {
		s += fmt.Sprintf("  loading %3.0f%%", op.Progress()*100)
	}
	return s
}
