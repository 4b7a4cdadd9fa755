package argallery

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	moveSpeed     = 1.5 // meters per second
	turnSpeed     = 1.2 // radians per second
	wheelStep     = 0.05
	wheelIdleTick = 12 // ticks without wheel input that end a wheel pinch
)

// game adapts a Gallery over a SimSession to ebiten.Game. The mouse and
// keyboard stand in for the device: clicks tap, the wheel or two fingers
// pinch, WASD and the arrow keys walk the camera.
type game struct {
	g   *Gallery
	sim *SimSession
	r   *Renderer
	fps *fpsOverlay
	cfg RunConfig

	yaw, pitch float64

	wheelScale float64
	wheelIdle  int
	pinching   bool

	touchIDs   []ebiten.TouchID
	touchDist  float64
	touchScale float64
}

// Run opens a window and drives g until the window is closed. When g has no
// simulated session attached, one covering the window is created.
func Run(g *Gallery, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "argallery"
	}
	sim := g.sim
	if sim == nil {
		sim = NewSimSession(g.scene, cfg.Width, cfg.Height)
		g.Attach(sim, sim)
	}
	if cfg.Script != nil {
		g.SetScript(cfg.Script)
	}

	gm := &game{g: g, sim: sim, r: NewRenderer(g.scene), cfg: cfg}
	if cfg.ShowFPS {
		gm.fps = newFPSOverlay()
	}
	sim.SetSnapshotter(gm.r.Snapshot)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(gm); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func (gm *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	gm.walk(dt)
	gm.keys()
	gm.pointer()
	gm.wheel()
	gm.touches()

	gm.sim.Step(dt)
	gm.g.Update(float32(dt))
	if gm.fps != nil {
		gm.fps.Update(dt, gm.g)
	}
	return nil
}

func (gm *game) Draw(screen *ebiten.Image) {
	gm.r.Draw(screen, gm.sim.PointOfView(), gm.sim.Projection())
	if gm.fps != nil {
		gm.fps.Draw(screen)
	}
}

func (gm *game) Layout(w, h int) (int, int) {
	gm.sim.SetViewport(w, h)
	return w, h
}

func (gm *game) walk(dt float64) {
	pressed := func(keys ...ebiten.Key) float64 {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				return 1
			}
		}
		return 0
	}
	gm.yaw += turnSpeed * dt * (pressed(ebiten.KeyQ, ebiten.KeyArrowLeft) - pressed(ebiten.KeyE, ebiten.KeyArrowRight))
	gm.pitch += turnSpeed * dt * (pressed(ebiten.KeyR) - pressed(ebiten.KeyF))
	gm.pitch = math.Max(-1.4, math.Min(1.4, gm.pitch))

	fwd := pressed(ebiten.KeyW, ebiten.KeyArrowUp) - pressed(ebiten.KeyS, ebiten.KeyArrowDown)
	side := pressed(ebiten.KeyD) - pressed(ebiten.KeyA)
	turned := pressed(ebiten.KeyQ, ebiten.KeyE, ebiten.KeyArrowLeft, ebiten.KeyArrowRight, ebiten.KeyR, ebiten.KeyF)
	if fwd == 0 && side == 0 && turned == 0 {
		return
	}
	// Scripts may have moved the camera since the last key press.
	pos := gm.sim.PointOfView().Position
	sin, cos := math.Sincos(gm.yaw)
	pos.X += moveSpeed * dt * (-sin*fwd + cos*side)
	pos.Z += moveSpeed * dt * (-cos*fwd - sin*side)
	gm.sim.SetCameraPose(pos, gm.yaw, gm.pitch)
}

func (gm *game) keys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		d := gm.g.Dispatcher()
		if d.Mode() == PlaceOnWall {
			d.SetMode(PlaceFreeFloat)
		} else {
			d.SetMode(PlaceOnWall)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) && gm.cfg.ImagePath != "" {
		gm.g.Pick(gm.cfg.ImagePath)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if op := gm.g.Picking(); op != nil {
			op.Cancel()
		}
	}
}

func (gm *game) pointer() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		gm.g.Bridge().OnTap(Vec2{X: float64(x), Y: float64(y)})
	}
}

// wheel turns scroll input into a pinch gesture that ends after a short
// pause.
func (gm *game) wheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		if gm.pinching && len(gm.touchIDs) < 2 {
			gm.wheelIdle++
			if gm.wheelIdle >= wheelIdleTick {
				gm.pinching = false
				gm.g.Bridge().OnPinch(PinchEvent{Scale: gm.wheelScale, State: GestureEnded})
			}
		}
		return
	}
	gm.wheelIdle = 0
	if !gm.pinching {
		gm.pinching = true
		gm.wheelScale = 1
		gm.g.Bridge().OnPinch(PinchEvent{Scale: 1, State: GestureBegan})
	}
	gm.wheelScale = math.Max(0.05, gm.wheelScale*(1+wheelStep*dy))
	gm.g.Bridge().OnPinch(PinchEvent{Scale: gm.wheelScale, State: GestureChanged})
}

// touches maps one-finger taps to taps and two-finger spreads to pinches.
func (gm *game) touches() {
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		if len(ebiten.AppendTouchIDs(nil)) == 1 {
			x, y := ebiten.TouchPosition(id)
			gm.g.Bridge().OnTap(Vec2{X: float64(x), Y: float64(y)})
		}
	}

	gm.touchIDs = ebiten.AppendTouchIDs(gm.touchIDs[:0])
	if len(gm.touchIDs) < 2 {
		if gm.touchDist > 0 {
			gm.touchDist = 0
			gm.g.Bridge().OnPinch(PinchEvent{Scale: gm.touchScale, State: GestureEnded})
		}
		return
	}
	ax, ay := ebiten.TouchPosition(gm.touchIDs[0])
	bx, by := ebiten.TouchPosition(gm.touchIDs[1])
	dist := math.Hypot(float64(bx-ax), float64(by-ay))
	if dist == 0 {
		return
	}
	if gm.touchDist == 0 {
		gm.touchDist = dist
		gm.touchScale = 1
		gm.g.Bridge().OnPinch(PinchEvent{Scale: 1, State: GestureBegan})
		return
	}
	gm.touchScale = dist / gm.touchDist
	gm.g.Bridge().OnPinch(PinchEvent{Scale: gm.touchScale, State: GestureChanged})
}
