package argallery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Gallery wires the scene, shared context, tracker, composer, dispatcher and
// bridge together. Hosts attach a session and view, forward input through
// Bridge and call Update once per frame.
type Gallery struct {
	scene      *Scene
	ctx        *Context
	composer   *Composer
	dispatcher *Dispatcher
	bridge     *Bridge

	picker *FilePicker
	pick   *PickOperation

	script *Script
	sim    *SimSession
}

// New creates a gallery from cfg. The selected image starts as a built-in
// placeholder until a pick succeeds.
func New(cfg Config) (*Gallery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new gallery: %w", err)
	}
	scene := NewScene()
	scene.SetDebugMode(cfg.Debug)

	ctx := NewContext(scene, cfg)
	ctx.SetImage(placeholderImage())

	composer := NewComposer(ctx)
	if cfg.Frame.Texture != "" {
		tex, err := LoadImage(cfg.Frame.Texture)
		if err != nil {
			return nil, fmt.Errorf("new gallery: frame texture: %w", err)
		}
		composer.SetFrameTexture(tex)
	}
	dispatcher := NewDispatcher(ctx, composer)

	return &Gallery{
		scene:      scene,
		ctx:        ctx,
		composer:   composer,
		dispatcher: dispatcher,
		bridge:     NewBridge(ctx, dispatcher),
		picker:     NewFilePicker(DefaultPickerConfig()),
	}, nil
}

// Attach connects a tracking session and its view and starts vertical plane
// detection. A previously attached session stops delivering callbacks.
func (g *Gallery) Attach(session TrackingSession, view View) {
	g.ctx.SetView(view)
	g.bridge.AttachSession(session)
	if sim, ok := session.(*SimSession); ok {
		g.sim = sim
	} else {
		g.sim = nil
	}
	if session != nil {
		session.Run(TrackingConfig{PlaneDetection: AlignmentVertical})
	}
}

// Scene returns the scene.
func (g *Gallery) Scene() *Scene { return g.scene }

// Context returns the shared context.
func (g *Gallery) Context() *Context { return g.ctx }

// Bridge returns the input and session bridge.
func (g *Gallery) Bridge() *Bridge { return g.bridge }

// Dispatcher returns the gesture dispatcher.
func (g *Gallery) Dispatcher() *Dispatcher { return g.dispatcher }

// Composer returns the painting composer.
func (g *Gallery) Composer() *Composer { return g.composer }

// Tracker returns the plane tracker.
func (g *Gallery) Tracker() *PlaneTracker { return g.ctx.Tracker() }

// SetPicker replaces the picker used by Pick.
func (g *Gallery) SetPicker(p *FilePicker) { g.picker = p }

// Pick starts loading the image at path in the background, cancelling a pick
// still running. The selected image changes on a later Update, and only if
// the pick succeeds.
func (g *Gallery) Pick(path string) *PickOperation {
	if g.pick != nil {
		g.pick.Cancel()
	}
	g.pick = g.picker.Pick(context.Background(), path)
	return g.pick
}

// Picking returns the pick in progress, or nil.
func (g *Gallery) Picking() *PickOperation { return g.pick }

// SetScript attaches a script replayed from Update against the attached
// simulated session.
func (g *Gallery) SetScript(s *Script) { g.script = s }

// Update lands finished picks, advances the script and updates the scene.
func (g *Gallery) Update(dt float32) {
	g.pollPick()
	if g.script != nil && !g.script.Done() {
		g.script.step(g, g.sim)
		if g.script.Done() {
			debugf("script finished: %v", g.script)
		}
	}
	g.scene.Update(dt)
}

func (g *Gallery) pollPick() {
	if g.pick == nil {
		return
	}
	select {
	case <-g.pick.Done():
	default:
		return
	}
	op := g.pick
	g.pick = nil
	img, err := op.Result()
	switch {
	case errors.Is(err, ErrPickCancelled):
		debugf("pick %s cancelled", op.Path())
	case err != nil:
		logf("%v", err)
	default:
		g.ctx.SetImage(img)
	}
}

// LoadImage synchronously loads an upright image from path.
func LoadImage(path string) (image.Image, error) {
	return NewFilePicker(PickerConfig{SelectionLimit: 1}).Pick(context.Background(), path).Result()
}

// placeholderImage is shown until the user picks an image: a 3:4 portrait
// checkerboard.
func placeholderImage() image.Image {
	const w, h, cell = 48, 64, 8
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	light := color.NRGBA{R: 235, G: 225, B: 205, A: 255}
	dark := color.NRGBA{R: 120, G: 140, B: 170, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, dark)
			}
		}
	}
	return img
}
