package argallery

import (
	"image"
)

// Context is the single owner of the mutable state shared by the bridge,
// tracker, dispatcher and composer. Components hold a pointer to it and go
// through its accessors; none keeps its own copy of the session, view or
// selected image.
type Context struct {
	scene   *Scene
	session TrackingSession
	view    View
	tracker *PlaneTracker
	image   image.Image
	current *Node
	float   *Node
	cfg     Config
}

// NewContext creates a context over scene with a fresh plane tracker.
func NewContext(scene *Scene, cfg Config) *Context {
	return &Context{
		scene:   scene,
		tracker: NewPlaneTracker(scene, cfg.GridColor),
		cfg:     cfg,
	}
}

// Scene returns the shared scene.
func (c *Context) Scene() *Scene { return c.scene }

// Session returns the attached tracking session, or nil.
func (c *Context) Session() TrackingSession { return c.session }

// View returns the attached camera view, or nil.
func (c *Context) View() View { return c.view }

// SetView replaces the camera view.
func (c *Context) SetView(v View) { c.view = v }

// Tracker returns the plane tracker.
func (c *Context) Tracker() *PlaneTracker { return c.tracker }

// Image returns the selected image, or nil if none was picked yet.
func (c *Context) Image() image.Image { return c.image }

// SetImage replaces the selected image. A nil image is ignored so a failed
// pick never clears an earlier selection.
func (c *Context) SetImage(img image.Image) {
	if img == nil {
		return
	}
	c.image = img
}

// Current returns the painting pinch gestures act on, or nil.
func (c *Context) Current() *Node {
	if c.current != nil && c.current.IsDisposed() {
		c.current = nil
	}
	return c.current
}

// FreeFloat returns the live free-float painting, or nil. At most one exists
// at a time; wall paintings are never tracked here.
func (c *Context) FreeFloat() *Node {
	if c.float != nil && c.float.IsDisposed() {
		c.float = nil
	}
	return c.float
}

// Config returns the configuration.
func (c *Context) Config() Config { return c.cfg }

func (c *Context) setSession(s TrackingSession) { c.session = s }

func (c *Context) setCurrent(n *Node) { c.current = n }

func (c *Context) setFreeFloat(n *Node) { c.float = n }
