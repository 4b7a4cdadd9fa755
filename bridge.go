package argallery

// Bridge connects a tracking session and host input to the gallery
// components. It is the session's delegate: plane callbacks go to the
// tracker, taps and pinches to the dispatcher. The remaining session
// callbacks carry no application logic.
type Bridge struct {
	ctx        *Context
	dispatcher *Dispatcher
}

var _ SessionDelegate = (*Bridge)(nil)

// NewBridge creates a bridge over ctx.
func NewBridge(ctx *Context, dispatcher *Dispatcher) *Bridge {
	return &Bridge{ctx: ctx, dispatcher: dispatcher}
}

// AttachSession makes session the context's session with this bridge as its
// only delegate. A different session attached earlier is detached first so it
// can no longer deliver callbacks.
func (b *Bridge) AttachSession(session TrackingSession) {
	if old := b.ctx.Session(); old != nil && old != session {
		old.SetDelegate(nil)
	}
	b.ctx.setSession(session)
	if session != nil {
		session.SetDelegate(b)
	}
}

// DetachSession clears the session and its delegate.
func (b *Bridge) DetachSession() {
	b.AttachSession(nil)
}

// OnAnchorAdded forwards a new plane to the tracker.
func (b *Bridge) OnAnchorAdded(node *Node, anchor PlaneAnchor) {
	b.ctx.Tracker().OnPlaneDetected(node, anchor)
}

// OnAnchorUpdated forwards a plane update to the tracker.
func (b *Bridge) OnAnchorUpdated(_ *Node, anchor PlaneAnchor) {
	b.ctx.Tracker().OnPlaneUpdated(anchor)
}

// OnAnchorRemoved forwards a lost plane to the tracker.
func (b *Bridge) OnAnchorRemoved(_ *Node, anchor PlaneAnchor) {
	b.ctx.Tracker().OnPlaneRemoved(anchor)
}

// OnFrame implements SessionDelegate.
func (b *Bridge) OnFrame(Frame) {}

// OnSessionInterrupted implements SessionDelegate.
func (b *Bridge) OnSessionInterrupted() {
	debugf("session interrupted")
}

// OnSessionInterruptionEnded implements SessionDelegate.
func (b *Bridge) OnSessionInterruptionEnded() {
	debugf("session interruption ended")
}

// OnSessionFailed implements SessionDelegate.
func (b *Bridge) OnSessionFailed(err error) {
	debugf("session failed: %v", err)
}

// OnTap forwards a tap to the dispatcher.
func (b *Bridge) OnTap(pt Vec2) *Node {
	return b.dispatcher.Tap(pt)
}

// OnPinch forwards a pinch update to the dispatcher.
func (b *Bridge) OnPinch(ev PinchEvent) {
	b.dispatcher.Pinch(ev)
}
