package argallery

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// --- Callback contexts ---

// GridContext carries grid lifecycle data.
type GridContext struct {
	Node     *Node
	AnchorID uuid.UUID
	Width    float64
	Height   float64
}

// PaintingContext carries painting lifecycle and scale data.
type PaintingContext struct {
	Node       *Node
	Mode       PlacementMode
	AnchorID   uuid.UUID // zero for free-float placements
	Position   r3.Vec    // world position
	Scale      r3.Vec
	ScaleDelta float64 // valid for EventScaled
}

// TapContext carries the screen point of a tap that placed nothing.
type TapContext struct {
	Point Vec2
	Mode  PlacementMode
}

// GalleryEvent carries event data for the optional EntityStore bridge.
type GalleryEvent struct {
	Type       EventType
	NodeID     uint32
	AnchorID   uuid.UUID
	Mode       PlacementMode
	Position   r3.Vec
	Scale      r3.Vec
	ScaleDelta float64
	Width      float64
	Height     float64
	Point      Vec2
}

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, gallery events are forwarded to it.
type EntityStore interface {
	EmitEvent(event GalleryEvent)
}

// --- Handler registry ---

type gridHandler struct {
	id uint32
	fn func(GridContext)
}

type paintingHandler struct {
	id uint32
	fn func(PaintingContext)
}

type tapHandler struct {
	id uint32
	fn func(TapContext)
}

type handlerRegistry struct {
	gridAdded   []gridHandler
	gridUpdated []gridHandler
	gridRemoved []gridHandler
	placed      []paintingHandler
	removed     []paintingHandler
	scaled      []paintingHandler
	tapMissed   []tapHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventGridAdded:
		h.reg.gridAdded = removeHandler(h.reg.gridAdded, h.id, func(g gridHandler) uint32 { return g.id })
	case EventGridUpdated:
		h.reg.gridUpdated = removeHandler(h.reg.gridUpdated, h.id, func(g gridHandler) uint32 { return g.id })
	case EventGridRemoved:
		h.reg.gridRemoved = removeHandler(h.reg.gridRemoved, h.id, func(g gridHandler) uint32 { return g.id })
	case EventPlaced:
		h.reg.placed = removeHandler(h.reg.placed, h.id, func(p paintingHandler) uint32 { return p.id })
	case EventRemoved:
		h.reg.removed = removeHandler(h.reg.removed, h.id, func(p paintingHandler) uint32 { return p.id })
	case EventScaled:
		h.reg.scaled = removeHandler(h.reg.scaled, h.id, func(p paintingHandler) uint32 { return p.id })
	case EventTapMissed:
		h.reg.tapMissed = removeHandler(h.reg.tapMissed, h.id, func(t tapHandler) uint32 { return t.id })
	}
}

func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Scene-level event registration ---

// OnGridAdded registers a callback fired when a wall grid is created.
func (s *Scene) OnGridAdded(fn func(GridContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.gridAdded = append(s.handlers.gridAdded, gridHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventGridAdded}
}

// OnGridUpdated registers a callback fired when a wall grid is resized.
func (s *Scene) OnGridUpdated(fn func(GridContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.gridUpdated = append(s.handlers.gridUpdated, gridHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventGridUpdated}
}

// OnGridRemoved registers a callback fired when a grid is consumed by a
// placement or its plane is lost.
func (s *Scene) OnGridRemoved(fn func(GridContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.gridRemoved = append(s.handlers.gridRemoved, gridHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventGridRemoved}
}

// OnPlaced registers a callback fired after a painting is inserted.
func (s *Scene) OnPlaced(fn func(PaintingContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.placed = append(s.handlers.placed, paintingHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPlaced}
}

// OnRemoved registers a callback fired after a painting is removed.
func (s *Scene) OnRemoved(fn func(PaintingContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.removed = append(s.handlers.removed, paintingHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventRemoved}
}

// OnScaled registers a callback fired after a pinch scales the current
// painting.
func (s *Scene) OnScaled(fn func(PaintingContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.scaled = append(s.handlers.scaled, paintingHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventScaled}
}

// OnTapMissed registers a callback fired when a wall-mode tap places nothing.
func (s *Scene) OnTapMissed(fn func(TapContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.tapMissed = append(s.handlers.tapMissed, tapHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventTapMissed}
}

// --- Dispatch ---

func (s *Scene) fireGrid(ev EventType, g *GridNode) {
	w, h := g.Extent()
	ctx := GridContext{Node: g.node, AnchorID: g.AnchorID(), Width: w, Height: h}
	var hs []gridHandler
	switch ev {
	case EventGridAdded:
		hs = s.handlers.gridAdded
	case EventGridUpdated:
		hs = s.handlers.gridUpdated
	case EventGridRemoved:
		hs = s.handlers.gridRemoved
	}
	for _, h := range hs {
		h.fn(ctx)
	}
	s.emit(GalleryEvent{
		Type:     ev,
		NodeID:   g.node.ID,
		AnchorID: ctx.AnchorID,
		Width:    w,
		Height:   h,
	})
}

func (s *Scene) firePainting(ev EventType, ctx PaintingContext) {
	var hs []paintingHandler
	switch ev {
	case EventPlaced:
		hs = s.handlers.placed
	case EventRemoved:
		hs = s.handlers.removed
	case EventScaled:
		hs = s.handlers.scaled
	}
	for _, h := range hs {
		h.fn(ctx)
	}
	var nodeID uint32
	if ctx.Node != nil {
		nodeID = ctx.Node.ID
	}
	s.emit(GalleryEvent{
		Type:       ev,
		NodeID:     nodeID,
		AnchorID:   ctx.AnchorID,
		Mode:       ctx.Mode,
		Position:   ctx.Position,
		Scale:      ctx.Scale,
		ScaleDelta: ctx.ScaleDelta,
	})
}

func (s *Scene) fireTapMissed(ctx TapContext) {
	for _, h := range s.handlers.tapMissed {
		h.fn(ctx)
	}
	s.emit(GalleryEvent{Type: EventTapMissed, Mode: ctx.Mode, Point: ctx.Point})
}

func (s *Scene) emit(ev GalleryEvent) {
	if s.store != nil {
		s.store.EmitEvent(ev)
	}
}
