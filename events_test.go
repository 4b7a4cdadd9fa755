package argallery

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

// --- Scene-level callbacks ---

func TestSceneCallbacksFire(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	var got []EventType
	r.scene.OnGridAdded(func(GridContext) { got = append(got, EventGridAdded) })
	r.scene.OnGridUpdated(func(GridContext) { got = append(got, EventGridUpdated) })
	r.scene.OnGridRemoved(func(GridContext) { got = append(got, EventGridRemoved) })
	r.scene.OnPlaced(func(PaintingContext) { got = append(got, EventPlaced) })
	r.scene.OnScaled(func(PaintingContext) { got = append(got, EventScaled) })
	r.scene.OnTapMissed(func(TapContext) { got = append(got, EventTapMissed) })
	r.scene.OnRemoved(func(PaintingContext) { got = append(got, EventRemoved) })

	a := NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2)
	r.sim.AddAnchor(a)
	r.sim.UpdateAnchor(a)
	p := r.dispatcher.Tap(screenCenter)
	r.dispatcher.Tap(screenCenter)
	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.composer.Remove(p)

	want := []EventType{
		EventGridAdded,
		EventGridUpdated,
		EventGridRemoved, // consumed by the placement
		EventPlaced,
		EventTapMissed,
		EventScaled,
		EventRemoved,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	s := NewScene()
	var a, b int
	ha := s.OnTapMissed(func(TapContext) { a++ })
	s.OnTapMissed(func(TapContext) { b++ })

	s.fireTapMissed(TapContext{})
	ha.Remove()
	s.fireTapMissed(TapContext{})

	if a != 1 || b != 2 {
		t.Errorf("a=%d b=%d, want a=1 b=2", a, b)
	}
	ha.Remove() // removing twice is a no-op
	CallbackHandle{}.Remove()
}

func TestCallbackHandleRemoveEachKind(t *testing.T) {
	s := NewScene()
	var fired int
	grid := func(GridContext) { fired++ }
	painting := func(PaintingContext) { fired++ }
	handles := []CallbackHandle{
		s.OnGridAdded(grid),
		s.OnGridUpdated(grid),
		s.OnGridRemoved(grid),
		s.OnPlaced(painting),
		s.OnRemoved(painting),
		s.OnScaled(painting),
		s.OnTapMissed(func(TapContext) { fired++ }),
	}
	for _, h := range handles {
		h.Remove()
	}

	g := NewGridNode(NewWallAnchor(r3.Vec{}, 0, 1, 1), testTint)
	for _, ev := range []EventType{EventGridAdded, EventGridUpdated, EventGridRemoved} {
		s.fireGrid(ev, g)
	}
	for _, ev := range []EventType{EventPlaced, EventRemoved, EventScaled} {
		s.firePainting(ev, PaintingContext{})
	}
	s.fireTapMissed(TapContext{})
	if fired != 0 {
		t.Errorf("fired = %d after removing every handler", fired)
	}
}

func TestMultipleSceneHandlers(t *testing.T) {
	s := NewScene()
	var order []int
	s.OnPlaced(func(PaintingContext) { order = append(order, 1) })
	s.OnPlaced(func(PaintingContext) { order = append(order, 2) })
	s.OnPlaced(func(PaintingContext) { order = append(order, 3) })
	s.firePainting(EventPlaced, PaintingContext{})
	if diff := cmp.Diff([]int{1, 2, 3}, order); diff != "" {
		t.Errorf("handler order (-want +got):\n%s", diff)
	}
}

func TestIndependentScenes(t *testing.T) {
	s1, s2 := NewScene(), NewScene()
	var c1, c2 int
	s1.OnTapMissed(func(TapContext) { c1++ })
	s2.OnTapMissed(func(TapContext) { c2++ })
	s1.fireTapMissed(TapContext{})
	if c1 != 1 || c2 != 0 {
		t.Errorf("c1=%d c2=%d, want 1, 0", c1, c2)
	}
}

// --- ECS bridge ---

type mockStore struct {
	events []GalleryEvent
}

func (m *mockStore) EmitEvent(e GalleryEvent) {
	m.events = append(m.events, e)
}

func TestEntityStoreReceivesEvents(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	store := &mockStore{}
	r.scene.SetEntityStore(store)

	a := NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 1)
	r.sim.AddAnchor(a)
	p := r.dispatcher.Tap(screenCenter)

	if len(store.events) != 3 {
		t.Fatalf("events = %d, want 3", len(store.events))
	}
	added := store.events[0]
	if added.Type != EventGridAdded || added.AnchorID != a.ID || added.Width != 2 || added.Height != 1 {
		t.Errorf("grid event = %+v", added)
	}
	placed := store.events[2]
	if placed.Type != EventPlaced || placed.NodeID != p.ID || placed.Mode != PlaceOnWall || placed.AnchorID != a.ID {
		t.Errorf("placed event = %+v", placed)
	}
	assertVecNear(t, "placed position", placed.Position, r3.Vec{Z: -2})
}

func TestEntityStoreScaleFields(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	r.dispatcher.Tap(screenCenter)
	store := &mockStore{}
	r.scene.SetEntityStore(store)

	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 1.25})

	e := store.events[len(store.events)-1]
	if e.Type != EventScaled || e.Mode != PlaceFreeFloat {
		t.Errorf("event = %+v", e)
	}
	assertNear(t, "delta", e.ScaleDelta, 0.25)
	assertVecNear(t, "scale", e.Scale, r3.Vec{X: 1.25, Y: 1.25, Z: 1.25})
}

func TestEntityStoreTapMissed(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	store := &mockStore{}
	r.scene.SetEntityStore(store)
	pt := Vec2{X: 12, Y: 34}
	r.dispatcher.Tap(pt)

	want := []GalleryEvent{{Type: EventTapMissed, Mode: PlaceOnWall, Point: pt}}
	if diff := cmp.Diff(want, store.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestNoEntityStore(t *testing.T) {
	s := NewScene()
	s.fireTapMissed(TapContext{}) // should not panic
}
