package ecs

import (
	"github.com/phanxgames/argallery"

	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
	"gonum.org/v1/gonum/spatial/r3"
)

// GalleryEventType is the Donburi event type for gallery events.
// Subscribe to this in your ECS systems to receive placement and grid events.
var GalleryEventType = events.NewEventType[argallery.GalleryEvent]()

// PaintingData mirrors one live painting.
type PaintingData struct {
	NodeID   uint32
	Mode     argallery.PlacementMode
	AnchorID uuid.UUID
	Position r3.Vec
	Scale    r3.Vec
}

// Painting is the component carried by painting entities.
var Painting = donburi.NewComponentType[PaintingData]()

// PaintingQuery matches every painting entity.
var PaintingQuery = donburi.NewQuery(filter.Contains(Painting))

// DonburiStore is an EntityStore backed by a Donburi world.
type DonburiStore struct {
	world     donburi.World
	paintings map[uint32]donburi.Entity
}

var _ argallery.EntityStore = (*DonburiStore)(nil)

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are published to GalleryEventType and can be consumed with
// events.Subscribe and ProcessEvents. Placed paintings become entities with
// a Painting component that follows scaling and is removed with the painting.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, paintings: make(map[uint32]donburi.Entity)}
}

// EmitEvent implements argallery.EntityStore.
func (s *DonburiStore) EmitEvent(event argallery.GalleryEvent) {
	switch event.Type {
	case argallery.EventPlaced:
		e := s.world.Create(Painting)
		Painting.SetValue(s.world.Entry(e), PaintingData{
			NodeID:   event.NodeID,
			Mode:     event.Mode,
			AnchorID: event.AnchorID,
			Position: event.Position,
			Scale:    event.Scale,
		})
		s.paintings[event.NodeID] = e
	case argallery.EventScaled:
		if e, ok := s.paintings[event.NodeID]; ok && s.world.Valid(e) {
			Painting.Get(s.world.Entry(e)).Scale = event.Scale
		}
	case argallery.EventRemoved:
		if e, ok := s.paintings[event.NodeID]; ok {
			if s.world.Valid(e) {
				s.world.Remove(e)
			}
			delete(s.paintings, event.NodeID)
		}
	}
	GalleryEventType.Publish(s.world, event)
}

// PaintingEntity returns the entity mirroring the painting node with the
// given ID.
func (s *DonburiStore) PaintingEntity(nodeID uint32) (donburi.Entity, bool) {
	e, ok := s.paintings[nodeID]
	return e, ok
}
