package argallery

import (
	"fmt"
	"image/color"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for screen points throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Range is a general-purpose min/max range.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp returns Min + t*(Max-Min).
func (r Range) Lerp(t float64) float64 {
	return r.Min + t*(r.Max-r.Min)
}

// Alignment is the orientation class of a detected plane.
type Alignment uint8

const (
	AlignmentHorizontal Alignment = iota // floors, tables, ceilings
	AlignmentVertical                    // walls
)

func (a Alignment) String() string {
	switch a {
	case AlignmentHorizontal:
		return "horizontal"
	case AlignmentVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// ParseAlignment parses "horizontal" or "vertical".
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal":
		return AlignmentHorizontal, nil
	case "vertical", "":
		return AlignmentVertical, nil
	default:
		return 0, fmt.Errorf("unknown alignment %q", s)
	}
}

// RaycastTarget selects which tracked geometry a raycast may hit.
type RaycastTarget uint8

const (
	RaycastTargetExistingPlaneGeometry RaycastTarget = iota // detected planes, bounded by their extent
	RaycastTargetExistingPlaneInfinite                      // detected planes, unbounded
	RaycastTargetEstimatedPlane                             // inferred surfaces
)

// NodeType distinguishes what a Node stands for.
type NodeType uint8

const (
	NodeTypeContainer  NodeType = iota // group node with no visual output
	NodeTypeCamera                     // point of view
	NodeTypeAnchor                     // runtime-owned node that follows a plane anchor
	NodeTypeGrid                       // visual placeholder over a detected wall
	NodeTypePainting                   // root of one placed artwork
	NodeTypeContent                    // image surface of a painting
	NodeTypeFrame                      // one frame segment
	NodeTypeDecoration                 // decorative group or cube
)

// EventType identifies a kind of gallery event.
type EventType uint8

const (
	EventGridAdded    EventType = iota // a grid was created for a new vertical plane
	EventGridUpdated                   // a grid was resized to a plane update
	EventGridRemoved                   // a grid was consumed or its plane was lost
	EventPlaced                        // a painting was inserted into the scene
	EventRemoved                       // a painting was removed from the scene
	EventScaled                        // the current painting was scaled by a pinch
	EventTapMissed                     // a wall-mode tap resolved to nothing
)

// PlacementMode selects how a tap places a painting.
type PlacementMode uint8

const (
	PlaceOnWall    PlacementMode = iota // raycast onto a tracked wall grid
	PlaceFreeFloat                      // fixed distance in front of the camera
)

func (m PlacementMode) String() string {
	switch m {
	case PlaceOnWall:
		return "wall"
	case PlaceFreeFloat:
		return "free-float"
	default:
		return fmt.Sprintf("PlacementMode(%d)", uint8(m))
	}
}

// ParsePlacementMode parses "wall" or "free-float" (also "free", "float").
func ParsePlacementMode(s string) (PlacementMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall", "":
		return PlaceOnWall, nil
	case "free-float", "free", "float", "freefloat":
		return PlaceFreeFloat, nil
	default:
		return 0, fmt.Errorf("unknown placement mode %q", s)
	}
}

// UnmarshalYAML lets config files spell the mode as a string.
func (m *PlacementMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePlacementMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the mode as a string.
func (m PlacementMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// GestureState is the lifecycle phase of a continuous gesture.
type GestureState uint8

const (
	GestureChanged GestureState = iota // an update within a running gesture
	GestureBegan                       // the first event of a gesture
	GestureEnded                       // the gesture finished
	GestureCancelled                   // the gesture was interrupted
)
