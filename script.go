package argallery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// scriptStep represents a single action in a gallery script.
type scriptStep struct {
	Action    string    `json:"action"`
	Label     string    `json:"label,omitempty"`
	ID        string    `json:"id,omitempty"`
	Op        string    `json:"op,omitempty"`
	Alignment string    `json:"alignment,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Path      string    `json:"path,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Z         float64   `json:"z,omitempty"`
	Yaw       float64   `json:"yaw,omitempty"`
	Pitch     float64   `json:"pitch,omitempty"`
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Scales    []float64 `json:"scales,omitempty"`
	Frames    int       `json:"frames,omitempty"`
}

// scriptFile is the top-level JSON structure for a script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script replays anchors, camera moves, taps, pinches and snapshots against a
// SimSession, one step per frame. Attach it with Gallery.SetScript.
//
// Steps:
//
//	{"action": "anchor", "op": "add|update|remove", "id": "wall-1",
//	 "alignment": "vertical", "x": 0, "y": 1, "z": -2, "yaw": 0,
//	 "width": 2, "height": 1.5}
//	{"action": "camera", "x": 0, "y": 1, "z": 0, "yaw": 0, "pitch": 0}
//	{"action": "tap", "x": 320, "y": 240}
//	{"action": "pinch", "scales": [1.0, 1.1, 1.3]}
//	{"action": "mode", "mode": "free-float"}
//	{"action": "pick", "path": "art.jpg"}
//	{"action": "wait", "frames": 3}
//	{"action": "snapshot", "label": "after-tap"}
type Script struct {
	// SnapshotDir is where snapshot steps write PNGs.
	SnapshotDir string

	steps     []scriptStep
	cursor    int
	waitCount int
	pinches   []PinchEvent
	done      bool
	err       error
}

// LoadScript parses a JSON script.
func LoadScript(jsonData []byte) (*Script, error) {
	var file scriptFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range file.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &Script{steps: file.Steps, SnapshotDir: "snapshots"}, nil
}

func (st scriptStep) validate() error {
	switch st.Action {
	case "anchor":
		switch st.Op {
		case "", "add", "update", "remove":
		default:
			return fmt.Errorf("unknown anchor op %q", st.Op)
		}
		if st.ID == "" {
			return fmt.Errorf("anchor step needs an id")
		}
		if _, err := ParseAlignment(st.Alignment); err != nil {
			return err
		}
	case "mode":
		if _, err := ParsePlacementMode(st.Mode); err != nil {
			return err
		}
	case "pinch":
		if len(st.Scales) == 0 {
			return fmt.Errorf("pinch step needs scales")
		}
	case "pick":
		if st.Path == "" {
			return fmt.Errorf("pick step needs a path")
		}
	case "camera", "tap", "wait", "snapshot":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// Done reports whether all steps have been executed.
func (s *Script) Done() bool {
	return s.done
}

// Err returns the first error a step ran into, if any. Failed steps are
// skipped; the script keeps going.
func (s *Script) Err() error {
	return s.err
}

// scriptAnchorID maps a script id to a stable anchor identity. UUID strings
// are used as is; any other name is hashed.
func scriptAnchorID(id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("argallery/"+id))
}

// step advances the script by one frame. Called from Gallery.Update.
func (s *Script) step(g *Gallery, sim *SimSession) {
	if s.done {
		return
	}
	// Feed one queued pinch update per frame before advancing.
	if len(s.pinches) > 0 {
		ev := s.pinches[0]
		copy(s.pinches, s.pinches[1:])
		s.pinches = s.pinches[:len(s.pinches)-1]
		g.bridge.OnPinch(ev)
		s.checkDone(g)
		return
	}
	// Wait for a running pick to land.
	if g.pick != nil {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		s.checkDone(g)
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "anchor":
		s.anchor(sim, st)
	case "camera":
		if sim != nil {
			sim.SetCameraPose(r3.Vec{X: st.X, Y: st.Y, Z: st.Z}, st.Yaw, st.Pitch)
		}
	case "tap":
		g.bridge.OnTap(Vec2{X: st.X, Y: st.Y})
	case "pinch":
		s.pinches = pinchSequence(st.Scales)
	case "mode":
		m, _ := ParsePlacementMode(st.Mode)
		g.dispatcher.SetMode(m)
	case "pick":
		g.Pick(st.Path)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "snapshot":
		s.snapshot(sim, st.Label)
	}

	s.checkDone(g)
}

func (s *Script) checkDone(g *Gallery) {
	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(s.pinches) == 0 && g.pick == nil {
		s.done = true
	}
}

func (s *Script) anchor(sim *SimSession, st scriptStep) {
	if sim == nil {
		s.fail(fmt.Errorf("anchor %s: no simulated session", st.ID))
		return
	}
	id := scriptAnchorID(st.ID)
	if st.Op == "remove" {
		sim.RemoveAnchor(id)
		return
	}
	align, _ := ParseAlignment(st.Alignment)
	pos := r3.Vec{X: st.X, Y: st.Y, Z: st.Z}
	var a PlaneAnchor
	if align == AlignmentVertical {
		a = NewWallAnchor(pos, st.Yaw, st.Width, st.Height)
	} else {
		a = NewFloorAnchor(pos, st.Width, st.Height)
	}
	a.ID = id
	if st.Op == "update" {
		if !sim.UpdateAnchor(a) {
			s.fail(fmt.Errorf("anchor %s: update of unknown anchor", st.ID))
		}
		return
	}
	sim.AddAnchor(a)
}

func (s *Script) snapshot(sim *SimSession, label string) {
	if sim == nil {
		s.fail(fmt.Errorf("snapshot %q: no simulated session", label))
		return
	}
	path, err := SaveSnapshot(s.SnapshotDir, label, sim.Snapshot())
	if err != nil {
		s.fail(err)
		return
	}
	debugf("snapshot written to %s", path)
}

func (s *Script) fail(err error) {
	logf("script: %v", err)
	if s.err == nil {
		s.err = err
	}
}

// pinchSequence turns a list of gesture scale factors into one began event,
// changed events for the rest and a closing ended event.
func pinchSequence(scales []float64) []PinchEvent {
	evs := make([]PinchEvent, 0, len(scales)+1)
	for i, sc := range scales {
		state := GestureChanged
		if i == 0 {
			state = GestureBegan
		}
		evs = append(evs, PinchEvent{Scale: sc, State: state})
	}
	last := scales[len(scales)-1]
	return append(evs, PinchEvent{Scale: last, State: GestureEnded})
}

// String summarizes the script for logs.
func (s *Script) String() string {
	actions := make([]string, len(s.steps))
	for i, st := range s.steps {
		actions[i] = st.Action
	}
	return fmt.Sprintf("Script[%d/%d: %s]", s.cursor, len(s.steps), strings.Join(actions, ","))
}
