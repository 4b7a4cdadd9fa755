package argallery

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spin rotates a Node forever about its local axes. Each axis is driven by its
// own linear tween over one full turn that restarts when it finishes. Create
// one with NewSpin and either call Update(dt) each frame or hand it to
// Scene.AddSpin. If the target node is disposed, the spin stops immediately.
type Spin struct {
	target *Node
	base   quat.Number
	rates  r3.Vec
	tweens  [3]*gween.Tween
	periods [3]float64
	angles  r3.Vec
	Done   bool
}

// NewSpin creates a Spin turning node at the given per-axis angular rates in
// radians per second. The node's current orientation is the starting pose.
// A zero rate leaves that axis still.
func NewSpin(node *Node, rates r3.Vec) *Spin {
	s := &Spin{target: node, base: node.Orientation, rates: rates}
	for i, r := range [3]float64{rates.X, rates.Y, rates.Z} {
		s.tweens[i] = turnTween(r)
		if r != 0 {
			s.periods[i] = 2 * math.Pi / math.Abs(r)
		}
	}
	return s
}

// turnTween returns a tween from 0 to one full turn in the direction of rate,
// or nil for a zero rate.
func turnTween(rate float64) *gween.Tween {
	if rate == 0 {
		return nil
	}
	end := 2 * math.Pi
	if rate < 0 {
		end = -end
	}
	period := float32(2 * math.Pi / math.Abs(rate))
	return gween.New(0, float32(end), period, ease.Linear)
}

// Rates returns the per-axis angular rates in radians per second.
func (s *Spin) Rates() r3.Vec { return s.rates }

// Target returns the node this spin rotates.
func (s *Spin) Target() *Node { return s.target }

// Update advances each axis by dt seconds and writes the combined rotation to
// the target. If the target node has been disposed, Done is set to true and
// no writes occur.
func (s *Spin) Update(dt float32) {
	if s.Done {
		return
	}
	if s.target == nil || s.target.IsDisposed() {
		s.Done = true
		return
	}
	angles := [3]*float64{&s.angles.X, &s.angles.Y, &s.angles.Z}
	for i, tw := range s.tweens {
		if tw == nil {
			continue
		}
		val, finished := tw.Update(dt)
		if finished {
			// Time past the full turn carries into the next one.
			over := math.Mod(float64(tw.Overflow), s.periods[i])
			tw.Reset()
			val, _ = tw.Set(float32(over))
		}
		*angles[i] = float64(val)
	}
	s.target.SetOrientation(quat.Mul(s.base, Euler(s.angles)))
}
