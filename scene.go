package argallery

// Scene is the top-level object that owns the node tree, running spin
// animations and event handlers. Components only add or remove children
// below the root; the root itself is never replaced.
type Scene struct {
	root  *Node
	store EntityStore
	debug bool

	// ClearColor fills the background before the tree is drawn.
	ClearColor Color

	handlers handlerRegistry
	spins    []*Spin
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	return &Scene{
		root:       NewContainer("root"),
		ClearColor: Color{0.08, 0.08, 0.1, 1},
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update advances spin animations by dt seconds, drops finished ones and
// refreshes world transforms.
func (s *Scene) Update(dt float32) {
	alive := s.spins[:0]
	for _, sp := range s.spins {
		sp.Update(dt)
		if !sp.Done {
			alive = append(alive, sp)
		}
	}
	for i := len(alive); i < len(s.spins); i++ {
		s.spins[i] = nil
	}
	s.spins = alive

	updateWorldTransform(s.root, Identity4, false)
}

// AddSpin registers a spin to be advanced by Update. Spins whose target is
// disposed are dropped automatically.
func (s *Scene) AddSpin(sp *Spin) {
	s.spins = append(s.spins, sp)
}

// Spins returns the running spins. The returned slice MUST NOT be mutated.
func (s *Scene) Spins() []*Spin {
	return s.spins
}

// Paintings returns the painting nodes currently attached to the root, in
// insertion order.
func (s *Scene) Paintings() []*Node {
	var out []*Node
	for _, c := range s.root.children {
		if c.Type == NodeTypePainting {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first node in depth-first order for which match returns
// true, or nil.
func (s *Scene) Find(match func(*Node) bool) *Node {
	var found *Node
	s.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, routine
// diagnostics are logged and per-frame render stats go to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool
