// Package argallery hangs pictures in a camera-tracked 3D scene.
//
// A tracking session reports the vertical planes (walls) it detects. Each
// wall gets a grid drawn over it; tapping a grid hangs a framed painting of
// the selected image at the tapped spot. In free-float mode a tap instead
// places the painting a fixed distance in front of the camera, replacing the
// previous one. Pinching scales the most recent painting.
//
// # Quick start
//
//	g, err := argallery.New(argallery.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	sim := argallery.NewSimSession(g.Scene(), 960, 720)
//	g.Attach(sim, sim)
//	sim.AddAnchor(argallery.NewWallAnchor(r3.Vec{Y: 1.5, Z: -2}, 0, 3, 2))
//	log.Fatal(argallery.Run(g, argallery.RunConfig{Title: "Gallery"}))
//
// # Components
//
// [PlaneTracker] keeps one [GridNode] per tracked wall, keyed by the anchor's
// UUID. [ResolveRaycast] turns a screen point into the nearest hit on tracked
// wall geometry. [Composer] builds a painting: a content plane sized from the
// image aspect ratio, a four-segment frame and optional spinning decoration
// cubes. [Dispatcher] routes taps and pinches. [Bridge] is the session
// delegate and the entry point for host input. All of them share one
// [Context].
//
// # Sessions
//
// [TrackingSession] and [View] abstract the platform tracking runtime.
// [SimSession] implements both in software with exact ray/plane
// intersection and drives the scripted replays of [Script].
//
// # Scene graph
//
// Every element is a [Node]. Nodes form a tree rooted at [Scene.Root];
// children inherit their parent's transform. Positions are r3.Vec and
// orientations unit quaternions from gonum. The scene is not safe for
// concurrent use: all mutation happens on the caller's goroutine, and picks
// land on it through [Gallery.Update].
//
// # Events
//
// Register callbacks with [Scene.OnGridAdded], [Scene.OnPlaced],
// [Scene.OnScaled] and friends; each returns a [CallbackHandle] whose Remove
// unregisters it. Set an [EntityStore] to forward events to an ECS (see the
// ecs sub-package for a Donburi adapter).
//
// # Debug mode
//
// [Scene.SetDebugMode] enables disposed-node panics, tree depth and child
// count warnings, routine diagnostics and per-frame render stats on stderr.
package argallery
