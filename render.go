package argallery

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxBatchVerts keeps a batch within ebiten's uint16 index range.
const maxBatchVerts = 1<<16 - 3

const (
	defaultCommandCap = 1024
	maxCachedMeshes   = 1024
)

// RenderCommand is one projected triangle emitted during scene traversal.
type RenderCommand struct {
	verts     [3]ebiten.Vertex
	image     *ebiten.Image
	depth     float64 // mean view depth; larger is farther
	treeOrder int     // assigned during traversal for stable sort
}

// Renderer draws a Scene from a camera node with a pinhole projection onto
// an ebiten image. Triangles are depth-sorted far to near (painter's
// algorithm) and consecutive triangles sharing a texture go out in one
// DrawTriangles call. The last frame is kept for Snapshot.
type Renderer struct {
	scene *Scene

	textures map[image.Image]*ebiten.Image
	meshes   map[Geometry]Mesh
	white    *ebiten.Image
	canvas   *ebiten.Image

	commands []RenderCommand
	sortBuf  []RenderCommand
	verts    []ebiten.Vertex
	inds     []uint16

	// stale is set when a painting or grid leaves the scene; the next Draw
	// prunes the caches.
	stale bool
}

// NewRenderer creates a renderer for scene.
func NewRenderer(scene *Scene) *Renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(ColorWhite.toRGBA())
	r := &Renderer{
		scene:    scene,
		textures: make(map[image.Image]*ebiten.Image),
		meshes:   make(map[Geometry]Mesh),
		white:    white,
		commands: make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:  make([]RenderCommand, 0, defaultCommandCap),
	}
	r.watch()
	return r
}

// watch marks the caches stale whenever the scene drops a painting or grid.
func (r *Renderer) watch() {
	r.scene.OnRemoved(func(PaintingContext) { r.stale = true })
	r.scene.OnGridRemoved(func(GridContext) { r.stale = true })
}

// Draw renders the scene as seen from pov onto screen. World transforms are
// those computed by the last Scene.Update.
func (r *Renderer) Draw(screen *ebiten.Image, pov *Node, proj Projection) {
	b := screen.Bounds()
	if r.canvas == nil || r.canvas.Bounds().Size() != b.Size() {
		if r.canvas != nil {
			r.canvas.Deallocate()
		}
		r.canvas = ebiten.NewImage(b.Dx(), b.Dy())
	}
	r.canvas.Fill(r.scene.ClearColor.toRGBA())
	if r.stale {
		r.Forget()
	}

	proj.Width, proj.Height = float64(b.Dx()), float64(b.Dy())
	view, ok := pov.WorldTransform().Inverse()
	if ok && proj.valid() {
		r.render(view, proj)
	}

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	screen.DrawImage(r.canvas, &op)
}

func (r *Renderer) render(view Mat4, proj Projection) {
	var stats debugStats
	var t0 time.Time
	debug := r.scene.debug

	if debug {
		t0 = time.Now()
	}

	r.commands = r.commands[:0]
	treeOrder := 0
	r.traverse(r.scene.root, view, proj, &treeOrder, &stats)

	if debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	r.mergeSort()

	if debug {
		stats.sortTime = time.Since(t0)
		stats.triangleCount = len(r.commands)
		t0 = time.Now()
	}

	stats.drawCallCount = r.submitBatches(r.canvas)

	if debug {
		stats.submitTime = time.Since(t0)
		r.scene.debugLog(stats)
	}
}

// traverse walks the node tree depth-first and emits commands for visible
// nodes that carry geometry and a material.
func (r *Renderer) traverse(n *Node, view Mat4, proj Projection, treeOrder *int, stats *debugStats) {
	if !n.Visible {
		return
	}
	if n.Geometry != nil && n.Material != nil {
		stats.nodeCount++
		r.emit(n, view.Mul(n.worldTransform), proj, treeOrder)
	}
	for _, c := range n.children {
		r.traverse(c, view, proj, treeOrder, stats)
	}
}

func (r *Renderer) emit(n *Node, modelView Mat4, proj Projection, treeOrder *int) {
	mesh, ok := r.meshes[n.Geometry]
	if !ok {
		// Resized grids leave stale entries behind.
		if len(r.meshes) > maxCachedMeshes {
			clear(r.meshes)
		}
		mesh = n.Geometry.Mesh()
		r.meshes[n.Geometry] = mesh
	}
	mat := n.Material
	img, sw, sh := r.white, 0.0, 0.0
	if mat.Texture != nil {
		img = r.texture(mat.Texture)
		sz := mat.Texture.Bounds().Size()
		sw, sh = float64(sz.X)*mat.Tiling[0], float64(sz.Y)*mat.Tiling[1]
	}
	c := mat.Color.toRGBA()
	cr, cg, cb, ca := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		var cmd RenderCommand
		visible := true
		for k := 0; k < 3; k++ {
			idx := mesh.Indices[i+k]
			p := modelView.MulPoint(mesh.Positions[idx])
			pt, depth, ok := proj.Project(p)
			if !ok {
				visible = false
				break
			}
			cmd.depth += depth / 3
			sx, sy := float32(1), float32(1)
			if mat.Texture != nil {
				uv := mesh.UVs[idx]
				sx, sy = float32(uv[0]*sw), float32(uv[1]*sh)
			}
			cmd.verts[k] = ebiten.Vertex{
				DstX: float32(pt.X), DstY: float32(pt.Y),
				SrcX: sx, SrcY: sy,
				ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
			}
		}
		if !visible || (!mat.DoubleSided && backFacing(cmd.verts)) {
			continue
		}
		cmd.image = img
		cmd.treeOrder = *treeOrder
		*treeOrder++
		r.commands = append(r.commands, cmd)
	}
}

// backFacing reports whether a screen-space triangle winds clockwise on
// screen (counter-clockwise in a Y-down frame means front facing).
func backFacing(v [3]ebiten.Vertex) bool {
	ax, ay := v[1].DstX-v[0].DstX, v[1].DstY-v[0].DstY
	bx, by := v[2].DstX-v[0].DstX, v[2].DstY-v[0].DstY
	return ax*by-ay*bx > 0
}

// texture returns the GPU copy of img, uploading it on first use.
func (r *Renderer) texture(img image.Image) *ebiten.Image {
	if t, ok := r.textures[img]; ok {
		return t
	}
	t := ebiten.NewImageFromImage(img)
	r.textures[img] = t
	return t
}

// Forget drops cached GPU textures and meshes no longer referenced by the
// scene. Draw calls it after a painting or grid was removed.
func (r *Renderer) Forget() {
	liveTex := make(map[image.Image]bool)
	liveGeo := make(map[Geometry]bool)
	r.scene.root.Walk(func(n *Node) bool {
		if n.Geometry != nil {
			liveGeo[n.Geometry] = true
		}
		if n.Material != nil && n.Material.Texture != nil {
			liveTex[n.Material.Texture] = true
		}
		return true
	})
	for img, t := range r.textures {
		if liveTex[img] {
			continue
		}
		if t != nil {
			t.Deallocate()
		}
		delete(r.textures, img)
	}
	for g := range r.meshes {
		if !liveGeo[g] {
			delete(r.meshes, g)
		}
	}
	r.stale = false
}

// commandLessOrEqual orders farther triangles first, then by tree order.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts r.commands in-place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (r *Renderer) mergeSort() {
	n := len(r.commands)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]RenderCommand, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.commands
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.commands, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

// submitBatches coalesces consecutive commands sharing a texture into single
// DrawTriangles calls and returns the number of calls made.
func (r *Renderer) submitBatches(target *ebiten.Image) int {
	calls := 0
	var cur *ebiten.Image
	flush := func() {
		if len(r.inds) == 0 {
			return
		}
		var op ebiten.DrawTrianglesOptions
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		op.Address = ebiten.AddressRepeat
		op.Filter = ebiten.FilterLinear
		target.DrawTriangles(r.verts, r.inds, cur, &op)
		calls++
		r.verts = r.verts[:0]
		r.inds = r.inds[:0]
	}
	for i := range r.commands {
		cmd := &r.commands[i]
		if cmd.image != cur || len(r.verts)+3 > maxBatchVerts {
			flush()
			cur = cmd.image
		}
		base := uint16(len(r.verts))
		r.verts = append(r.verts, cmd.verts[:]...)
		r.inds = append(r.inds, base, base+1, base+2)
	}
	flush()
	return calls
}

// Snapshot returns the last rendered frame as a straight-alpha image, or nil
// before the first Draw. Must be called while the game loop is running.
func (r *Renderer) Snapshot() image.Image {
	if r.canvas == nil {
		return nil
	}
	b := r.canvas.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	r.canvas.ReadPixels(pixels)
	return nrgbaFromPremultiplied(pixels, b.Dx(), b.Dy())
}

// ScreenPoint projects a world-space point through pov, for overlays and
// tests of what the user would tap.
func ScreenPoint(pov *Node, proj Projection, world r3.Vec) (Vec2, bool) {
	view, ok := pov.WorldTransform().Inverse()
	if !ok {
		return Vec2{}, false
	}
	pt, _, ok := proj.Project(view.MulPoint(world))
	return pt, ok
}
