package drape

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// Hit is the result of a successful pick.
type Hit struct {
	Node     *Node
	Distance float32
	Point    mgl32.Vec3
}

// Scene is the composed 3D view: a persistent root, the camera and the layer
// stack of the current piece.
type Scene struct {
	Root   *Node
	Camera *Camera

	layers *Node
}

// Layers returns the current layer stack root, or nil before the first
// rebuild.
func (s *Scene) Layers() *Node {
	return s.layers
}

// PickNDC casts a ray through (nx, ny) and returns the nearest hit among
// pickable nodes.
func (s *Scene) PickNDC(nx, ny float64) (Hit, bool) {
	ray := s.Camera.RayFromNDC(nx, ny)
	best := Hit{Distance: float32(math.MaxFloat32)}
	found := false
	s.Root.Walk(func(n *Node) bool {
		if !n.Pickable || n.Geometry == nil {
			return true
		}
		if t, ok := n.Geometry.Intersect(ray, n.WorldMatrix()); ok && t < best.Distance {
			best = Hit{Node: n, Distance: t, Point: ray.At(t)}
			found = true
		}
		return true
	})
	return best, found
}

// Pick is PickNDC for a screen position.
func (s *Scene) Pick(sx, sy float64) (Hit, bool) {
	return s.PickNDC(s.Camera.ScreenToNDC(sx, sy))
}

// drawList returns visible drawable nodes sorted back to front by
// RenderOrder. Ties keep tree order.
func (s *Scene) drawList(buf []*Node) []*Node {
	buf = buf[:0]
	var visit func(n *Node)
	visit = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Type != NodeTypeContainer && n.Geometry != nil && n.Material != nil && n.Opacity > 0 {
			buf = append(buf, n)
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(s.Root)
	sort.SliceStable(buf, func(i, j int) bool {
		return buf[i].RenderOrder < buf[j].RenderOrder
	})
	return buf
}

// Composer owns the scene and rebuilds it whenever the selected piece
// finishes loading. Loads run in the background; Update polls the current
// task on the game thread. A task superseded by a newer selection is
// canceled and its result is never used.
type Composer struct {
	store  ParameterStore
	loader AssetLoader
	cal    Calibration

	Compositor *Compositor

	// Reveal is the fade-in level of the composed view in [0, 1].
	Reveal float64

	// OnProgress and OnError observe load events of the current task. They
	// run on the game thread inside Update.
	OnProgress func(LoadEvent)
	OnError    func(LoadEvent)
	// OnRebuild runs after the layer stack was swapped.
	OnRebuild func(*Assets)

	scene      *Scene
	assets     *Assets
	task       *LoadTask
	generation uint64
	reveal     *Tween
	sub        Subscription

	ctx    context.Context
	cancel context.CancelFunc
}

// NewComposer creates a composer. Call Initialize before Update.
func NewComposer(store ParameterStore, loader AssetLoader, cal Calibration) *Composer {
	return &Composer{
		store:      store,
		loader:     loader,
		cal:        cal,
		Compositor: NewCompositor(store, cal),
	}
}

// Initialize creates the camera and the empty scene, starts following piece
// selections from the store and begins loading the current piece. ctx bounds
// every load the composer starts.
func (c *Composer) Initialize(ctx context.Context, viewport Rect) *Scene {
	c.ctx, c.cancel = context.WithCancel(ctx)
	cam := NewCamera(c.cal.FOV, c.cal.CameraDistance, c.cal.Near, c.cal.Far, viewport)
	c.scene = &Scene{Root: NewContainer("scene"), Camera: cam}
	c.sub = c.store.Subscribe(func(a Action, s State) {
		if a.Type == ActionSetPiece {
			c.SelectPiece(s.Piece)
		}
	})
	c.SelectPiece(c.store.State().Piece)
	return c.scene
}

// Scene returns the scene created by Initialize.
func (c *Composer) Scene() *Scene {
	return c.scene
}

// Assets returns the assets of the current layer stack, or nil.
func (c *Composer) Assets() *Assets {
	return c.assets
}

// Generation returns the token of the most recent selection.
func (c *Composer) Generation() uint64 {
	return c.generation
}

// Loading reports whether a selection is still loading.
func (c *Composer) Loading() bool {
	return c.task != nil
}

// SelectPiece cancels any load in progress and starts loading id under a new
// generation.
func (c *Composer) SelectPiece(id PieceID) {
	if c.ctx == nil {
		panic("drape: SelectPiece before Initialize")
	}
	if c.task != nil {
		c.task.Cancel()
	}
	c.generation++
	task := c.loader.Load(c.ctx, id)
	task.Generation = c.generation
	c.task = task
	logf("load %s started (generation %d)", id, c.generation)
}

// Update drains progress events of the current task and, once it completes,
// rebuilds the scene. It also advances the reveal fade. Call once per tick on
// the game thread.
func (c *Composer) Update(dt float64) {
	if c.task != nil {
		c.drainEvents(c.task)
		if c.task.Finished() {
			c.drainEvents(c.task)
			c.complete(c.task)
		}
	}
	if c.reveal != nil && !c.reveal.Done {
		c.reveal.Update(float32(dt))
	}
}

func (c *Composer) drainEvents(task *LoadTask) {
	for {
		select {
		case ev := <-task.Events():
			if ev.Err != nil {
				logf("load %s %s: %v", task.Piece, ev.Kind, ev.Err)
				if c.OnError != nil {
					c.OnError(ev)
				}
			} else {
				debugf("load %s %s: %.0f%% loaded", task.Piece, ev.Kind, ev.Percent())
			}
			if c.OnProgress != nil {
				c.OnProgress(ev)
			}
		default:
			return
		}
	}
}

func (c *Composer) complete(task *LoadTask) {
	c.task = nil
	if task.Generation != c.generation {
		return
	}
	res, err := task.Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logf("load %s failed: %v", task.Piece, err)
		}
		return
	}
	c.RebuildForPiece(UploadResources(res))
}

// RebuildForPiece replaces the layer stack with one built from a and
// releases the previous assets. Clearing and populating happen in this one
// call so no frame ever sees a half-built scene.
func (c *Composer) RebuildForPiece(a *Assets) {
	var start time.Time
	if globalDebug {
		start = time.Now()
	}
	if c.scene.layers != nil {
		c.scene.layers.Dispose()
		c.scene.layers = nil
	}
	if c.assets != nil {
		c.assets.Dispose()
	}
	c.assets = a
	layers := c.Compositor.BuildLayers(a)
	c.scene.Root.AddChild(layers)
	c.scene.layers = layers

	c.reveal = TweenValue(&c.Reveal, 0, 1, float32(c.cal.RevealSeconds), ease.OutQuad)
	if c.Compositor.Garment() == nil {
		logf("piece %s has no mesh; dragging disabled", a.Piece)
	}
	if globalDebug {
		debugf("rebuild %s: %v, %d triangles", a.Piece, time.Since(start), a.Mesh.TriangleCount())
	}
	if c.OnRebuild != nil {
		c.OnRebuild(a)
	}
}

// Close cancels loading, stops following the store and releases assets.
func (c *Composer) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.sub.Remove()
	c.Compositor.Close()
	if c.scene != nil && c.scene.layers != nil {
		c.scene.layers.Dispose()
		c.scene.layers = nil
	}
	if c.assets != nil {
		c.assets.Dispose()
		c.assets = nil
	}
	c.task = nil
}
