package drape

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"sync"
	"sync/atomic"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownResource is returned when asked to resolve a resource kind or
// piece the loader does not know.
var ErrUnknownResource = errors.New("drape: unknown resource")

// ResourceKind identifies one file of a piece's asset set.
type ResourceKind uint8

const (
	ResourceMesh    ResourceKind = iota // garment model
	ResourceOverlay                     // fold/crease mask
	ResourceLight                       // light map
	ResourceBase                        // flat base image drawn over the canvas
	ResourcePattern                     // shared pattern tile
	resourceKindCount
)

// String returns the resource name used in logs.
func (k ResourceKind) String() string {
	switch k {
	case ResourceMesh:
		return "mesh"
	case ResourceOverlay:
		return "overlay"
	case ResourceLight:
		return "light"
	case ResourceBase:
		return "base"
	case ResourcePattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Resources is the decoded, backend-independent result of loading a piece.
// A resource that failed to load is nil and has an entry in Errors.
type Resources struct {
	Piece   PieceID
	Mesh    *Geometry
	Pattern image.Image
	// Overlay is already converted to white with the mask in alpha.
	Overlay image.Image
	// Light has its alpha forced to opaque.
	Light   image.Image
	Base    image.Image
	Errors  map[ResourceKind]error
}

// LoadEvent reports one resource settling, successfully or not.
type LoadEvent struct {
	Kind   ResourceKind
	Path   string
	Err    error
	Loaded int // resources settled so far, including this one
	Total  int
}

// Percent returns the overall progress in [0, 100].
func (e LoadEvent) Percent() float64 {
	if e.Total == 0 {
		return 100
	}
	return float64(e.Loaded) / float64(e.Total) * 100
}

// LoadTask is one cancelable batch load for a piece. Events and completion
// are observed by polling from the game thread; the loading goroutines never
// touch scene state.
type LoadTask struct {
	Piece PieceID
	// Generation is assigned by the owner that started the task.
	Generation uint64

	ctx    context.Context
	cancel context.CancelFunc
	events chan LoadEvent
	done   chan struct{}
	once   sync.Once

	result *Resources
	err    error
}

func newLoadTask(ctx context.Context, piece PieceID, total int) *LoadTask {
	ctx, cancel := context.WithCancel(ctx)
	return &LoadTask{
		Piece:  piece,
		ctx:    ctx,
		cancel: cancel,
		// Buffered for every event so senders never block.
		events: make(chan LoadEvent, total),
		done:   make(chan struct{}),
	}
}

// finish records the outcome and closes Done. Only the first call counts.
func (t *LoadTask) finish(res *Resources, err error) {
	t.once.Do(func() {
		t.result = res
		t.err = err
		close(t.done)
	})
}

// Events delivers per-resource progress.
func (t *LoadTask) Events() <-chan LoadEvent {
	return t.events
}

// Done is closed once every resource has settled or the task was canceled.
func (t *LoadTask) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts outstanding loads. The task still completes, with the
// context's error.
func (t *LoadTask) Cancel() {
	t.cancel()
}

// Canceled reports whether Cancel was called or the parent context ended.
func (t *LoadTask) Canceled() bool {
	return t.ctx.Err() != nil
}

// Result returns the outcome. It is only valid after Done is closed.
func (t *LoadTask) Result() (*Resources, error) {
	return t.result, t.err
}

// Finished reports, without blocking, whether Done is closed.
func (t *LoadTask) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the task completes.
func (t *LoadTask) Wait() (*Resources, error) {
	<-t.done
	return t.result, t.err
}

// AssetLoader starts asynchronous loads of a piece's resources.
type AssetLoader interface {
	Load(ctx context.Context, piece PieceID) *LoadTask
}

// Loader reads piece assets from a file system laid out as
//
//	<piece>/<piece>_3d_model.obj
//	<piece>/<piece>_overlay.png
//	<piece>/<piece>_light.png
//	<piece>/<piece>_front.png
//	patterns/<PatternFile>
type Loader struct {
	FS             fs.FS
	PatternFile    string
	MaxPatternSize int
	Workers        int
}

// NewLoader creates a loader over fsys using the asset settings in cfg.
func NewLoader(fsys fs.FS, cfg AssetConfig) *Loader {
	return &Loader{
		FS:             fsys,
		PatternFile:    cfg.PatternFile,
		MaxPatternSize: cfg.MaxPatternSize,
		Workers:        cfg.Workers,
	}
}

// Resolve returns the path of a resource inside the loader's file system.
func (l *Loader) Resolve(piece PieceID, kind ResourceKind) (string, error) {
	if kind == ResourcePattern {
		if l.PatternFile == "" {
			return "", fmt.Errorf("pattern file not configured: %w", ErrUnknownResource)
		}
		return path.Join("patterns", l.PatternFile), nil
	}
	if piece == "" {
		return "", fmt.Errorf("empty piece id: %w", ErrUnknownResource)
	}
	p := string(piece)
	switch kind {
	case ResourceMesh:
		return path.Join(p, p+"_3d_model.obj"), nil
	case ResourceOverlay:
		return path.Join(p, p+"_overlay.png"), nil
	case ResourceLight:
		return path.Join(p, p+"_light.png"), nil
	case ResourceBase:
		return path.Join(p, p+"_front.png"), nil
	}
	return "", fmt.Errorf("resource kind %d: %w", kind, ErrUnknownResource)
}

// Load starts loading every resource of piece on background goroutines.
// A resource that fails is reported through an event and left nil; the
// others keep loading. The task fails only when canceled.
func (l *Loader) Load(ctx context.Context, piece PieceID) *LoadTask {
	total := int(resourceKindCount)
	task := newLoadTask(ctx, piece, total)
	res := &Resources{Piece: piece, Errors: make(map[ResourceKind]error)}
	var errs [resourceKindCount]error
	var loaded atomic.Int32

	g, gctx := errgroup.WithContext(task.ctx)
	if l.Workers > 0 {
		g.SetLimit(l.Workers)
	}

	// Go blocks once the worker limit is reached, so the batch is fed from
	// its own goroutine. Each worker writes only its own slot; Wait orders
	// the writes before the result is published.
	go func() {
		for k := ResourceKind(0); k < resourceKindCount; k++ {
			kind := k
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				p, err := l.Resolve(piece, kind)
				if err == nil {
					err = l.loadOne(res, kind, p)
				}
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				errs[kind] = err
				task.events <- LoadEvent{
					Kind:   kind,
					Path:   p,
					Err:    err,
					Loaded: int(loaded.Add(1)),
					Total:  total,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			task.finish(nil, err)
			return
		}
		for k, e := range errs {
			if e != nil {
				res.Errors[ResourceKind(k)] = e
			}
		}
		task.finish(res, nil)
	}()
	return task
}

func (l *Loader) loadOne(res *Resources, kind ResourceKind, p string) error {
	if kind == ResourceMesh {
		f, err := l.FS.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		g, err := DecodeOBJ(f)
		if err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}
		res.Mesh = g
		return nil
	}

	img, err := l.decodeImage(p)
	if err != nil {
		return err
	}
	switch kind {
	case ResourceOverlay:
		res.Overlay = alphaMapImage(img)
	case ResourceLight:
		res.Light = opaqueImage(img)
	case ResourceBase:
		res.Base = img
	case ResourcePattern:
		res.Pattern = FitImage(img, l.MaxPatternSize)
	}
	return nil
}

func (l *Loader) decodeImage(p string) (image.Image, error) {
	f, err := l.FS.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return img, nil
}

// FitImage downsizes img so neither side exceeds maxSize, keeping the aspect
// ratio. Images that already fit, or a non-positive maxSize, are returned
// unchanged.
func FitImage(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	scale := float64(maxSize) / float64(max(w, h))
	dw := max(1, int(float64(w)*scale+0.5))
	dh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Thumbnail renders a size x size preview of a pattern tile, cropping the
// center square first.
func Thumbnail(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, image.Rect(x0, y0, x0+side, y0+side), draw.Src, nil)
	return dst
}
