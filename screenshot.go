package drape

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/hajimehoshi/ebiten/v2"
)

// Snapshotter captures labeled images of the composed view. Labels are
// queued at any time and written at the end of the next Draw.
type Snapshotter struct {
	Dir string
	// Format is "png" or "webp".
	Format string

	queue []string
	// written records the paths produced, newest last.
	written []string
}

// NewSnapshotter creates a snapshotter writing into dir.
func NewSnapshotter(dir, format string) *Snapshotter {
	if format == "" {
		format = "png"
	}
	return &Snapshotter{Dir: dir, Format: format}
}

// Queue schedules a snapshot for the end of the current frame.
func (s *Snapshotter) Queue(label string) {
	s.queue = append(s.queue, label)
}

// Pending returns the number of queued snapshots.
func (s *Snapshotter) Pending() int {
	return len(s.queue)
}

// Written returns the paths of snapshots written so far.
func (s *Snapshotter) Written() []string {
	return s.written
}

// flush captures screen once for every queued label.
func (s *Snapshotter) flush(screen *ebiten.Image) {
	if len(s.queue) == 0 {
		return
	}
	defer func() { s.queue = s.queue[:0] }()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		logf("snapshot: mkdir %s: %v", s.Dir, err)
		return
	}
	img := readNRGBA(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.queue {
		path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.%s", stamp, sanitizeLabel(label), s.Format))
		if err := writeImage(path, img, s.Format); err != nil {
			logf("snapshot: %v", err)
			continue
		}
		s.written = append(s.written, path)
		logf("snapshot %s", path)
	}
}

// readNRGBA reads back img and converts premultiplied RGBA to straight-alpha
// NRGBA.
func readNRGBA(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	src.ReadPixels(img.Pix)
	unpremultiply(img.Pix)
	return img
}

func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a > 0 && a < 255 {
			pix[i] = uint8(min(int(pix[i])*255/int(a), 255))
			pix[i+1] = uint8(min(int(pix[i+1])*255/int(a), 255))
			pix[i+2] = uint8(min(int(pix[i+2])*255/int(a), 255))
		}
	}
}

// writeImage encodes img to path as png or webp.
func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// EncodeImage writes img to w as "png" or "webp" (lossless).
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "png", "":
		return png.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
