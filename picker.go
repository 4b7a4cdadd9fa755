package argallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PickerFilter restricts which files a picker accepts.
type PickerFilter uint8

const (
	FilterImages      PickerFilter = iota // any decodable image
	FilterStillImages                     // images except animated formats
)

// PickerConfig configures a FilePicker.
type PickerConfig struct {
	// SelectionLimit caps how many paths one pick reads. Zero means 1.
	SelectionLimit int
	Filter         PickerFilter
	// MaxDimension downsizes picked images so neither side exceeds it.
	// Zero keeps the original size.
	MaxDimension int
	// MaxPixels rejects images whose header declares more pixels, before
	// any pixel data is decoded. Zero means no limit.
	MaxPixels int
}

// DefaultPickerConfig selects a single image of any format.
func DefaultPickerConfig() PickerConfig {
	return PickerConfig{SelectionLimit: 1, Filter: FilterImages, MaxDimension: 2048, MaxPixels: 100 << 20}
}

var (
	// ErrPickCancelled is the result of a pick cancelled before it finished.
	ErrPickCancelled = errors.New("pick cancelled")
	// ErrImageTooLarge is the result of a pick whose image exceeds MaxPixels.
	ErrImageTooLarge = errors.New("image too large")
)

// FilePicker loads images from disk in the background, upright and ready to
// hang.
type FilePicker struct {
	Config PickerConfig
}

// NewFilePicker creates a picker with cfg.
func NewFilePicker(cfg PickerConfig) *FilePicker {
	return &FilePicker{Config: cfg}
}

// PickOperation is a running pick. Poll Done, then read Result.
type PickOperation struct {
	cancel context.CancelFunc
	done   chan struct{}

	read  atomic.Int64
	total atomic.Int64

	mu   sync.Mutex
	img  image.Image
	err  error
	path string
}

// Pick starts loading paths in selection order, up to the selection limit.
// The operation's result is the last image that loaded; a failure ends the
// pick.
func (p *FilePicker) Pick(ctx context.Context, paths ...string) *PickOperation {
	ctx, cancel := context.WithCancel(ctx)
	op := &PickOperation{cancel: cancel, done: make(chan struct{})}
	limit := p.Config.SelectionLimit
	if limit <= 0 {
		limit = 1
	}
	if len(paths) > limit {
		paths = paths[:limit]
	}
	go func() {
		defer close(op.done)
		defer cancel()
		if len(paths) == 0 {
			op.finish(nil, "", errors.New("pick: nothing selected"))
			return
		}
		for _, path := range paths {
			img, err := p.load(ctx, op, path)
			if err != nil {
				op.finish(nil, path, err)
				return
			}
			op.finish(img, path, nil)
		}
	}()
	return op
}

func (p *FilePicker) load(ctx context.Context, op *PickOperation, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pick %s: %w", path, err)
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil {
		op.total.Add(st.Size())
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, &progressReader{ctx: ctx, r: f, n: &op.read}); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrPickCancelled
		}
		return nil, fmt.Errorf("pick %s: %w", path, err)
	}
	data := buf.Bytes()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pick %s: decode: %w", path, err)
	}
	if p.Config.Filter == FilterStillImages && format == "gif" {
		return nil, fmt.Errorf("pick %s: %s is not a still image format", path, format)
	}
	if limit := p.Config.MaxPixels; limit > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, fmt.Errorf("pick %s: %dx%d: %w", path, cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pick %s: decode: %w", path, err)
	}
	if format == "jpeg" || format == "tiff" {
		img = Reorient(img, exifOrientation(data))
	}
	return fitWithin(img, p.Config.MaxDimension), nil
}

// fitWithin downsizes img, keeping its aspect ratio, so neither side exceeds
// limit.
func fitWithin(img image.Image, limit int) image.Image {
	size := img.Bounds().Size()
	if limit <= 0 || (size.X <= limit && size.Y <= limit) {
		return img
	}
	w, h := limit, limit
	if size.X >= size.Y {
		h = max(1, size.Y*limit/size.X)
	} else {
		w = max(1, size.X*limit/size.Y)
	}
	return transform.Resize(img, w, h, transform.Linear)
}

func (op *PickOperation) finish(img image.Image, path string, err error) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.path = path
	if err != nil {
		op.err = err
		return
	}
	op.img = img
}

// Done is closed when the pick has finished.
func (op *PickOperation) Done() <-chan struct{} { return op.done }

// Cancel stops the pick. The result becomes ErrPickCancelled unless the
// pick already finished.
func (op *PickOperation) Cancel() { op.cancel() }

// Progress returns the fraction of bytes read so far, in [0, 1].
func (op *PickOperation) Progress() float64 {
	select {
	case <-op.done:
		return 1
	default:
	}
	total := op.total.Load()
	if total <= 0 {
		return 0
	}
	return clamp01(float64(op.read.Load()) / float64(total))
}

// Result returns the picked image, or the error that ended the pick. It
// blocks until the pick is done.
func (op *PickOperation) Result() (image.Image, error) {
	<-op.done
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.err != nil {
		return nil, op.err
	}
	return op.img, nil
}

// Path returns the last path the pick worked on.
func (op *PickOperation) Path() string {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.path
}

// progressReader counts bytes read and stops when ctx is done.
type progressReader struct {
	ctx context.Context
	r   io.Reader
	n   *atomic.Int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	p.n.Add(int64(n))
	return n, err
}
