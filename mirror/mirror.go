// Package mirror republishes presented frames as an MJPEG stream over HTTP.
package mirror

import (
	"bytes"
	"errors"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/mattn/go-mjpeg"
	"github.com/nfnt/resize"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("mirror: closed")

// Option configures New.
type Option func(*Mirror)

// WithMaxSize bounds published frames. Larger frames are downscaled,
// keeping their aspect ratio. Zero disables the bound.
func WithMaxSize(width, height uint) Option {
	return func(m *Mirror) { m.maxWidth, m.maxHeight = width, height }
}

// WithQuality sets the JPEG quality, 1 to 100.
func WithQuality(q int) Option {
	return func(m *Mirror) {
		if q < 1 {
			q = 1
		} else if q > 100 {
			q = 100
		}
		m.quality = q
	}
}

// WithInterval sets how often connected clients receive the latest frame.
func WithInterval(d time.Duration) Option {
	return func(m *Mirror) { m.interval = d }
}

func WithLogger(l logr.Logger) Option {
	return func(m *Mirror) { m.log = l }
}

// Mirror encodes published frames and serves them as multipart JPEG.
// Publish and ServeHTTP may be called from different goroutines.
type Mirror struct {
	maxWidth, maxHeight uint
	quality             int
	interval            time.Duration
	log                 logr.Logger

	mu     sync.Mutex
	stream *mjpeg.Stream
	buf    bufferFlusher
	last   []byte
	closed bool
}

func New(opts ...Option) *Mirror {
	m := &Mirror{
		maxWidth:  1920,
		maxHeight: 1080,
		quality:   75,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.interval > 0 {
		m.stream = mjpeg.NewStreamWithInterval(m.interval)
	} else {
		m.stream = mjpeg.NewStream()
	}
	return m
}

// Publish encodes img and makes it the current frame.
func (m *Mirror) Publish(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	img = m.fit(img)
	m.buf.Reset()
	if err := encodeJpeg(&m.buf, img, jpegQuality(m.quality)); err != nil {
		return err
	}
	// The stream hands the slice to every watcher, so it must not alias buf.
	frame := bytes.Clone(m.buf.Bytes())
	m.last = frame
	if err := m.stream.Update(frame); err != nil {
		m.log.Error(err, "stream update failed")
		return err
	}
	return nil
}

func (m *Mirror) fit(img image.Image) image.Image {
	b := img.Bounds()
	if m.maxWidth == 0 || m.maxHeight == 0 {
		return img
	}
	if uint(b.Dx()) <= m.maxWidth && uint(b.Dy()) <= m.maxHeight {
		return img
	}
	return resize.Thumbnail(m.maxWidth, m.maxHeight, img, resize.Bilinear)
}

// Frame returns the last published JPEG, or nil.
func (m *Mirror) Frame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.stream.ServeHTTP(w, r)
}

// Close disconnects all clients. Publish fails afterwards.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.stream.Close()
}

// Workaround for jpeg.Encode(), which requires a Flush()
// method to not call `bufio.NewWriter`
type bufferFlusher struct {
	bytes.Buffer
}

func (*bufferFlusher) Flush() error { return nil }
