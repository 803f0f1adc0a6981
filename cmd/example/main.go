//go:build windows

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"math"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/kirides/swapchain/d3d"
	"github.com/kirides/swapchain/mirror"
	"github.com/kirides/swapchain/presenter"
	"github.com/kirides/swapchain/win"
)

func init() {
	// GLFW and DXGI window messages must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "presenter TOML config")
		addr       = flag.String("addr", "127.0.0.1:8023", "mirror listen address")
		display    = flag.Int("display", 0, "output index used for fullscreen")
		framerate  = flag.Int("fps", 15, "mirror frame rate")
		debug      = flag.Bool("debug", false, "enable the D3D11 debug layer and verbose logs")
	)
	flag.Parse()

	zl, err := newZap(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	log := zapr.NewLogger(zl)

	if err := run(log, *configPath, *addr, *display, *framerate, *debug); err != nil {
		log.Error(err, "exiting")
		os.Exit(1)
	}
}

func newZap(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(log logr.Logger, configPath, addr string, display, framerate int, debug bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Make thread PerMonitorV2 Dpi aware if supported on OS so client sizes
	// are reported in physical pixels.
	if win.IsValidDpiAwarenessContext(win.DpiAwarenessContextPerMonitorAwareV2) {
		if _, err := win.SetThreadDpiAwarenessContext(win.DpiAwarenessContextPerMonitorAwareV2); err != nil {
			log.Error(err, "could not set thread DPI awareness to PerMonitorAwareV2")
		}
	}

	n := screenshot.NumActiveDisplays()
	for i := 0; i < n; i++ {
		log.Info("display", "index", i, "bounds", screenshot.GetDisplayBounds(i).String())
	}
	if display >= n {
		log.Info("display out of range, using 0", "display", display, "active", n)
		display = 0
	}

	cfg := presenter.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = presenter.LoadConfig(configPath); err != nil {
			return err
		}
	}
	return runWindow(ctx, log, cfg, addr, display, framerate, debug)
}

func runWindow(ctx context.Context, log logr.Logger, cfg presenter.Config, addr string, display, framerate int, debug bool) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfw.Terminate()

	// The swap chain owns presentation, so no GL context is created.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	width, height := cfg.Width, cfg.Height
	if width == 0 || height == 0 {
		width, height = 1280, 720
	}
	window, err := glfw.CreateWindow(width, height, "swapchain", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	defer window.Destroy()
	hwnd := uintptr(unsafe.Pointer(window.GetWin32Window()))

	cfg.Target = presenter.WindowTarget(hwnd)
	cfg.Width, cfg.Height = 0, 0 // follow the client area

	r := &renderer{
		log:     log,
		cfg:     cfg,
		display: display,
		debug:   debug,
		hwnd:    hwnd,
	}
	if err := r.open(); err != nil {
		return err
	}
	defer r.close()

	m := mirror.New(mirror.WithLogger(log.WithName("mirror")))
	defer m.Close()
	frames := make(chan *image.RGBA, 1)
	go publish(ctx, log, m, frames, framerate)
	go serve(ctx, log, addr, m)

	var (
		resize     *image.Point
		toggle     bool
		lastResize time.Time
	)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		resize = &image.Point{X: width, Y: height}
		lastResize = time.Now()
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF11:
			toggle = true
		}
	})

	start := time.Now()
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		glfw.PollEvents()

		if toggle {
			toggle = false
			if err := r.p.SetFullscreen(!r.p.Fullscreen()); err != nil {
				// Usually DXGI_ERROR_NOT_CURRENTLY_AVAILABLE while another
				// application holds the output.
				log.Error(err, "fullscreen toggle failed")
			}
		}
		// Coalesce drag resizes.
		if resize != nil && time.Since(lastResize) > 50*time.Millisecond {
			sz := *resize
			resize = nil
			if sz.X > 0 && sz.Y > 0 && !win.Minimized(hwnd) {
				if err := r.p.Resize(sz.X, sz.Y, presenter.FormatUnknown); err != nil {
					return fmt.Errorf("resize: %w", err)
				}
			}
		}
		if win.Minimized(hwnd) {
			glfw.WaitEventsTimeout(0.1)
			continue
		}

		if err := r.frame(time.Since(start), frames); err != nil {
			var lost *presenter.DeviceLostError
			if !errors.As(err, &lost) {
				return err
			}
			log.Error(err, "device lost, recreating", "reason", fmt.Sprint(r.dev.Removed()))
			r.close()
			if err := r.open(); err != nil {
				return err
			}
			continue
		}
	}
	return nil
}

type renderer struct {
	log     logr.Logger
	cfg     presenter.Config
	display int
	debug   bool
	hwnd    uintptr

	dev  *d3d.Device
	p    *presenter.Presenter
	snap *image.RGBA
}

func (r *renderer) open() error {
	opts := []d3d.Option{d3d.WithPreferredOutput(r.display), d3d.WithLogger(r.log.WithName("d3d"))}
	if r.debug {
		opts = append(opts, d3d.WithDebugLayer())
	}
	dev, err := d3d.NewDevice(opts...)
	if err != nil {
		return err
	}
	if out, err := dev.Output(dev.PreferredOutput()); err == nil {
		if o, ok := out.(*d3d.Output); ok {
			r.log.Info("fullscreen output", "id", o.ID(), "bounds", o.Bounds().String())
		}
		out.Release()
	}
	p, err := presenter.Create(dev, r.cfg, presenter.WithLogger(r.log.WithName("presenter")))
	if err != nil {
		dev.Release()
		return err
	}
	r.dev, r.p = dev, p
	return nil
}

func (r *renderer) close() {
	if r.p != nil {
		if err := r.p.Release(); err != nil {
			r.log.Error(err, "release presenter")
		}
		r.p = nil
	}
	if r.dev != nil {
		r.dev.Release()
		r.dev = nil
	}
}

// frame clears the backbuffer, offers it to the mirror and presents it.
// The buffer contents are undefined after Present, so capture comes first.
func (r *renderer) frame(t time.Duration, frames chan<- *image.RGBA) error {
	bb, err := r.p.BackBuffer()
	if err != nil {
		return err
	}
	h, err := bb.Handle()
	if err != nil {
		return err
	}
	s := t.Seconds()
	r.dev.Clear(h, [4]float32{
		float32(0.5 + 0.5*math.Sin(s)),
		float32(0.5 + 0.5*math.Sin(s+2)),
		float32(0.5 + 0.5*math.Sin(s+4)),
		1,
	})
	r.capture(frames)
	return r.p.Present()
}

// capture hands a copy of the backbuffer to the mirror. Chains that cannot
// be read back fall back to a GDI copy of the window.
func (r *renderer) capture(frames chan<- *image.RGBA) {
	if len(frames) == cap(frames) {
		return
	}
	bb, err := r.p.BackBuffer()
	if err != nil {
		return
	}
	if r.snap == nil || r.snap.Rect != bb.Bounds() {
		r.snap = image.NewRGBA(bb.Bounds())
	}
	err = r.p.Snapshot(r.snap)
	if errors.Is(err, presenter.ErrCaptureUnsupported) {
		err = win.CaptureWindow(r.hwnd, r.snap)
	}
	if err != nil {
		r.log.V(1).Info("capture failed", "err", err.Error())
		return
	}
	select {
	case frames <- r.snap:
		r.snap = nil
	default:
	}
}

func publish(ctx context.Context, log logr.Logger, m *mirror.Mirror, frames <-chan *image.RGBA, framerate int) {
	limiter := mirror.NewFrameLimiter(framerate)
	for {
		select {
		case <-ctx.Done():
			return
		case img := <-frames:
			if err := m.Publish(img); err != nil {
				if errors.Is(err, mirror.ErrClosed) {
					return
				}
				log.Error(err, "publish")
			}
			limiter.Wait()
		}
	}
}

func serve(ctx context.Context, log logr.Logger, addr string, m *mirror.Mirror) {
	mux := http.NewServeMux()
	mux.Handle("/mjpeg", m)
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>swapchain</title>
	</head>
		<body style="margin:0">
	<img src="/mjpeg" style="max-width: 100vw; max-height: 100vh;object-fit: contain;display: block;margin: 0 auto;" />
</body>`))
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Info("mirror listening", "addr", "http://"+addr+"/watch")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err, "mirror server")
	}
}
