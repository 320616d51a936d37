package exportchromium

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"image/png"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-resume-export/export"
)

const (
	cloneAttribute   = "data-capture-clone"
	foldGapPx        = 200
	defaultViewportH = 1200
)

// Host captures surfaces with a shared headless Chromium instance.
type Host struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string
	BaseURL     string
	Logger      export.Logger

	// afterDetach observes the clones left in a tab just before it closes.
	afterDetach func(remaining int)

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	cloneSeq      atomic.Uint64
}

var _ export.SurfaceHost = (*Host)(nil)

// Attach opens a tab, loads the surface and mounts a detached clone of it.
func (h *Host) Attach(ctx context.Context, surface export.RenderedSurface, cfg export.CaptureConfig) (export.AttachedSurface, error) {
	if h == nil {
		return nil, export.NewError(export.KindInternal, "chromium host is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.ensureBrowser(); err != nil {
		return nil, export.CaptureFailure("chromium init failed", err)
	}

	selector := surface.Selector
	if selector == "" {
		selector = export.DefaultSurfaceSelector
	}
	width := cfg.WidthPx
	if width <= 0 {
		width = export.CanonicalWidthPx
	}

	tabCtx, tabCancel := chromedp.NewContext(h.browserCtx)
	execCtx, cancelReq := context.WithCancel(tabCtx)
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	cancel := func() {
		cancelReq()
		tabCancel()
	}
	if h.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, h.Timeout)
		base := cancel
		cancel = func() {
			cancelTimeout()
			base()
		}
	}

	cloneID := fmt.Sprintf("capture-%d", h.cloneSeq.Add(1))
	var bounds cloneBounds

	actions := []chromedp.Action{}
	if !cfg.AllowExternalResources {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs([]string{"http://*", "https://*"}),
		)
	}
	actions = append(actions,
		emulation.SetDeviceMetricsOverride(int64(width), defaultViewportH, 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(injectBaseURL(surface.HTML, h.BaseURL))).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(cloneScript(selector, cloneID, width, cfg), &bounds),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		cancel()
		return nil, export.CaptureFailure("chromium attach failed", err)
	}
	if !bounds.Found {
		cancel()
		return nil, export.CaptureFailure(fmt.Sprintf("surface %s not found", selector), nil)
	}

	return &attachedSurface{
		host:    h,
		ctx:     execCtx,
		cancel:  cancel,
		cloneID: cloneID,
		bounds:  bounds,
	}, nil
}

// Close releases Chromium resources if they have been initialized.
func (h *Host) Close() error {
	if h == nil {
		return nil
	}
	if h.browserCancel != nil {
		h.browserCancel()
	}
	if h.allocCancel != nil {
		h.allocCancel()
	}
	return nil
}

func (h *Host) ensureBrowser() error {
	h.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if h.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(h.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", h.Headless))
		options = append(options, allocatorOptionsFromArgs(h.Args)...)

		h.allocCtx, h.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		h.browserCtx, h.browserCancel = chromedp.NewContext(h.allocCtx)
	})
	if h.allocCtx == nil || h.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

func (h *Host) logger() export.Logger {
	if h.Logger == nil {
		return export.NopLogger{}
	}
	return h.Logger
}

type cloneBounds struct {
	Found  bool    `json:"found"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type attachedSurface struct {
	host    *Host
	ctx     context.Context
	cancel  func()
	cloneID string
	bounds  cloneBounds

	mu       sync.Mutex
	detached bool
}

func (s *attachedSurface) Bounds(ctx context.Context) (float64, float64, error) {
	_ = ctx
	return s.bounds.Width, s.bounds.Height, nil
}

func (s *attachedSurface) Capture(ctx context.Context, cfg export.CaptureConfig) (export.RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return export.RasterImage{}, err
	}
	oversample := cfg.Oversample
	if oversample <= 0 {
		oversample = export.DefaultOversample
	}

	width := int64(math.Ceil(s.bounds.Width))
	var data []byte
	err := chromedp.Run(s.ctx,
		emulation.SetDeviceMetricsOverride(width, defaultViewportH, oversample, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{
					X:      s.bounds.Left,
					Y:      s.bounds.Top,
					Width:  s.bounds.Width,
					Height: s.bounds.Height,
					Scale:  1,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return export.RasterImage{}, export.CaptureFailure("chromium screenshot failed", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return export.RasterImage{}, export.CaptureFailure("decode screenshot", err)
	}
	b := img.Bounds()
	return export.RasterImage{
		Image:      img,
		WidthPx:    b.Dx(),
		HeightPx:   b.Dy(),
		Oversample: oversample,
	}, nil
}

// Detach removes the clone and closes the tab. It is safe to call twice.
func (s *attachedSurface) Detach(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return nil
	}
	s.detached = true
	defer s.cancel()

	if s.ctx.Err() != nil {
		return nil
	}
	var removed bool
	script := fmt.Sprintf(`(function(){const el=document.getElementById(%q);if(!el){return false;}el.remove();return true;})()`, s.cloneID+"-holder")
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &removed)); err != nil {
		return err
	}
	if !removed {
		s.host.logger().Warnf("capture clone %s was already gone", s.cloneID)
	}
	remaining, err := s.liveClones()
	if err != nil {
		return err
	}
	if s.host.afterDetach != nil {
		s.host.afterDetach(remaining)
	}
	if remaining > 0 {
		return export.CaptureFailure(fmt.Sprintf("%d capture clones still mounted after detach", remaining), nil)
	}
	return nil
}

// liveClones counts capture clones mounted in the tab.
func (s *attachedSurface) liveClones() (int, error) {
	var n int
	script := fmt.Sprintf(`document.querySelectorAll('[%s]').length`, cloneAttribute)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

// cloneScript copies the surface node into a holder placed below the document
// fold. The clone keeps the source id so stylesheet rules still match.
func cloneScript(selector, cloneID string, width int, cfg export.CaptureConfig) string {
	return fmt.Sprintf(`(function(sel, cloneId, width, bg, headPad, followPad, gap, attr) {
  const src = document.querySelector(sel);
  if (!src) { return {found: false}; }
  const fold = Math.max(document.documentElement.scrollHeight, document.body.scrollHeight);
  const holder = document.createElement('div');
  holder.id = cloneId + '-holder';
  holder.style.cssText = 'position:absolute;left:0;top:' + (fold + gap) + 'px;width:' + width + 'px;margin:0;padding:0;transform:none;';
  const clone = src.cloneNode(true);
  clone.setAttribute(attr, cloneId);
  clone.style.width = width + 'px';
  clone.style.maxWidth = 'none';
  clone.style.height = 'auto';
  clone.style.margin = '0';
  clone.style.transform = 'none';
  if (bg) { clone.style.background = bg; }
  clone.querySelectorAll('[data-role="heading"], [data-role="divider"]').forEach(function(el) {
    el.style.paddingBottom = headPad + 'px';
    const next = el.nextElementSibling;
    if (next && next.getAttribute('data-role') !== 'divider') {
      next.style.paddingTop = followPad + 'px';
    }
  });
  holder.appendChild(clone);
  document.body.appendChild(holder);
  const r = clone.getBoundingClientRect();
  return {found: true, left: r.left + window.scrollX, top: r.top + window.scrollY, width: r.width, height: r.height};
})(%q, %q, %d, %q, %g, %g, %d, %q)`,
		selector, cloneID, width, cfg.Background, cfg.HeadingPaddingPx, cfg.FollowingPaddingPx, foldGapPx, cloneAttribute)
}

func injectBaseURL(htmlInput []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return htmlInput
	}

	lower := strings.ToLower(string(htmlInput))
	if strings.Contains(lower, "<base") {
		return htmlInput
	}

	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if headIdx := strings.Index(lower, "<head"); headIdx >= 0 {
		if end := strings.Index(lower[headIdx:], ">"); end >= 0 {
			insertPos := headIdx + end + 1
			return append(append([]byte{}, htmlInput[:insertPos]...), append([]byte(baseTag), htmlInput[insertPos:]...)...)
		}
	}
	return append([]byte(baseTag), htmlInput...)
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
