package chart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MinWidth       = 800
	DefaultHeight  = 450
	resizeDebounce = 100 * time.Millisecond
)

// ErrPanelClosed is returned by Render after Close
var ErrPanelClosed = errors.New("chart panel closed")

// Options describe the container a widget is created in
type Options struct {
	Symbol string
	Width  int
	Height int
}

// Normalized applies the minimum width and default height
func (o Options) Normalized() Options {
	if o.Width < MinWidth {
		o.Width = MinWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Widget is a chart instance that ingests ordered points keyed by time
type Widget interface {
	SetSeries(series Series) error
	Resize(width, height int)
	FitContent()
	Close() error
}

// Factory creates a new widget for the given container options
type Factory func(opts Options) (Widget, error)

// ResizeSource delivers container width changes.
// Subscribe returns the function that removes the listener.
type ResizeSource interface {
	Subscribe(fn func(width int)) (unsubscribe func())
}

// Panel exclusively owns at most one widget. Every Render releases the previous
// widget and its resize listener before creating the next one.
type Panel struct {
	mu      sync.Mutex
	factory Factory
	resize  ResizeSource
	opts    Options
	logger  zerolog.Logger

	widget      Widget
	unsubscribe func()
	timer       *time.Timer
	closed      bool
}

// NewPanel creates a panel. resize may be nil when the container never changes size.
func NewPanel(factory Factory, resize ResizeSource, opts Options) *Panel {
	return &Panel{
		factory: factory,
		resize:  resize,
		opts:    opts.Normalized(),
		logger:  log.With().Str("component", "chart_panel").Logger(),
	}
}

// Render replaces the current widget with a new one showing series for symbol.
// An empty series only releases the current widget.
func (p *Panel) Render(symbol string, series Series) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPanelClosed
	}

	releaseErr := p.releaseLocked()

	if series.Empty() {
		return releaseErr
	}

	opts := p.opts
	opts.Symbol = symbol
	w, err := p.factory(opts)
	if err != nil {
		return errors.Join(releaseErr, fmt.Errorf("creating chart widget: %w", err))
	}

	if err := w.SetSeries(series); err != nil {
		closeErr := w.Close()
		return errors.Join(releaseErr, fmt.Errorf("setting chart data: %w", err), closeErr)
	}

	p.widget = w
	if p.resize != nil {
		p.unsubscribe = p.resize.Subscribe(p.onResize)
	}

	p.logger.Debug().
		Int("points", len(series.Prices)).
		Int("width", p.opts.Width).
		Msg("Chart rendered")
	return releaseErr
}

// Active reports whether the panel currently holds a widget
func (p *Panel) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.widget != nil
}

// Close releases the widget. Calling it more than once is safe.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.releaseLocked()
}

func (p *Panel) releaseLocked() error {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	if p.widget == nil {
		return nil
	}

	w := p.widget
	p.widget = nil
	if err := w.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to release chart widget")
		return fmt.Errorf("releasing chart widget: %w", err)
	}
	return nil
}

// onResize debounces container resizes before touching the widget
func (p *Panel) onResize(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.widget == nil {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}

	target := p.widget
	p.timer = time.AfterFunc(resizeDebounce, func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		// the widget may have been replaced while the timer was pending
		if p.widget != target {
			return
		}
		p.opts.Width = width
		p.opts = p.opts.Normalized()
		target.Resize(p.opts.Width, p.opts.Height)
		target.FitContent()
	})
}
