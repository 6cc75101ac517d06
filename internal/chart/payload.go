package chart

import (
	"sync"

	"github.com/Alias1177/StockDashboard/models"
)

// Histogram colours for volume bars
const (
	VolumeUpColor   = "rgba(8, 153, 129, 0.3)"
	VolumeDownColor = "rgba(242, 54, 69, 0.3)"
)

// HistogramBar is a volume bar in the shape lightweight-charts expects
type HistogramBar struct {
	Time  int64         `json:"time"`
	Value models.Number `json:"value"`
	Color string        `json:"color"`
}

// Payload is the full state a browser-side chart needs to draw itself
type Payload struct {
	Symbol       string               `json:"symbol,omitempty"`
	Width        int                  `json:"width"`
	Height       int                  `json:"height"`
	Candles      []models.PricePoint  `json:"candles"`
	Volumes      []HistogramBar       `json:"volumes"`
	VisibleRange *models.VisibleRange `json:"visibleRange,omitempty"`
	FitContent   bool                 `json:"fitContent"`
	Removed      bool                 `json:"removed,omitempty"`
}

// Publisher receives every payload a widget produces
type Publisher interface {
	Publish(p Payload)
}

// PayloadWidget is a Widget that renders into JSON payloads for remote charts
type PayloadWidget struct {
	mu      sync.Mutex
	pub     Publisher
	current Payload
	closed  bool
}

// NewPayloadFactory returns a Factory producing PayloadWidgets tagged with opts.Symbol
func NewPayloadFactory(pub Publisher) Factory {
	return func(opts Options) (Widget, error) {
		opts = opts.Normalized()
		w := &PayloadWidget{
			pub: pub,
			current: Payload{
				Symbol: opts.Symbol,
				Width:  opts.Width,
				Height: opts.Height,
			},
		}
		return w, nil
	}
}

// SetSeries implements Widget
func (w *PayloadWidget) SetSeries(series Series) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrPanelClosed
	}

	bars := make([]HistogramBar, len(series.Volumes))
	for i, v := range series.Volumes {
		color := VolumeDownColor
		if v.Color == models.ColorUp {
			color = VolumeUpColor
		}
		bars[i] = HistogramBar{Time: v.Time, Value: models.Number(v.Value), Color: color}
	}

	w.current.Candles = series.Prices
	w.current.Volumes = bars
	w.current.VisibleRange = nil
	w.current.FitContent = true
	if len(series.Prices) > WindowSize {
		w.current.VisibleRange = series.Window
		w.current.FitContent = false
	}

	w.pub.Publish(w.current)
	return nil
}

// Resize implements Widget
func (w *PayloadWidget) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.current.Width = width
	w.current.Height = height
}

// FitContent implements Widget
func (w *PayloadWidget) FitContent() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.current.VisibleRange = nil
	w.current.FitContent = true
	w.pub.Publish(w.current)
}

// Close implements Widget
func (w *PayloadWidget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.pub.Publish(Payload{Symbol: w.current.Symbol, Removed: true})
	return nil
}

// Current returns the last payload the widget produced
func (w *PayloadWidget) Current() Payload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// ResizeBroadcaster is a ResizeSource fed by whoever observes the container.
// Listeners are invoked outside the broadcaster's lock.
type ResizeBroadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(int)
}

// NewResizeBroadcaster creates an empty broadcaster
func NewResizeBroadcaster() *ResizeBroadcaster {
	return &ResizeBroadcaster{listeners: make(map[int]func(int))}
}

// Subscribe implements ResizeSource
func (b *ResizeBroadcaster) Subscribe(fn func(width int)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Broadcast notifies every current listener of a new width
func (b *ResizeBroadcaster) Broadcast(width int) {
	b.mu.Lock()
	fns := make([]func(int), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}

// Listeners returns the number of active subscriptions
func (b *ResizeBroadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
