// Package chart turns backend price records into chart-ready series and owns
// the chart widget that displays them.
package chart

import (
	"sort"

	"github.com/Alias1177/StockDashboard/models"
)

// WindowSize is how many of the newest points the chart shows initially
const WindowSize = 30

// Series is what a chart widget ingests
type Series struct {
	Prices  []models.PricePoint  `json:"prices"`
	Volumes []models.VolumePoint `json:"volumes"`
	Window  *models.VisibleRange `json:"window,omitempty"`
}

// Empty reports whether there is nothing to draw
func (s Series) Empty() bool {
	return len(s.Prices) == 0
}

// Normalize maps raw records to deduplicated, time-ordered price and volume points.
// When several records share a timestamp the last one in input order wins.
// Unparseable dates map to time 0, unparseable numbers stay NaN.
func Normalize(records []models.RawRecord) Series {
	if len(records) == 0 {
		return Series{
			Prices:  []models.PricePoint{},
			Volumes: []models.VolumePoint{},
		}
	}

	type entry struct {
		price  models.PricePoint
		volume models.VolumePoint
	}

	byTime := make(map[int64]entry, len(records))
	for _, rec := range records {
		ts, _ := models.ParseTimestamp(rec.Date)
		open, closePrice := rec.Open.Float(), rec.Close.Float()

		color := models.ColorDown
		if closePrice >= open {
			color = models.ColorUp
		}

		byTime[ts] = entry{
			price: models.PricePoint{
				Time:  ts,
				Open:  open,
				High:  rec.High.Float(),
				Low:   rec.Low.Float(),
				Close: closePrice,
			},
			volume: models.VolumePoint{
				Time:  ts,
				Value: rec.Volume.Float(),
				Color: color,
			},
		}
	}

	times := make([]int64, 0, len(byTime))
	for ts := range byTime {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	series := Series{
		Prices:  make([]models.PricePoint, 0, len(times)),
		Volumes: make([]models.VolumePoint, 0, len(times)),
	}
	for _, ts := range times {
		e := byTime[ts]
		series.Prices = append(series.Prices, e.price)
		series.Volumes = append(series.Volumes, e.volume)
	}

	series.Window = DefaultWindow(series.Prices)
	return series
}

// DefaultWindow covers the last WindowSize points, or all of them when there are fewer.
// Returns nil for an empty sequence.
func DefaultWindow(prices []models.PricePoint) *models.VisibleRange {
	n := len(prices)
	if n == 0 {
		return nil
	}

	from := 0
	if n > WindowSize {
		from = n - WindowSize
	}

	return &models.VisibleRange{
		From: prices[from].Time,
		To:   prices[n-1].Time,
	}
}
