package chart

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/Alias1177/StockDashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDuplicateLastWins(t *testing.T) {
	records := []models.RawRecord{
		{Date: "2024-01-01", Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Date: "2024-01-01", Open: 20, High: 22, Low: 19, Close: 21, Volume: 200},
	}

	series := Normalize(records)

	require.Len(t, series.Prices, 1)
	require.Len(t, series.Volumes, 1)

	p := series.Prices[0]
	assert.Equal(t, int64(1704067200), p.Time)
	assert.Equal(t, 20.0, p.Open)
	assert.Equal(t, 22.0, p.High)
	assert.Equal(t, 19.0, p.Low)
	assert.Equal(t, 21.0, p.Close)

	v := series.Volumes[0]
	assert.Equal(t, 200.0, v.Value)
	assert.Equal(t, models.ColorUp, v.Color)

	require.NotNil(t, series.Window)
	assert.Equal(t, models.VisibleRange{From: p.Time, To: p.Time}, *series.Window)
}

func TestNormalizeEmpty(t *testing.T) {
	for _, in := range [][]models.RawRecord{nil, {}} {
		series := Normalize(in)
		assert.NotNil(t, series.Prices)
		assert.NotNil(t, series.Volumes)
		assert.Empty(t, series.Prices)
		assert.Empty(t, series.Volumes)
		assert.Nil(t, series.Window)
		assert.True(t, series.Empty())
	}
}

func TestNormalizeWindowOverThirtyPoints(t *testing.T) {
	records := generateDailyRecords(35, func(i int) models.RawRecord {
		return models.RawRecord{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	})

	series := Normalize(records)

	require.Len(t, series.Prices, 35)
	require.NotNil(t, series.Window)
	assert.Equal(t, series.Prices[5].Time, series.Window.From)
	assert.Equal(t, series.Prices[34].Time, series.Window.To)

	first, _ := models.ParseTimestamp(records[5].Date)
	last, _ := models.ParseTimestamp(records[34].Date)
	assert.Equal(t, first, series.Window.From)
	assert.Equal(t, last, series.Window.To)
}

func TestNormalizeWindowCoversShortSequence(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"single", 1},
		{"few", 7},
		{"exactly window", WindowSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := Normalize(generateDailyRecords(tt.n, nil))
			require.NotNil(t, series.Window)
			assert.Equal(t, series.Prices[0].Time, series.Window.From)
			assert.Equal(t, series.Prices[tt.n-1].Time, series.Window.To)
		})
	}
}

func TestNormalizeSortsAscending(t *testing.T) {
	records := []models.RawRecord{
		{Date: "2024-01-03", Open: 3, Close: 3},
		{Date: "2024-01-01", Open: 1, Close: 1},
		{Date: "2024-01-02", Open: 2, Close: 2},
	}

	series := Normalize(records)

	require.Len(t, series.Prices, 3)
	for i, want := range []float64{1, 2, 3} {
		assert.Equal(t, want, series.Prices[i].Open)
		assert.Equal(t, series.Prices[i].Time, series.Volumes[i].Time)
	}
}

func TestNormalizeColorHint(t *testing.T) {
	tests := []struct {
		name        string
		open, close float64
		want        models.ColorHint
	}{
		{"rising", 10, 11, models.ColorUp},
		{"flat", 10, 10, models.ColorUp},
		{"falling", 11, 10, models.ColorDown},
		{"nan close", 10, math.NaN(), models.ColorDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := Normalize([]models.RawRecord{{
				Date:  "2024-01-01",
				Open:  models.Number(tt.open),
				Close: models.Number(tt.close),
			}})
			require.Len(t, series.Volumes, 1)
			assert.Equal(t, tt.want, series.Volumes[0].Color)
		})
	}
}

func TestNormalizePassesNaNThrough(t *testing.T) {
	series := Normalize([]models.RawRecord{{
		Date:   "2024-01-01",
		Open:   models.Number(math.NaN()),
		High:   5,
		Low:    4,
		Close:  4.5,
		Volume: models.Number(math.NaN()),
	}})

	require.Len(t, series.Prices, 1)
	assert.True(t, math.IsNaN(series.Prices[0].Open))
	assert.True(t, math.IsNaN(series.Volumes[0].Value))
}

func TestNormalizeUnparseableDatesCollapse(t *testing.T) {
	series := Normalize([]models.RawRecord{
		{Date: "garbage", Open: 1, Close: 1},
		{Date: "also garbage", Open: 2, Close: 2},
		{Date: "2024-01-01", Open: 3, Close: 3},
	})

	require.Len(t, series.Prices, 2)
	assert.Equal(t, int64(0), series.Prices[0].Time)
	assert.Equal(t, 2.0, series.Prices[0].Open)
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := rng.Intn(80)
		records := make([]models.RawRecord, n)
		latest := make(map[string]models.RawRecord)
		for i := range records {
			day := time.Date(2024, 1, 1+rng.Intn(40), 0, 0, 0, 0, time.UTC).Format("2006-01-02")
			open := float64(rng.Intn(100))
			records[i] = models.RawRecord{
				Date:   day,
				Open:   models.Number(open),
				High:   models.Number(open + 5),
				Low:    models.Number(open - 5),
				Close:  models.Number(float64(rng.Intn(100))),
				Volume: models.Number(float64(i)),
			}
			latest[day] = records[i]
		}

		series := Normalize(records)

		require.Len(t, series.Prices, len(latest), "round %d", round)
		require.Len(t, series.Volumes, len(latest))
		for i := 1; i < len(series.Prices); i++ {
			assert.Less(t, series.Prices[i-1].Time, series.Prices[i].Time)
		}
		for i, p := range series.Prices {
			day := time.Unix(p.Time, 0).UTC().Format("2006-01-02")
			want := latest[day]
			assert.Equal(t, want.Open.Float(), p.Open)
			assert.Equal(t, want.Volume.Float(), series.Volumes[i].Value)
			assert.Equal(t, want.Close.Float() >= want.Open.Float(), series.Volumes[i].Color == models.ColorUp)
		}

		if len(series.Prices) == 0 {
			assert.Nil(t, series.Window)
			continue
		}
		require.NotNil(t, series.Window)
		from := 0
		if len(series.Prices) > WindowSize {
			from = len(series.Prices) - WindowSize
		}
		assert.Equal(t, series.Prices[from].Time, series.Window.From)
		assert.Equal(t, series.Prices[len(series.Prices)-1].Time, series.Window.To)
	}
}

func generateDailyRecords(n int, generator func(int) models.RawRecord) []models.RawRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.RawRecord, n)
	for i := 0; i < n; i++ {
		var rec models.RawRecord
		if generator != nil {
			rec = generator(i)
		} else {
			rec = models.RawRecord{Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
		}
		rec.Date = start.AddDate(0, 0, i).Format("2006-01-02")
		records[i] = rec
	}
	return records
}

func ExampleNormalize() {
	series := Normalize([]models.RawRecord{
		{Date: "2024-01-02", Open: 5, High: 6, Low: 4, Close: 4.5, Volume: 300},
		{Date: "2024-01-01", Open: 4, High: 5, Low: 3, Close: 5, Volume: 200},
	})
	for i, p := range series.Prices {
		fmt.Println(p.Time, p.Close, series.Volumes[i].Color)
	}
	fmt.Println(series.Window.From, series.Window.To)
	// Output:
	// 1704067200 5 up
	// 1704153600 4.5 down
	// 1704067200 1704153600
}
