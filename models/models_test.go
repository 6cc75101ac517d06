package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordDecodesNumbersAndStrings(t *testing.T) {
	body := `{"date":"2024-01-01","open":"10.5","high":12,"low":"9","close":11.25,"volume":"1500"}`

	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	assert.Equal(t, "2024-01-01", rec.Date)
	assert.Equal(t, 10.5, rec.Open.Float())
	assert.Equal(t, 12.0, rec.High.Float())
	assert.Equal(t, 9.0, rec.Low.Float())
	assert.Equal(t, 11.25, rec.Close.Float())
	assert.Equal(t, 1500.0, rec.Volume.Float())
}

func TestNumberInvalidBecomesNaN(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"word", `"abc"`},
		{"null", `null`},
		{"bool", `true`},
		{"empty string", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.True(t, math.IsNaN(n.Float()))
		})
	}
}

func TestParseNumberLenientForms(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{" 12.5", 12.5},
		{"12.5 ", 12.5},
		{"12.5abc", 12.5},
		{"-.5", -0.5},
		{"1e3", 1000},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}

	assert.True(t, math.IsNaN(ParseNumber("abc12")))
	assert.True(t, math.IsNaN(ParseNumber("   ")))
}

func TestNumberOverflowBecomesInf(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte(`1e400`), &n))
	assert.True(t, math.IsInf(n.Float(), 1))

	require.NoError(t, json.Unmarshal([]byte(`" 7.25 "`), &n))
	assert.Equal(t, 7.25, n.Float())
}

func TestNumberMarshalNaNAsNull(t *testing.T) {
	out, err := json.Marshal(Number(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2024-01-01", 1704067200, true},
		{"2024-01-01T00:00:00", 1704067200, true},
		{"2024-01-01T00:00:00Z", 1704067200, true},
		{"2024-01-01T00:00:00.999Z", 1704067200, true},
		{"2024-01-01T02:00:00+02:00", 1704067200, true},
		{"2024-01-01 12:30:00", 1704112200, true},
		{"not a date", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatQueryTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 120_000_000, time.FixedZone("x", 3600))
	assert.Equal(t, "2024-03-05T13:07:09.120Z", FormatQueryTime(ts))
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	r := DefaultRange(now, 0)
	assert.Equal(t, now, r.End)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), r.Start)
}

func TestUpdateFrequency(t *testing.T) {
	assert.True(t, UpdateHourly.Valid())
	assert.False(t, UpdateFrequency("monthly").Valid())
	assert.Equal(t, "@hourly", UpdateHourly.CronSpec())
	assert.Equal(t, "@weekly", UpdateWeekly.CronSpec())
	assert.Equal(t, "@daily", UpdateFrequency("").CronSpec())
}

func TestAnomalyFallbackFields(t *testing.T) {
	a := Anomaly{Timestamp: "2024-01-05", AnomalyType: "volume"}
	assert.Equal(t, "2024-01-05", a.When())
	assert.Equal(t, "volume", a.Kind())

	a.Date, a.Type = "2024-01-06", "price"
	assert.Equal(t, "2024-01-06", a.When())
	assert.Equal(t, "price", a.Kind())
}

func TestPointsMarshalNaNAsNull(t *testing.T) {
	out, err := json.Marshal([]any{
		PricePoint{Time: 1, Open: math.NaN(), High: 2, Low: 1, Close: 1.5},
		VolumePoint{Time: 1, Value: math.NaN(), Color: ColorDown},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"time":1,"open":null,"high":2,"low":1,"close":1.5},{"time":1,"value":null,"color":"down"}]`,
		string(out))
}
