package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a float that decodes from a JSON number or a decimal string.
// Values that cannot be converted become NaN instead of failing the decode.
type Number float64

// Float returns the value as float64
func (n Number) Float() float64 {
	return float64(n)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number(math.NaN())
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Number(math.NaN())
			return nil
		}
		*n = Number(ParseNumber(s))
		return nil
	}

	*n = Number(parseFloatLenient(string(data)))
	return nil
}

// MarshalJSON implements json.Marshaler. NaN and Inf are not valid JSON, so they are written as null.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// numericPrefix matches the longest leading number, the way browsers' parseFloat reads it
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseNumber converts a decimal string to float64. Surrounding whitespace and
// trailing garbage are ignored, "Infinity" and overflowing exponents give ±Inf,
// anything without a leading number is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if d, err := decimal.NewFromString(s); err == nil {
		if f, _ := d.Float64(); !math.IsInf(f, 0) {
			return f
		}
	}

	prefix := numericPrefix.FindString(s)
	if prefix == "" {
		return math.NaN()
	}
	return parseFloatLenient(prefix)
}

// parseFloatLenient is strconv.ParseFloat that keeps ±Inf on overflow
func parseFloatLenient(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// MarshalJSON writes NaN prices as null
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time  int64  `json:"time"`
		Open  Number `json:"open"`
		High  Number `json:"high"`
		Low   Number `json:"low"`
		Close Number `json:"close"`
	}{p.Time, Number(p.Open), Number(p.High), Number(p.Low), Number(p.Close)})
}

// MarshalJSON writes a NaN volume as null
func (v VolumePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time  int64     `json:"time"`
		Value Number    `json:"value"`
		Color ColorHint `json:"color"`
	}{v.Time, Number(v.Value), v.Color})
}
