package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRange(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	rng, err := reportRange("", "", now, 30)
	require.NoError(t, err)
	assert.Equal(t, now, rng.End)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), rng.Start)

	rng, err = reportRange("2024-01-01", "2024-01-10", now, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), rng.End)

	_, err = reportRange("2024-02-01", "2024-01-01", now, 30)
	assert.Error(t, err)

	_, err = reportRange("01/02/2024", "", now, 30)
	assert.Error(t, err)
}
