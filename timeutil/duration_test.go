package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsISO8601(t *testing.T) {
	assert.True(t, IsISO8601("PT30S"))
	assert.True(t, IsISO8601("-P2dT+4H45M+10.5s"))
	assert.False(t, IsISO8601("30s"))
	assert.False(t, IsISO8601("xPT30S"))
}

func TestParseISO8601(t *testing.T) {
	cases := map[string]time.Duration{
		"PT30S":                     30 * time.Second,
		"pt1m":                      time.Minute,
		"P1D":                       24 * time.Hour,
		"P1DT2H":                    26 * time.Hour,
		"PT0.5S":                    500 * time.Millisecond,
		"PT10,25S":                  10*time.Second + 250*time.Millisecond,
		"PT-4H45M":                  -4*time.Hour + 45*time.Minute,
		"-P2dT+4H45M+10.123456789s": -(52*time.Hour + 45*time.Minute + 10*time.Second + 123456789*time.Nanosecond),
		"PT9223372036S":             9223372036 * time.Second,
	}
	for in, expected := range cases {
		actual, err := ParseISO8601(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, actual, in)
	}

	for _, in := range []string{"", "P", "PT", "PT1X", "P106752D", "PT9223372037S", "30s"} {
		_, err := ParseISO8601(in)
		assert.Error(t, err, in)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = ParseDuration(" PT90S ")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = ParseDuration("ninety seconds")
	assert.Error(t, err)
}
