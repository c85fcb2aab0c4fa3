package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "Already safe", raw: "pump-seal_01.jpg", expected: "pump-seal_01.jpg"},
		{name: "Spaces and accents", raw: "válvula quebrada.png", expected: "v_lvula_quebrada.png"},
		{name: "Unix path", raw: "/tmp/uploads/seal.jpg", expected: "seal.jpg"},
		{name: "Windows path", raw: `C:\Users\op\Desktop\gear box.jpeg`, expected: "gear_box.jpeg"},
		{name: "Empty", raw: "", expected: "photo"},
		{name: "Blank", raw: "   ", expected: "photo"},
		{name: "Symbols", raw: "a&b#c?.jpg", expected: "a_b_c_.jpg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Filename(tc.raw))
		})
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Preventive check", Humanize("PREVENTIVE_CHECK"))
	assert.Equal(t, "High", Humanize("HIGH"))
	assert.Equal(t, "Already fine", Humanize("already fine"))
	assert.Equal(t, "", Humanize(""))
	assert.Equal(t, "", Humanize("__"))
}

func TestID(t *testing.T) {
	id, err := ID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ID(raw)
		assert.Error(t, err, raw)
	}
}

func TestTime(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected time.Time
		wantErr  bool
	}{
		{name: "RFC3339 with zone", raw: "2024-03-01T10:30:00-03:00", expected: time.Date(2024, 3, 1, 13, 30, 0, 0, time.UTC)},
		{name: "RFC3339 UTC millis", raw: "2024-03-01T10:30:00.250Z", expected: time.Date(2024, 3, 1, 10, 30, 0, 250000000, time.UTC)},
		{name: "Datetime local", raw: "2024-03-01T10:30", expected: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "Date only", raw: "2024-03-01", expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "Garbage", raw: "yesterday", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Time(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "got %s", got)
		})
	}
}

func TestOptionalTime(t *testing.T) {
	got, err := OptionalTime(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := " "
	got, err = OptionalTime(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw := "2024-05-06"
	got, err = OptionalTime(&raw)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.Day())

	bad := "06/05/2024"
	_, err = OptionalTime(&bad)
	assert.Error(t, err)
}
