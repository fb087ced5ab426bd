package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", d.String())
	assert.Equal(t, NewDate(2025, time.March, 15), d)

	_, err = ParseDate("15/03/2025")
	assert.Error(t, err)
	_, err = ParseDate("2025-03-15T00:00:00Z")
	assert.Error(t, err)
}

func TestDate_Arithmetic(t *testing.T) {
	start := NewDate(2025, time.January, 30)

	assert.Equal(t, NewDate(2025, time.February, 2), start.AddDays(3))
	assert.Equal(t, NewDate(2025, time.January, 27), start.AddDays(-3))

	assert.Equal(t, 3, start.AddDays(3).DaysSince(start))
	assert.Equal(t, -3, start.DaysSince(start.AddDays(3)))
	assert.Equal(t, 0, start.DaysSince(start))
}

func TestDate_Comparisons(t *testing.T) {
	a := NewDate(2025, time.June, 1)
	b := NewDate(2025, time.June, 2)

	assert.True(t, b.After(a))
	assert.True(t, a.Before(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.After(a))

	// Comparable: usable as map keys.
	m := map[Date]int{a: 1}
	assert.Equal(t, 1, m[NewDate(2025, time.June, 1)])
}

func TestDate_IsZero(t *testing.T) {
	var zero Date
	assert.True(t, zero.IsZero())
	assert.False(t, NewDate(2025, time.January, 1).IsZero())
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.November, 7)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-07"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`20251107`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &back))
}

func TestDate_YAMLRoundTrip(t *testing.T) {
	d := NewDate(2025, time.November, 7)

	data, err := yaml.Marshal(d)
	require.NoError(t, err)

	var back Date
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	// Plain scalars decode too.
	require.NoError(t, yaml.Unmarshal([]byte("2025-11-07"), &back))
	assert.Equal(t, d, back)
}
