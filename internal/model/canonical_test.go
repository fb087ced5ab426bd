package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(out))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	value := map[string]any{
		"b": []any{1, 2, 3},
		"a": map[string]any{"y": 1.5, "x": "s"},
	}

	first, err := MarshalCanonical(value)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(value)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"integer", 42, "42"},
		{"negative", -7, "-7"},
		{"zero", 0, "0"},
		{"whole float collapses", 100.0, "100"},
		{"fraction", 0.25, "0.25"},
		{"shortest round trip", 1.0 / 3.0, "0.3333333333333333"},
		{"negative fraction", -0.05, "-0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"q": "a < b && c > d"})
	require.NoError(t, err)
	assert.Equal(t, `{"q":"a < b && c > d"}`, string(out))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" as e + combining acute (NFD) must canonicalize to the
	// precomposed form (NFC).
	decomposed := "cafe\u0301"
	precomposed := "caf\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_StructUsesJSONTags(t *testing.T) {
	s := Summary{TotalItemsProcessed: 3, FinalBacklogSize: 1}

	out, err := MarshalCanonical(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_items_processed":3`)
	assert.Contains(t, string(out), `"final_backlog_size":1`)
}

func TestMarshalCanonical_SnapshotStable(t *testing.T) {
	snap := Snapshot{
		SnapshotDate:    NewDate(2025, 3, 1),
		TotalItems:      2,
		ItemsByPriority: map[Priority]int{PriorityHigh: 1, PriorityLow: 1},
		ItemsByAge:      map[string]int{AgeBucket0to1: 2},

		SLAComplianceRate:   100,
		CapacityUtilization: 0.2,
		BacklogLevel:        BacklogLow,
	}

	first, err := MarshalCanonical(snap)
	require.NoError(t, err)
	again, err := MarshalCanonical(snap)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
	assert.Contains(t, string(first), `"snapshot_date":"2025-03-01"`)
	assert.Contains(t, string(first), `"sla_compliance_rate":100`)
}
