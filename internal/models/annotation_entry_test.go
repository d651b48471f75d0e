package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationEntry_MarshalFlat(t *testing.T) {
	entry := AnnotationEntry{UserID: "u1"}
	entry.Set("tone", "happy", 100)
	entry.Set("pitch", 3.5, 101)

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","tone":"happy","pitch":3.5,"timestamps":{"tone":100,"pitch":101}}`, string(data))
}

func TestAnnotationEntry_UnmarshalFlat(t *testing.T) {
	var entry AnnotationEntry
	err := json.Unmarshal([]byte(`{"user_id":"u1","tone":"happy","flag":false,"timestamps":{"tone":"2024-01-01","flag":7}}`), &entry)
	require.NoError(t, err)

	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, map[string]any{"tone": "happy", "flag": false}, entry.Values)
	assert.Equal(t, map[string]any{"tone": "2024-01-01", "flag": json.Number("7")}, entry.Timestamps)
}

func TestAnnotationEntry_UnmarshalWithoutTimestamps(t *testing.T) {
	var entry AnnotationEntry
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u1","timestamps":null}`), &entry))
	assert.NotNil(t, entry.Timestamps)
	assert.Empty(t, entry.Values)

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","timestamps":{}}`, string(data))
}

func TestAnnotationEntry_UnmarshalRejectsNonObject(t *testing.T) {
	var entry AnnotationEntry
	assert.Error(t, json.Unmarshal([]byte(`["u1"]`), &entry))
	assert.Error(t, json.Unmarshal([]byte(`{"user_id":5}`), &entry))
}

func TestIsReservedField(t *testing.T) {
	assert.True(t, IsReservedField("user_id"))
	assert.True(t, IsReservedField("timestamps"))
	assert.False(t, IsReservedField("note"))
}

func TestAnnotationEntry_LargeNumbersRoundTrip(t *testing.T) {
	in := `{"user_id":"u1","offset":9007199254740993,"timestamps":{"offset":1700000000123456789}}`

	var entry AnnotationEntry
	require.NoError(t, json.Unmarshal([]byte(in), &entry))
	assert.Equal(t, json.Number("9007199254740993"), entry.Values["offset"])
	assert.Equal(t, json.Number("1700000000123456789"), entry.Timestamps["offset"])

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"offset":9007199254740993`)
	assert.Contains(t, string(data), `"offset":1700000000123456789`)
}
