package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues(t *testing.T) {
	tests := []struct {
		name  string
		a, b  any
		equal bool
	}{
		{"identical strings", "web", "web", true},
		{"different strings", "web", "api", false},
		{"yaml int vs json float", 30, float64(30), true},
		{"numeric string vs number", "30", 30, true},
		{"bool string vs bool", "true", true, true},
		{"bool vs different bool string", false, "true", false},
		{"nil vs empty map", nil, map[string]any{}, true},
		{"nil vs empty list", nil, []any{}, true},
		{"nested maps with mixed numbers", map[string]any{"a": []any{1, "x"}}, map[string]any{"a": []any{float64(1), "x"}}, true},
		{"nested maps differ", map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{"extra key", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
		{"list order matters", []any{"a", "b"}, []any{"b", "a"}, false},
		{"json documents", `{"a": 1, "b": [1, 2]}`, `{"b":[1,2],"a":1}`, true},
		{"intrinsic vs literal", map[string]any{"Ref": "Name"}, "orders", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Values(tt.a, tt.b))
			assert.Equal(t, tt.equal, Values(tt.b, tt.a))
		})
	}
}

func TestSets(t *testing.T) {
	equal, details := Sets([]string{"a", "b", "b"}, []string{"b", "a"})
	assert.True(t, equal)
	assert.Empty(t, details)

	equal, details = Sets([]string{"a", "c"}, []string{"a", "b"})
	assert.False(t, equal)
	assert.Equal(t, "Added: [b]; Removed: [c]", details)

	equal, _ = Sets(nil, []string{})
	assert.True(t, equal)
}

func TestJSONStrings(t *testing.T) {
	equal, _ := JSONStrings(`{"Version":"2012-10-17"}`, "{\n  \"Version\": \"2012-10-17\"\n}")
	assert.True(t, equal)

	equal, details := JSONStrings("not json", `{}`)
	assert.False(t, equal)
	assert.Contains(t, details, "first is not valid JSON")

	equal, _ = JSONStrings("1", "1.0")
	assert.False(t, equal)
}

func TestStringSet(t *testing.T) {
	assert.Nil(t, StringSet(nil))
	assert.Equal(t, []string{"A"}, StringSet("A"))
	assert.Equal(t, []string{"A", "B"}, StringSet([]any{"A", "B"}))
}
