package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_TriState(t *testing.T) {
	tests := []struct {
		name string
		body string
		want OptionalString
	}{
		{
			name: "Absent field",
			body: `{}`,
			want: OptionalString{Set: false},
		},
		{
			name: "Explicit null",
			body: `{"title":null}`,
			want: OptionalString{Set: true, Valid: false},
		},
		{
			name: "Empty string is a value",
			body: `{"title":""}`,
			want: OptionalString{Set: true, Valid: true, Value: ""},
		},
		{
			name: "String value",
			body: `{"title":"Buy milk"}`,
			want: OptionalString{Set: true, Valid: true, Value: "Buy milk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Title)
		})
	}
}

func TestOptionalString_RejectsNonString(t *testing.T) {
	var req UpdateTaskRequest
	assert.Error(t, json.Unmarshal([]byte(`{"title":42}`), &req))
}

func TestValidPriorityAndStatus(t *testing.T) {
	for _, p := range ValidPriorities {
		assert.True(t, IsValidPriority(p))
	}
	assert.False(t, IsValidPriority("Urgent"))
	assert.False(t, IsValidPriority(""))

	for _, s := range ValidStatuses {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("Blocked"))
	assert.False(t, IsValidStatus(""))
}

func TestTaskFilterIsEmpty(t *testing.T) {
	assert.True(t, TaskFilter{}.IsEmpty())
	assert.False(t, TaskFilter{Status: StatusDone}.IsEmpty())
	assert.False(t, TaskFilter{Search: "report"}.IsEmpty())
}

func TestUserJSONHidesPassword(t *testing.T) {
	password := "bcrypt-digest"
	raw, err := json.Marshal(&User{ID: "u1", Email: "u1@example.com", Name: "U", Password: &password})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "bcrypt-digest")
	assert.Contains(t, string(raw), `"email":"u1@example.com"`)
}
