package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilderPrefix(t *testing.T) {
	tests := []struct {
		environment string
		wantPrefix  string
	}{
		{"production", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "staging"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.wantPrefix, kb.GetPrefix())
			assert.Equal(t, tt.wantPrefix+":some:key", kb.BuildKey("some:key"))
		})
	}
}

func TestDomainKeys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:auth:user:u1", kb.KeyAuthUser("u1"))
	assert.Equal(t, "prod:tasks:user:u1", kb.KeyTaskList("u1"))
}
