package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyAuthUser returns the cache key for an authenticated user record
func (kb *KeyBuilder) KeyAuthUser(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyAuthUser, userID))
}

// KeyTaskList returns the cache key for a user's unfiltered task list
func (kb *KeyBuilder) KeyTaskList(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTaskList, userID))
}
