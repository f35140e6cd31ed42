package confirmation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("alice@example.com")

	assert.Len(t, key, KeySize*2)
	assert.True(t, ValidKeyFormat(key))
	assert.Equal(t, strings.ToLower(key), key)
}

func TestGenerateKeyIsUnpredictable(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		key := GenerateKey("alice@example.com")
		_, dup := seen[key]
		assert.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}

func TestValidKeyFormat(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"lowercase", strings.Repeat("a1", KeySize), true},
		{"uppercase", strings.Repeat("F9", KeySize), true},
		{"too short", strings.Repeat("a", KeySize*2-1), false},
		{"too long", strings.Repeat("a", KeySize*2+1), false},
		{"not hex", strings.Repeat("g", KeySize*2), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKeyFormat(tt.key))
		})
	}
}
