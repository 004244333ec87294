package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"no domain dot", "a@b", false},
		{"minimal valid", "a@b.c", true},
		{"typical address", "user@example.com", true},
		{"surrounding whitespace trimmed", "  user@example.com  ", true},
		{"missing at", "user.example.com", false},
		{"space inside", "us er@example.com", false},
		{"too long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Email(tt.email)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.NotEmpty(t, res.Error)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	assert.False(t, Password("").Valid)
	assert.Equal(t, "Password is required", Password("").Error)

	assert.False(t, Password("short").Valid)
	assert.Equal(t, "Password must be at least 8 characters", Password("short").Error)

	assert.True(t, Password("longenough").Valid)
	assert.True(t, Password("exactly8").Valid)
}

func TestName(t *testing.T) {
	assert.True(t, Name("Mary-Jane O'Brien", "First name").Valid)
	assert.True(t, Name("Anna", "").Valid)

	res := Name("", "First name")
	assert.False(t, res.Valid)
	assert.Equal(t, "First name is required", res.Error)

	assert.False(t, Name("R2D2", "Last name").Valid)
	assert.False(t, Name(strings.Repeat("a", 51), "Last name").Valid)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize("<script>alert(1)</script>", 254))
	assert.Equal(t, "hello", Sanitize("  hello  ", 254))
	assert.Equal(t, "abc", Sanitize("abcdef", 3))
	assert.Equal(t, "héll", Sanitize("héllo", 4))
}
