package database

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionID(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)

	seen := make(map[string]struct{})
	for range 100 {
		id, err := store.GenerateSessionID()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(id), 40, "token should encode 32 random bytes")

		_, dup := seen[id]
		assert.False(t, dup, "tokens must not repeat")
		seen[id] = struct{}{}
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	m := &Migrator{}

	up, err := m.migrationFiles(".up.sql")
	require.NoError(t, err)
	down, err := m.migrationFiles(".down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, up)
	require.Len(t, down, len(up))

	for i, file := range up {
		version := strings.SplitN(file, "_", 2)[0]
		assert.True(t, strings.HasPrefix(down[i], version), "missing down migration for %s", file)
	}

	// Sorted filename order doubles as apply order.
	assert.True(t, sortedAsc(up))
}

func sortedAsc(files []string) bool {
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			return false
		}
	}
	return true
}
