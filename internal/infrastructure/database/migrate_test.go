package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Ordered(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}
	assert.Equal(t, "0001_users", ms[0].Version)
}

func TestMigrations_SluggableTablesHaveUniqueSlug(t *testing.T) {
	ms, err := Migrations()
	require.NoError(t, err)

	var all strings.Builder
	for _, m := range ms {
		all.WriteString(m.SQL)
	}
	schema := all.String()

	for kind, table := range slugTables {
		start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+table.name+" (")
		require.GreaterOrEqual(t, start, 0, "table for %s", kind)
		end := strings.Index(schema[start:], ");")
		body := schema[start : start+end]
		assert.Regexp(t, `slug\s+TEXT\s+NOT NULL UNIQUE`, body, "table %s", table.name)
	}
}

func TestCompactSQL(t *testing.T) {
	assert.Equal(t, "SELECT 1 FROM genres", compactSQL("  SELECT 1\n\t FROM   genres  "))
	long := strings.Repeat("x", 600)
	assert.Len(t, compactSQL(long), 503)
}
