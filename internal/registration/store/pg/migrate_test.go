package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	migrations "github.com/dropDatabas3/earlyaccess/migrations/postgres"
)

func TestListMigrations_Order(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b_up.sql":   {Data: []byte("select 2")},
		"m/0001_a_up.sql":   {Data: []byte("select 1")},
		"m/0001_a_down.sql": {Data: []byte("select -1")},
		"m/0002_b_down.sql": {Data: []byte("select -2")},
		"m/README.md":       {Data: []byte("nope")},
	}

	up, err := ListMigrations(fsys, "m", Up)
	require.NoError(t, err)
	assert.Equal(t, []string{"m/0001_a_up.sql", "m/0002_b_up.sql"}, up)

	down, err := ListMigrations(fsys, "m", Down)
	require.NoError(t, err)
	assert.Equal(t, []string{"m/0002_b_down.sql", "m/0001_a_down.sql"}, down)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	up, err := ListMigrations(migrations.FS, migrations.Dir, Up)
	require.NoError(t, err)
	down, err := ListMigrations(migrations.FS, migrations.Dir, Down)
	require.NoError(t, err)
	require.NotEmpty(t, up)
	assert.Len(t, down, len(up))
}
