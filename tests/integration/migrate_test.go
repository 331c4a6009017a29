package integration

import (
	"context"
	"path/filepath"
	"testing"

	dblogic "mission-desk/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_SecondRunIsNoop(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(projectRoot(), "database", "migrations")

	require.NoError(t, dblogic.RunMigrations(ctx, db.DB, dir))

	var applied int
	require.NoError(t, db.GetContext(ctx, &applied, `SELECT COUNT(*) FROM schema_migrations WHERE version = :1`, "0001_mission_desk"))
	assert.Equal(t, 1, applied)
}
