package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	persistence "github.com/narwhalmedia/wrongopinions/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema
// migrated. The database is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(zaptest.NewLogger(t), false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = database.NewMigrator(db, persistence.Migrations(), logger.NewNoop()).Migrate()
	require.NoError(t, err)

	return db
}

// TruncateTables removes all rows from the domain tables.
func TruncateTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, table := range persistence.Tables() {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
}
