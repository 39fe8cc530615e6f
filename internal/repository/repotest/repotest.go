// Package repotest opens throwaway migrated databases for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/internal/repository"
)

// DSN returns a sqlite DSN for a file inside dir.
func DSN(dir string) string {
	return "file:" + filepath.Join(dir, "career.db") + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Open returns a migrated sqlite database that is closed when the test ends.
func Open(t testing.TB) *repository.DB {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: DSN(t.TempDir())}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, repository.Migrate(ctx, db, nil))
	return db
}
