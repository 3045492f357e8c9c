package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kitobxon/kitobxon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("enables foreign keys on every connection", func(t *testing.T) {
		db, err := New(newTestConfig(t))
		require.NoError(t, err)
		defer db.Close()

		var enabled int
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
		assert.Equal(t, 1, enabled)

		_, err = db.ExecContext(ctx, `CREATE TABLE parents (id TEXT PRIMARY KEY)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `CREATE TABLE children (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parents (id))`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `INSERT INTO children (id, parent_id) VALUES ('c1', 'missing')`)
		require.Error(t, err)
		assert.True(t, IsForeignKeyViolation(err))
	})

	t.Run("uses WAL for file databases", func(t *testing.T) {
		db, err := New(newTestConfig(t))
		require.NoError(t, err)
		defer db.Close()

		var mode string
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("supports FTS5", func(t *testing.T) {
		db, err := New(config.NewForTest())
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, CheckFTS5Support(ctx, db))
	})
}

func TestConcurrentWrites(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.DatabaseMaxRetries = 0
	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE writes (id INTEGER PRIMARY KEY AUTOINCREMENT, value TEXT NOT NULL)`)
	require.NoError(t, err)

	const workers = 10
	const writesPerWorker = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers*writesPerWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				if _, err := db.Exec("INSERT INTO writes (value) VALUES (?)", fmt.Sprintf("%d-%d", worker, i)); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM writes").Scan(&count))
	assert.Equal(t, workers*writesPerWorker, count)
}
