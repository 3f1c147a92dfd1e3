package rundb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesRunsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	row := db.sql.QueryRow(`SELECT count(*) FROM runs`)
	var n int
	require.NoError(t, row.Scan(&n))
	assert.Equal(t, 0, n)
}

func TestStartRunFinishRecordsOneRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	run := StartRun(db, "project.sb3")
	run.Finish(3, 1, true)

	row := db.sql.QueryRow(`SELECT project_path, thread_count, error_count, errored FROM runs`)
	var projectPath string
	var threadCount, errorCount, errored int
	require.NoError(t, row.Scan(&projectPath, &threadCount, &errorCount, &errored))
	assert.Equal(t, "project.sb3", projectPath)
	assert.Equal(t, 3, threadCount)
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 1, errored)
}

func TestStartRunWithNilDBFinishIsNoop(t *testing.T) {
	run := StartRun(nil, "project.sb3")
	assert.NotPanics(t, func() {
		run.Finish(1, 0, false)
	})
}

func TestNilDBCloseIsNoop(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}
