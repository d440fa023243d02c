// Package testutil provides shared test helpers for setting up knowledge
// bases, staging areas and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/reinforcer/internal/index"
	"github.com/starford/reinforcer/internal/kb"
	"github.com/starford/reinforcer/internal/pipeline"
	"github.com/starford/reinforcer/internal/staging"
	"github.com/starford/reinforcer/internal/storage"
	"github.com/starford/reinforcer/internal/workflow"
)

// FixedTime is the clock used by assemblers built here.
var FixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "reinforcer-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// Env is a fully wired workflow over temporary directories.
type Env struct {
	Service    *workflow.Service
	DB         *index.DB
	KBDir      string
	StagingDir string
	KB         *kb.Base
	Staging    *staging.Store
}

// NewEnv wires a workflow.Service whose commits are indexed into a
// temporary database. Extra options are applied after the defaults.
func NewEnv(t *testing.T, opts ...workflow.Option) *Env {
	t.Helper()
	kbDir, kbStore := TestStore(t)
	stagingDir, stagingStore := TestStore(t)
	db := TestDB(t)

	base := kb.New(kbStore, nil)
	stage := staging.NewStore(stagingStore, nil)
	asm := pipeline.NewAssembler(pipeline.WithClock(func() time.Time { return FixedTime }))

	all := append([]workflow.Option{workflow.WithIndexer(db)}, opts...)
	return &Env{
		Service:    workflow.New(asm, stage, base, all...),
		DB:         db,
		KBDir:      kbDir,
		StagingDir: stagingDir,
		KB:         base,
		Staging:    stage,
	}
}
