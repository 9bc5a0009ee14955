package miner

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
)

func testRun(id, batch string, created time.Time) *Run {
	src, dst := 0, 1
	return &Run{
		ID:         id,
		BatchID:    batch,
		Repository: "networkrepository",
		Dataset:    "bio-" + id,
		StoredName: "Bio" + id,
		Status:     StatusRunning,
		URLs:       []string{"http://nrvis.com/download/data/bio/bio-" + id + ".zip"},
		Parameters: &edgelist.Parameters{
			EdgePath:                 "bio-" + id + ".edges",
			SourcesColumnNumber:      &src,
			DestinationsColumnNumber: &dst,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStore_CreateGetUpdate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	run := testRun("a", "batch-1", now)
	require.NoError(t, store.Create(ctx, run))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Equal(t, run.URLs, got.URLs)
	require.NotNil(t, got.Parameters)
	assert.Equal(t, 1, *got.Parameters.DestinationsColumnNumber)
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.CompletedAt)

	done := now.Add(3 * time.Second)
	run.Status = StatusCompleted
	run.StartedAt = &now
	run.CompletedAt = &done
	run.Summary = &edgelist.Summary{Nodes: 4, Edges: 5}
	run.Citations = []string{"@misc{nr,}"}
	require.NoError(t, store.Update(ctx, run))

	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 5, got.Summary.Edges)
	assert.Equal(t, []string{"@misc{nr,}"}, got.Citations)
	assert.Equal(t, 3*time.Second, got.Duration())
}

func TestStore_NotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))

	err = store.Update(ctx, testRun("missing", "b", time.Now()))
	assert.True(t, errors.IsNotFoundError(err))
}

func TestStore_ListAndCounts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := testRun(id, "batch-1", base.Add(time.Duration(i)*time.Minute))
		if id == "b" {
			run.Status = StatusFailed
			run.Error = "boom"
		}
		require.NoError(t, store.Create(ctx, run))
	}
	require.NoError(t, store.Create(ctx, testRun("d", "batch-2", base)))

	runs, err := store.List(ctx, ListOptions{BatchID: "batch-1"})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID, "newest first")

	runs, err = store.List(ctx, ListOptions{Status: StatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "boom", runs[0].Error)

	runs, err = store.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	counts, err := store.Counts(ctx, "batch-1")
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusRunning: 2, StatusFailed: 1}, counts)
}

func TestStore_QueryErrors(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	store := NewStore(conn)

	mock.ExpectQuery("SELECT (.+) FROM mining_runs").WillReturnError(errors.New("database is locked"))
	_, err = store.List(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")

	mock.ExpectExec("UPDATE mining_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.Update(context.Background(), testRun("x", "b", time.Now()))
	assert.True(t, errors.IsNotFoundError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusUnsupported.Valid())
	assert.False(t, Status("paused").Valid())
}
