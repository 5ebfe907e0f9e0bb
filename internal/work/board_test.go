package work

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store/memory"
)

func TestBoard_DispatchCommit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	b, err := Load(ctx, st, "acme", log.Discard())
	require.NoError(t, err)
	b.now = func() time.Time { return now }

	docID, err := b.Dispatch(AddDocument{Name: "I-9 Ada", Kind: "i9"})
	require.NoError(t, err)
	assert.Equal(t, "D1", docID)

	taskID, err := b.Dispatch(AddTask{Title: "Onboard Ada", DocumentIDs: []string{docID}})
	require.NoError(t, err)
	assert.Equal(t, "T1", taskID)

	got, err := b.Dispatch(MoveTask{TaskID: taskID, Status: model.TaskDone})
	require.NoError(t, err)
	assert.Equal(t, taskID, got)

	tasks, err := st.ListTasks(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, tasks, "nothing saved before commit")

	require.NoError(t, b.Commit(ctx))

	reloaded, err := Load(ctx, st, "acme", log.Discard())
	require.NoError(t, err)
	snap := reloaded.Snapshot()
	require.Len(t, snap.Tasks, 1)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, model.TaskDone, snap.Tasks[0].Status)
	assert.Equal(t, []string{"D1"}, snap.Tasks[0].DocumentIDs)

	next, err := reloaded.Dispatch(AddTask{Title: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "T2", next)
}

func TestBoard_RejectedActionLeavesState(t *testing.T) {
	b, err := Load(context.Background(), memory.New(), "acme", log.Discard())
	require.NoError(t, err)

	_, err = b.Dispatch(MoveTask{TaskID: "T1", Status: model.TaskDone})
	assert.True(t, errors.Is(err, ErrTaskNotFound))
	assert.Empty(t, b.Snapshot().Tasks)
	assert.Equal(t, 0, b.pending)
}

type failingWork struct{ *memory.Store }

func (failingWork) SaveWork(context.Context, string, []model.Task, []model.Document) error {
	return errors.New("disk full")
}

func TestBoard_CommitError(t *testing.T) {
	ctx := context.Background()
	b, err := Load(ctx, failingWork{memory.New()}, "acme", log.Discard())
	require.NoError(t, err)

	require.NoError(t, b.Commit(ctx), "no-op commit does not touch the store")

	_, err = b.Dispatch(AddDocument{Name: "receipt"})
	require.NoError(t, err)
	assert.ErrorContains(t, b.Commit(ctx), "disk full")
}
