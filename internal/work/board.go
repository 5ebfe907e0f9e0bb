package work

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/store"
)

// ID prefixes handed out by the board.
const (
	TaskPrefix     = "T"
	DocumentPrefix = "D"
)

// Board is one company's work board. Dispatched actions stay in memory
// until Commit.
type Board struct {
	st        store.WorkStore
	companyID string
	logger    *log.Logger
	now       func() time.Time

	snap    Snapshot
	pending int
}

// Load reads the company's board from st.
func Load(ctx context.Context, st store.WorkStore, companyID string, logger *log.Logger) (*Board, error) {
	tasks, err := st.ListTasks(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	docs, err := st.ListDocuments(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	return &Board{
		st:        st,
		companyID: companyID,
		logger:    logger.WithComponent(log.ComponentWork),
		now:       time.Now,
		snap:      Snapshot{Tasks: tasks, Documents: docs},
	}, nil
}

// Snapshot returns the current state, including uncommitted actions.
func (b *Board) Snapshot() Snapshot { return b.snap.clone() }

// Dispatch applies a. AddTask and AddDocument without an ID get the next
// free one. It returns the ID of the task or document the action touched.
func (b *Board) Dispatch(a Action) (string, error) {
	var id string
	switch act := a.(type) {
	case AddTask:
		if act.ID == "" {
			act.ID = nextID(TaskPrefix, taskIDs(b.snap))
		}
		id, a = act.ID, act
	case AddDocument:
		if act.ID == "" {
			act.ID = nextID(DocumentPrefix, documentIDs(b.snap))
		}
		id, a = act.ID, act
	case MoveTask:
		id = act.TaskID
	case AssignTask:
		id = act.TaskID
	case LinkDocument:
		id = act.TaskID
	case FileDocument:
		id = act.DocumentID
	}

	next, err := Reduce(b.snap, a, b.now())
	if err != nil {
		return "", err
	}
	b.snap = next
	b.pending++
	b.logger.Debug("action applied", log.FieldCompany, b.companyID, log.FieldOperation, fmt.Sprintf("%T", a), "id", id)
	return id, nil
}

// Commit saves the board if anything changed.
func (b *Board) Commit(ctx context.Context) error {
	if b.pending == 0 {
		return nil
	}
	if err := b.st.SaveWork(ctx, b.companyID, b.snap.Tasks, b.snap.Documents); err != nil {
		return fmt.Errorf("saving work board: %w", err)
	}
	b.logger.Info("work board saved",
		log.FieldCompany, b.companyID,
		log.FieldCount, b.pending,
	)
	b.pending = 0
	return nil
}

func taskIDs(s Snapshot) []string {
	ids := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		ids[i] = t.ID
	}
	return ids
}

func documentIDs(s Snapshot) []string {
	ids := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		ids[i] = d.ID
	}
	return ids
}

// nextID returns prefix followed by one more than the highest numeric
// suffix among ids with that prefix.
func nextID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil || !strings.HasPrefix(id, prefix) {
			continue
		}
		highest = max(highest, n)
	}
	return prefix + strconv.Itoa(highest+1)
}
