// This file defines the in-memory task store.  The store is an ordered,
// append-only list of task texts that lives as long as the process.
package repository

import (
	"context" // context lets callers abandon a call before the lock is taken
	"sync"    // sync guards the task slice
)

// defaultSeed is the list every fresh process starts with.
var defaultSeed = []string{
	"Write a diary entry from the future",
	"Create a time machine from a cardboard box",
	"Plan a trip to the dinosaurs",
	"Draw a futuristic city",
	"List items to bring on a time-travel adventure",
}

// DefaultSeed returns a copy of the entries a new store is seeded with at
// startup.
func DefaultSeed() []string {
	return append([]string(nil), defaultSeed...)
}

// TaskRepo holds the task list.  Appends take the write lock so concurrent
// requests never lose or tear an update; reads share the read lock.
type TaskRepo struct {
	mu    sync.RWMutex // mu serializes appends against each other and against reads
	tasks []string     // tasks in insertion order; only ever grows
}

// NewTaskRepo constructs a store pre-populated with seed.  The seed slice
// is copied so the caller keeps ownership of it.
func NewTaskRepo(seed ...string) *TaskRepo {
	tasks := make([]string, len(seed))
	copy(tasks, seed)
	return &TaskRepo{tasks: tasks}
}

// Append adds text to the end of the list and returns its zero-based
// position.  Empty texts are rejected with ErrEmptyTask.
func (r *TaskRepo) Append(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, ErrEmptyTask
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, text)
	return len(r.tasks) - 1, nil
}

// List returns a snapshot of every task in insertion order.  The result is
// never nil and is safe for the caller to modify.
func (r *TaskRepo) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

// Count returns the number of stored tasks.
func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks), nil
}
