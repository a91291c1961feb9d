package model

// Task is a single entry of the task list.  It has no identifier; its
// position in the store is the only way it is ordered.
//
// Fields:
//  Text – the task description, never empty once accepted.
type Task struct {
	Text string
}
