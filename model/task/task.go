package task

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/poflow/poflow/internal/clock"
	"github.com/poflow/poflow/internal/idgen"
	"github.com/poflow/poflow/model/po"
)

// Result carries the outcome of a completed task. Exactly one of Approval or
// Text is populated: Approval for rule evaluation, Text for opaque delegate
// output.
type Result struct {
	Approval *po.Approval `json:"approval,omitempty"`
	Text     string       `json:"text,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Task owns the processing lifecycle of one submitted purchase order. The
// executor is the only writer while the task is running; once a terminal
// state is reached the record becomes read-only. The cancellation flag is
// monotonic - it can only ever go from false to true.
type Task struct {
	ID          string            `json:"id"`
	State       State             `json:"state"`
	Input       *po.PurchaseOrder `json:"input,omitempty"`
	Result      *Result           `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`

	cancelled atomic.Bool
	mux       sync.RWMutex
}

// New creates a task in the Created state for the supplied order.
func New(order *po.PurchaseOrder) *Task {
	return &Task{
		ID:        idgen.New(),
		State:     StateCreated,
		Input:     order,
		CreatedAt: clock.Now(),
	}
}

// Start transitions the task to Running.
func (t *Task) Start() {
	t.mux.Lock()
	defer t.mux.Unlock()
	now := clock.Now()
	t.StartedAt = &now
	t.State = StateRunning
}

// Complete records the result and transitions to Completed.
func (t *Task) Complete(result *Result) {
	t.mux.Lock()
	defer t.mux.Unlock()
	now := clock.Now()
	t.CompletedAt = &now
	t.Result = result
	t.State = StateCompleted
}

// Fail records the error text and transitions to Failed.
func (t *Task) Fail(err error) {
	t.mux.Lock()
	defer t.mux.Unlock()
	now := clock.Now()
	t.CompletedAt = &now
	if err != nil {
		t.Error = err.Error()
	}
	t.State = StateFailed
}

// MarkCancelled transitions to Cancelled. Any in-flight delegate result is
// discarded by the caller.
func (t *Task) MarkCancelled() {
	t.mux.Lock()
	defer t.mux.Unlock()
	now := clock.Now()
	t.CompletedAt = &now
	t.State = StateCancelled
}

// RequestCancel raises the cancellation flag. It has no effect once the task
// is terminal and never interrupts an in-flight delegate call.
func (t *Task) RequestCancel() {
	if t.CurrentState().IsTerminal() {
		return
	}
	t.cancelled.Store(true)
}

// CancelRequested reports whether cancellation has been requested.
func (t *Task) CancelRequested() bool {
	return t.cancelled.Load()
}

// CurrentState returns the state under the read lock.
func (t *Task) CurrentState() State {
	t.mux.RLock()
	defer t.mux.RUnlock()
	return t.State
}

// Snapshot returns a copy of the task safe to hand to callers while the
// executor may still be mutating the original.
func (t *Task) Snapshot() *Task {
	t.mux.RLock()
	defer t.mux.RUnlock()
	clone := &Task{
		ID:          t.ID,
		State:       t.State,
		Input:       t.Input,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
	if t.Result != nil {
		result := *t.Result
		clone.Result = &result
	}
	clone.cancelled.Store(t.cancelled.Load())
	return clone
}
