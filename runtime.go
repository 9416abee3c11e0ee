package poflow

import (
	"context"
	"fmt"
	"time"

	"github.com/poflow/poflow/model/po"
	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	"github.com/poflow/poflow/service/event"
	"github.com/poflow/poflow/service/processor"
)

// Runtime represents the approval engine runtime
type Runtime struct {
	taskDAO      dao.Service[string, task.Task]
	processor    *processor.Service
	eventService *event.Service
}

// Start starts the runtime worker pool
func (r *Runtime) Start(ctx context.Context) error {
	return r.processor.Start(ctx)
}

// Shutdown stops the runtime
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.processor.Shutdown()
	return nil
}

// SubmitTask creates a task for the supplied purchase order and schedules it
// for execution. The returned task is immediately observable in Created
// state; a worker advances it asynchronously.
func (r *Runtime) SubmitTask(ctx context.Context, order *po.PurchaseOrder) (*task.Task, error) {
	if order == nil {
		return nil, fmt.Errorf("purchase order cannot be nil")
	}
	aTask := task.New(order)
	if err := r.processor.Submit(ctx, aTask); err != nil {
		return nil, err
	}
	return aTask, nil
}

// SubmitDocument parses a purchase-order document (optionally wrapped in a
// {"purchaseOrder": ...} envelope) and submits it.
func (r *Runtime) SubmitDocument(ctx context.Context, data []byte) (*task.Task, error) {
	order, err := po.Parse(data)
	if err != nil {
		return nil, err
	}
	return r.SubmitTask(ctx, order)
}

// Task retrieves a task by ID; an unknown ID yields dao.ErrNotFound.
func (r *Runtime) Task(ctx context.Context, taskID string) (*task.Task, error) {
	return r.taskDAO.Load(ctx, taskID)
}

// Tasks returns tasks matching the supplied criteria.
func (r *Runtime) Tasks(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Task, error) {
	return r.taskDAO.List(ctx, parameters...)
}

// CancelTask requests cooperative cancellation. Cancelling a task already in
// a terminal state is a no-op; an unknown ID yields dao.ErrNotFound.
func (r *Runtime) CancelTask(ctx context.Context, taskID string) error {
	return r.processor.CancelTask(ctx, taskID)
}

// WaitForTask polls until the task reaches a terminal state or the timeout
// elapses.
func (r *Runtime) WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*task.Task, error) {
	deadline := time.Now().Add(timeout)
	for {
		aTask, err := r.taskDAO.Load(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if aTask.CurrentState().IsTerminal() {
			return aTask, nil
		}
		if time.Now().After(deadline) {
			return aTask, fmt.Errorf("timeout waiting for task %q", taskID)
		}
		select {
		case <-ctx.Done():
			return aTask, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}
