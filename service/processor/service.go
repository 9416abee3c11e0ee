package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	"github.com/poflow/poflow/service/executor"
	"github.com/poflow/poflow/service/messaging"
	"github.com/poflow/poflow/tracing"
)

// Config represents processor service configuration
type Config struct {
	// WorkerCount is the number of workers executing submitted tasks
	WorkerCount int `json:"workerCount,omitempty" yaml:"workerCount,omitempty"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5,
	}
}

// Service dispatches submitted tasks to a pool of workers. Each submission
// persists the task and publishes its ID; a worker picks the ID up, loads the
// task and drives it to a terminal state.
type Service struct {
	config  Config
	taskDAO dao.Service[string, task.Task]

	queue    messaging.Queue[string]
	executor executor.Service

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.taskDAO == nil {
		return nil, fmt.Errorf("taskDAO service is required")
	}
	if s.config.WorkerCount <= 0 {
		s.config.WorkerCount = DefaultConfig().WorkerCount
	}
	return s, nil
}

// Start begins the worker pool
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes messages from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled - graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process task: %v", w.id, pErr)
		}
	}
}

// Submit persists the task and schedules it for execution. The returned task
// is immediately observable through the store in Created state.
func (s *Service) Submit(ctx context.Context, aTask *task.Task) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("processor.Submit %s", aTask.ID), "PRODUCER")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"task.id": aTask.ID})

	if aTask.CurrentState() != task.StateCreated {
		return fmt.Errorf("task %s is not submittable in state %s", aTask.ID, aTask.CurrentState())
	}
	if err = s.taskDAO.Save(ctx, aTask); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	taskID := aTask.ID
	if err = s.queue.Publish(ctx, &taskID); err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	return s.taskDAO.Load(ctx, taskID)
}

// CancelTask requests cooperative cancellation of a task. Calling it on a
// task already in a terminal state is a no-op.
func (s *Service) CancelTask(ctx context.Context, taskID string) error {
	aTask, err := s.taskDAO.Load(ctx, taskID)
	if err != nil {
		return err
	}
	aTask.RequestCancel()
	return s.taskDAO.Save(ctx, aTask)
}

// processMessage executes a single scheduled task
func (s *Service) processMessage(ctx context.Context, message messaging.Message[string]) error {
	taskID := *message.T()
	aTask, err := s.taskDAO.Load(ctx, taskID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			// the task record is gone; retrying cannot help
			return message.Ack()
		}
		return message.Nack(err)
	}

	if err = s.executor.Execute(ctx, aTask); err != nil {
		// executable-state violations are not retriable
		_ = message.Ack()
		return err
	}
	if err = s.taskDAO.Save(ctx, aTask); err != nil {
		return message.Nack(err)
	}
	return message.Ack()
}

// Shutdown stops the processor workers
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
