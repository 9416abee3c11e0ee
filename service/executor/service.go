package executor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/approval"
	"github.com/poflow/poflow/service/delegate"
	"github.com/poflow/poflow/service/event"
	"github.com/poflow/poflow/service/validation"
	"github.com/poflow/poflow/tracing"
)

// Service executes a single submitted task through its lifecycle:
// Created -> Running -> {Completed, Failed, Cancelled}. Cancellation is
// cooperative - the flag is checked before and after the evaluation or
// delegate call, never mid-call; an in-flight delegate call runs to
// completion on its own schedule and its result is discarded when
// cancellation was requested.
type Service interface {
	Execute(ctx context.Context, aTask *task.Task) error
}

type service struct {
	mode      delegate.Mode
	completer delegate.Completer
	events    *event.Service
}

// Option customises the executor instance.
type Option func(*service)

// WithDelegate attaches the completion delegate for the given prompt mode.
// Without a delegate the executor evaluates the fixed business rules.
func WithDelegate(completer delegate.Completer, mode delegate.Mode) Option {
	return func(s *service) {
		s.completer = completer
		s.mode = mode
	}
}

// WithEventService attaches the publisher for terminal task events.
func WithEventService(events *event.Service) Option {
	return func(s *service) {
		s.events = events
	}
}

// NewService creates a task executor.
func NewService(options ...Option) Service {
	ret := &service{}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Execute runs one task to a terminal state. The task record is owned by
// this call while Running; once terminal it is read-only. A task cancelled
// before execution began transitions to Cancelled and emits no event.
func (s *service) Execute(ctx context.Context, aTask *task.Task) (err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("executor.Execute %s", aTask.ID), "INTERNAL")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"task.id": aTask.ID})

	if aTask.CurrentState() != task.StateCreated {
		return fmt.Errorf("task %s is not executable in state %s", aTask.ID, aTask.CurrentState())
	}
	if aTask.CancelRequested() {
		aTask.MarkCancelled()
		return nil
	}
	started := time.Now()
	aTask.Start()

	result, execErr := s.run(ctx, aTask)

	// a delegate result arriving after a cancellation request is discarded
	if aTask.CancelRequested() {
		aTask.MarkCancelled()
		s.publish(ctx, aTask, event.TypeTaskCancelled, started)
		return nil
	}
	if execErr != nil {
		aTask.Fail(execErr)
		s.publish(ctx, aTask, event.TypeTaskFailed, started)
		return nil
	}
	aTask.Complete(result)
	s.publish(ctx, aTask, event.TypeTaskCompleted, started)
	return nil
}

func (s *service) run(ctx context.Context, aTask *task.Task) (*task.Result, error) {
	order := aTask.Input
	if order == nil {
		return nil, fmt.Errorf("task %s has no purchase order", aTask.ID)
	}
	warnings := validation.Check(order)

	if s.completer == nil {
		decision := approval.Apply(order)
		return &task.Result{Approval: decision, Warnings: warnings}, nil
	}

	systemPrompt, err := delegate.SystemPrompt(s.mode)
	if err != nil {
		return nil, err
	}
	userPayload, err := delegate.UserPayload(order)
	if err != nil {
		return nil, fmt.Errorf("failed to render purchase order: %w", err)
	}
	text, err := s.completer.Complete(ctx, systemPrompt, userPayload)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	// the delegate output is opaque; it is never re-parsed or validated
	return &task.Result{Text: text, Warnings: warnings}, nil
}

func (s *service) publish(ctx context.Context, aTask *task.Task, eventType string, started time.Time) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[*task.Task](s.events)
	if err != nil {
		log.Printf("failed to resolve task event publisher: %v", err)
		return
	}
	eventContext := &event.Context{
		TaskID:      aTask.ID,
		EventType:   eventType,
		TimeTakenMs: int(time.Since(started).Milliseconds()),
	}
	anEvent := event.NewEvent[*task.Task](eventContext, aTask.Snapshot())
	if err = publisher.Publish(ctx, anEvent); err != nil {
		log.Printf("failed to publish task event: %v", err)
	}
}
