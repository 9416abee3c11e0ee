package poflow

import (
	"fmt"

	taskmem "github.com/poflow/poflow/service/dao/task/memory"
	"github.com/poflow/poflow/service/delegate"
	"github.com/poflow/poflow/service/event"
	"github.com/poflow/poflow/service/executor"
	"github.com/poflow/poflow/service/messaging"
	"github.com/poflow/poflow/service/messaging/fs"
	mmemory "github.com/poflow/poflow/service/messaging/memory"
	"github.com/poflow/poflow/service/processor"
	"github.com/poflow/poflow/tracing"
)

// Service assembles the purchase-order approval engine: a task store, a
// scheduling queue, the executor with its optional completion delegate, and
// the event service for terminal notifications.
type Service struct {
	config           *Config
	runtime          *Runtime
	completer        delegate.Completer
	eventService     *event.Service
	executor         executor.Service
	queue            messaging.Queue[string]
	processorWorkers int
}

// New creates the engine. A nil or partial configuration falls back to
// package defaults; a misconfigured delegate is reported here, before any
// task is accepted.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}

	var executorOptions []executor.Option
	if s.completer != nil {
		mode := delegate.Mode(s.config.Delegate.Mode)
		if mode == "" {
			mode = delegate.ModeNarrative
		}
		executorOptions = append(executorOptions, executor.WithDelegate(s.completer, mode))
	}
	executorOptions = append(executorOptions, executor.WithEventService(s.eventService))
	s.executor = executor.NewService(executorOptions...)

	var err error
	s.runtime.processor, err = processor.New(
		processor.WithExecutor(s.executor),
		processor.WithMessageQueue(s.queue),
		processor.WithWorkers(s.processorWorkers),
		processor.WithTaskDAO(s.runtime.taskDAO))
	if err != nil {
		return err
	}
	s.runtime.eventService = s.eventService
	return nil
}

func (s *Service) ensureBaseSetup() (err error) {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err = s.config.Validate(); err != nil {
		return err
	}
	if s.runtime.taskDAO == nil {
		s.runtime.taskDAO = taskmem.New()
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[string](mmemory.DefaultConfig())
	}
	if s.processorWorkers == 0 {
		s.processorWorkers = s.config.Processor.WorkerCount
	}
	if s.eventService == nil {
		vendor := messaging.Vendor(s.config.Events.Vendor)
		if vendor == "" {
			vendor = "memory"
		}
		var eventOptions []event.Option
		if fsConfig := s.config.Events.FS; fsConfig != nil {
			eventOptions = append(eventOptions, event.WithNewFsQueueConfig(func(name string) fs.Config {
				queueConfig := *fsConfig
				queueConfig.BasePath = fsConfig.BasePath + "/" + name
				return queueConfig
			}))
		}
		if s.eventService, err = event.New(vendor, eventOptions...); err != nil {
			return err
		}
	}
	if s.completer == nil && s.config.Delegate.Enabled() {
		if s.completer, err = delegate.NewAzureOpenAI(s.config.Delegate.Config); err != nil {
			return fmt.Errorf("failed to initialise completion delegate: %w", err)
		}
	}
	if s.config.Tracing.Enabled {
		if err = tracing.Init(s.config.Name, s.config.Version, s.config.Tracing.OutputFile); err != nil {
			return err
		}
	}
	return nil
}

// Events exposes the event service for listener registration.
func (s *Service) Events() *event.Service {
	return s.eventService
}

// Runtime returns the engine runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}
