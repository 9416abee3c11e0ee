package processor

import (
	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	"github.com/poflow/poflow/service/executor"
	"github.com/poflow/poflow/service/messaging"
)

type Option func(*Service)

// WithTaskDAO sets the task store implementation
func WithTaskDAO(taskDAO dao.Service[string, task.Task]) Option {
	return func(s *Service) {
		s.taskDAO = taskDAO
	}
}

// WithMessageQueue sets the message queue implementation
func WithMessageQueue(queue messaging.Queue[string]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the task executor for the service
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
