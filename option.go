package poflow

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	"github.com/poflow/poflow/service/delegate"
	"github.com/poflow/poflow/service/event"
	"github.com/poflow/poflow/service/messaging"
	"github.com/poflow/poflow/tracing"
)

// Option customises the engine service.
type Option func(s *Service)

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCompleter sets the completion delegate directly, bypassing the
// configuration-driven Azure OpenAI client.
func WithCompleter(completer delegate.Completer) Option {
	return func(s *Service) {
		s.completer = completer
	}
}

// WithEventService sets the event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithTaskDAO sets the task store
func WithTaskDAO(dao dao.Service[string, task.Task]) Option {
	return func(s *Service) {
		s.runtime.taskDAO = dao
	}
}

// WithQueue sets the task scheduling queue
func WithQueue(queue messaging.Queue[string]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithProcessorWorkers sets the processor workers
func WithProcessorWorkers(count int) Option {
	return func(s *Service) {
		s.processorWorkers = count
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times - the first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
