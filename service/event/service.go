package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/afs"

	"github.com/poflow/poflow/service/messaging"
	"github.com/poflow/poflow/service/messaging/fs"
	"github.com/poflow/poflow/service/messaging/memory"
)

// Service fans task events out to typed publishers/listeners. The queue
// vendor decides delivery semantics: "memory" for in-process handoff,
// "fs" for a durable journal via viant/afs.
type Service struct {
	typedPublishers   map[reflect.Type]any
	typedListeners    map[reflect.Type]any
	mux               *sync.RWMutex
	queueVendor       messaging.Vendor
	fsNewQueueConfig  func(name string) fs.Config
	memNewQueueConfig func(name string) memory.Config
}

func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch queueVendor {
	case "fs":
		if ret.fsNewQueueConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires fsNewQueueConfig")
		}
	case "memory":
		if ret.memNewQueueConfig == nil {
			ret.memNewQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}
	return ret, nil
}

func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case "fs":
		return fs.NewQueue[T](afs.New(), s.fsNewQueueConfig(name))
	case "memory":
		return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

func keyOf[T any]() reflect.Type {
	var t T
	rType := reflect.TypeOf(t)
	if rType != nil && rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// PublisherOf returns the shared publisher for the provided payload type.
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	s.mux.Lock()
	s.typedPublishers[key] = publisher
	s.mux.Unlock()
	return publisher, nil
}

// SetListenerOf installs a handler for the provided payload type, replacing
// any previous listener.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	key := keyOf[T]()
	s.mux.RLock()
	previous, ok := s.typedListeners[key]
	s.mux.RUnlock()
	if ok {
		previous.(*Listener[T]).Stop()
	}
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	s.typedListeners[key] = listener
	s.mux.Unlock()
	listener.Start()
	return nil
}
