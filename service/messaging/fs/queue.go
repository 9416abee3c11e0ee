package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"github.com/poflow/poflow/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue. Messages
// survive process restarts, which makes this vendor suitable for a durable
// task-event journal.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.store(context.Background(), m.queue.completedDir, m, true)
}

// Nack records the failure; the message is retried from the failed directory
// until the retry limit, then parked in the dead-letter directory.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	dir := m.queue.failedDir
	if m.Retries > m.queue.config.MaxRetries {
		dir = m.queue.dlqDir
	}
	return m.queue.store(context.Background(), dir, m, true)
}

// Config holds configuration for the filesystem queue
type Config struct {
	BasePath   string
	MaxRetries int
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/poflow/queue",
		MaxRetries: 3,
	}
}

// Queue implements a filesystem-backed messaging.Queue on top of viant/afs,
// so BasePath may use any supported scheme (file, mem://, s3://, gs://).
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a new filesystem-based queue
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish adds a new message to the pending directory.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return q.store(ctx, q.pendingDir, message, false)
}

// Consume retrieves the oldest message, preferring failed messages eligible
// for retry. Returns nil message when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, dir := range []string{q.failedDir, q.pendingDir} {
		message, err := q.takeOldest(ctx, dir)
		if err != nil {
			return nil, err
		}
		if message != nil {
			return message, nil
		}
	}
	return nil, nil
}

func (q *Queue[T]) takeOldest(ctx context.Context, dir string) (*Message[T], error) {
	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var candidates []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			candidates = append(candidates, object)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	object := candidates[0]
	data, err := q.fs.DownloadWithURL(ctx, object.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", object.URL(), err)
	}
	message := &Message[T]{}
	if err = json.Unmarshal(data, message); err != nil {
		destURL := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", object.Name()))
		_ = q.fs.Move(ctx, object.URL(), destURL)
		return nil, fmt.Errorf("failed to decode message %s: %w", object.URL(), err)
	}
	message.queue = q
	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	if err = q.store(ctx, q.processingDir, message, false); err != nil {
		return nil, err
	}
	if err = q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to remove message from %s: %w", dir, err)
	}
	return message, nil
}

// store uploads a message into the target directory; when move is set the
// copy kept in the processing directory is removed first.
func (q *Queue[T]) store(ctx context.Context, dir string, message *Message[T], move bool) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if move {
		_ = q.fs.Delete(ctx, path.Join(q.processingDir, q.filename(message)))
	}
	location := path.Join(dir, q.filename(message))
	if err = q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store message %s: %w", location, err)
	}
	return nil
}

func (q *Queue[T]) filename(message *Message[T]) string {
	return fmt.Sprintf("%d-%s.json", message.CreatedAt.UnixNano(), message.ID)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
