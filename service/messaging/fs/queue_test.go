package fs

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type testEvent struct {
	TaskID string `json:"taskId"`
	Kind   string `json:"kind"`
}

func TestQueue_PublishConsumeAck(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "poflow-queue-test")
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	fsService := afs.New()
	ctx := context.Background()

	queue, err := NewQueue[testEvent](fsService, Config{BasePath: tempDir, MaxRetries: 1})
	if !assert.NoError(t, err) {
		return
	}

	for _, dir := range []string{queue.pendingDir, queue.processingDir, queue.completedDir, queue.failedDir, queue.dlqDir} {
		exists, _ := fsService.Exists(ctx, dir)
		assert.True(t, exists, dir)
	}

	err = queue.Publish(ctx, &testEvent{TaskID: "task-1", Kind: "task.completed"})
	assert.NoError(t, err)

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, message) {
		return
	}
	assert.Equal(t, "task-1", message.T().TaskID)
	assert.NoError(t, message.Ack())

	// nothing left to consume
	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message)
}

func TestQueue_NackRetryThenDeadLetter(t *testing.T) {
	tempDir, err := os.MkdirTemp("/tmp", "poflow-queue-test")
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	queue, err := NewQueue[testEvent](afs.New(), Config{BasePath: tempDir, MaxRetries: 1})
	if !assert.NoError(t, err) {
		return
	}

	_ = queue.Publish(ctx, &testEvent{TaskID: "task-2", Kind: "task.failed"})

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(nil))

	// retried from the failed directory
	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, message) {
		return
	}
	assert.NoError(t, message.Nack(nil))

	// beyond the retry limit the message is parked on the DLQ
	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message)
}

func TestNewQueue_RequiresBasePath(t *testing.T) {
	_, err := NewQueue[testEvent](afs.New(), Config{})
	assert.Error(t, err)
}
