package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poflow/poflow/model/po"
	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	taskmem "github.com/poflow/poflow/service/dao/task/memory"
	"github.com/poflow/poflow/service/executor"
	"github.com/poflow/poflow/service/messaging/memory"
)

func newTestService(t *testing.T, options ...Option) *Service {
	base := []Option{
		WithTaskDAO(taskmem.New()),
		WithMessageQueue(memory.NewQueue[string](memory.DefaultConfig())),
		WithExecutor(executor.NewService()),
		WithWorkers(2),
	}
	srv, err := New(append(base, options...)...)
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	return srv
}

func testOrder() *po.PurchaseOrder {
	return &po.PurchaseOrder{
		PONumber:        "PO-7001",
		SupplierName:    "Initech",
		BuyerDepartment: "IT",
		SubTotal:        280.37,
		Tax:             19.63,
		GrandTotal:      300.00,
		Items: []po.Item{
			{ItemCode: "KB-17", Description: "Keyboard", Quantity: 1, UnitPrice: 280.37, LineTotal: 280.37},
		},
	}
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		description string
		options     []Option
		errPart     string
	}{
		{
			description: "missing executor",
			options: []Option{
				WithTaskDAO(taskmem.New()),
				WithMessageQueue(memory.NewQueue[string](memory.DefaultConfig())),
			},
			errPart: "executor",
		},
		{
			description: "missing queue",
			options: []Option{
				WithTaskDAO(taskmem.New()),
				WithExecutor(executor.NewService()),
			},
			errPart: "queue",
		},
		{
			description: "missing task store",
			options: []Option{
				WithMessageQueue(memory.NewQueue[string](memory.DefaultConfig())),
				WithExecutor(executor.NewService()),
			},
			errPart: "taskDAO",
		},
	}
	for _, testCase := range testCases {
		_, err := New(testCase.options...)
		if assert.NotNil(t, err, testCase.description) {
			assert.Contains(t, err.Error(), testCase.errPart, testCase.description)
		}
	}
}

func TestService_SubmitAndExecute(t *testing.T) {
	srv := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Nil(t, srv.Start(ctx))
	defer srv.Shutdown()

	aTask := task.New(testOrder())
	assert.Nil(t, srv.Submit(ctx, aTask))

	assert.Eventually(t, func() bool {
		loaded, err := srv.GetTask(ctx, aTask.ID)
		return err == nil && loaded.CurrentState() == task.StateCompleted
	}, time.Second, 10*time.Millisecond)

	loaded, err := srv.GetTask(ctx, aTask.ID)
	assert.Nil(t, err)
	if assert.NotNil(t, loaded.Result) && assert.NotNil(t, loaded.Result.Approval) {
		assert.True(t, loaded.Result.Approval.IsApproved)
	}
}

func TestService_Submit_NotSubmittable(t *testing.T) {
	srv := newTestService(t)
	aTask := task.New(testOrder())
	aTask.Start()

	err := srv.Submit(context.Background(), aTask)
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "not submittable")
	}
}

func TestService_CancelBeforeExecution(t *testing.T) {
	srv := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// submit before any worker runs so the cancel request lands first
	aTask := task.New(testOrder())
	assert.Nil(t, srv.Submit(ctx, aTask))
	assert.Nil(t, srv.CancelTask(ctx, aTask.ID))

	assert.Nil(t, srv.Start(ctx))
	defer srv.Shutdown()

	assert.Eventually(t, func() bool {
		loaded, err := srv.GetTask(ctx, aTask.ID)
		return err == nil && loaded.CurrentState() == task.StateCancelled
	}, time.Second, 10*time.Millisecond)

	loaded, err := srv.GetTask(ctx, aTask.ID)
	assert.Nil(t, err)
	assert.Nil(t, loaded.Result)
}

func TestService_UnknownTask(t *testing.T) {
	srv := newTestService(t)
	_, err := srv.GetTask(context.Background(), "no-such-task")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	err = srv.CancelTask(context.Background(), "no-such-task")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func TestService_CancelTerminalTaskIsNoOp(t *testing.T) {
	srv := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Nil(t, srv.Start(ctx))
	defer srv.Shutdown()

	aTask := task.New(testOrder())
	assert.Nil(t, srv.Submit(ctx, aTask))
	assert.Eventually(t, func() bool {
		loaded, err := srv.GetTask(ctx, aTask.ID)
		return err == nil && loaded.CurrentState().IsTerminal()
	}, time.Second, 10*time.Millisecond)

	assert.Nil(t, srv.CancelTask(ctx, aTask.ID))
	loaded, err := srv.GetTask(ctx, aTask.ID)
	assert.Nil(t, err)
	assert.EqualValues(t, task.StateCompleted, loaded.CurrentState())
}
