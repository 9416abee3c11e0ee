package memory

import (
	"context"

	"github.com/poflow/poflow/model/task"
	"github.com/poflow/poflow/service/dao"
	"github.com/poflow/poflow/service/dao/criteria"
	"github.com/poflow/poflow/service/dao/store"
)

// Service implements an in-memory, thread-safe task store. Individual task
// records are owned by their executor while running; the store only
// synchronises insert and lookup.
type Service struct {
	store *store.MemoryStore[string, task.Task]
}

var _ dao.Service[string, task.Task] = (*Service)(nil)

func New() *Service {
	return &Service{
		store: store.NewMemoryStore[string, task.Task](func(t *task.Task) string { return t.ID }),
	}
}

func (s *Service) Save(ctx context.Context, t *task.Task) error {
	if t == nil {
		return dao.ErrNilEntity
	}
	if t.ID == "" {
		return dao.ErrInvalidID
	}
	return s.store.Save(ctx, t)
}

func (s *Service) Load(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.store.Load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// List returns tasks matching the optional State parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Task, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if !criteria.FilterByState(string(t.CurrentState()), parameters) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
