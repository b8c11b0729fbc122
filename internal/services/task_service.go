package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mek0124/TrackMasterPro/internal/models"
	"github.com/mek0124/TrackMasterPro/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  TaskStore
	// lists may be nil, in which case every read goes to the store.
	lists TaskListCache
}

func NewTaskService(
	logger zerolog.Logger,
	store TaskStore,
	lists TaskListCache,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
		lists:  lists,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, requesterID, ownerID int64) ([]*models.Task, error) {
	if requesterID != ownerID {
		s.logger.Warn().
			Int64("requester_id", requesterID).
			Int64("owner_id", ownerID).
			Msg("refused to list another user's tasks")
		return nil, ErrForbidden
	}

	if s.lists != nil {
		if tasks, ok := s.lists.Get(ctx, ownerID); ok {
			s.logger.Debug().
				Int("count", len(tasks)).
				Int64("user_id", ownerID).
				Msg("task list served from cache")
			return tasks, nil
		}
	}

	tasks, err := s.store.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.lists != nil {
		s.lists.Set(ctx, ownerID, tasks)
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Int64("user_id", ownerID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, requesterID int64, params CreateTaskParams) (*models.Task, error) {
	if params.UserID != requesterID {
		s.logger.Warn().
			Int64("requester_id", requesterID).
			Int64("declared_owner_id", params.UserID).
			Msg("refused to create a task for another user")
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	task := &models.Task{
		UserID:    params.UserID,
		Title:     params.Title,
		Detail:    params.Detail,
		Date:      params.Date,
		Time:      params.Time,
		Completed: params.Completed,
		Priority:  params.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	taskID, err := s.store.InsertTask(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = taskID

	if s.lists != nil {
		s.lists.Invalidate(ctx, task.UserID)
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, requesterID, taskID int64, patch TaskPatch) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	// Authorization runs against the stored owner, never against
	// anything the caller declares.
	if task.UserID != requesterID {
		s.logger.Warn().
			Int64("task_id", taskID).
			Int64("requester_id", requesterID).
			Int64("owner_id", task.UserID).
			Msg("refused to update another user's task")
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Detail != nil {
		task.Detail = *patch.Detail
	}
	if patch.Date != nil {
		task.Date = *patch.Date
	}
	if patch.Time != nil {
		task.Time = *patch.Time
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	// patch.UserID is deliberately not applied: ownership is
	// immutable through this path.
	task.UpdatedAt = time.Now().UTC()

	err = s.store.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if s.lists != nil {
		s.lists.Invalidate(ctx, task.UserID)
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, requesterID, taskID int64) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Int64("task_id", taskID).
				Msg("task not found")
			return ErrTaskNotFound
		}
		return err
	}

	if task.UserID != requesterID {
		s.logger.Warn().
			Int64("task_id", taskID).
			Int64("requester_id", requesterID).
			Int64("owner_id", task.UserID).
			Msg("refused to delete another user's task")
		return ErrForbidden
	}

	err = s.store.DeleteTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if s.lists != nil {
		s.lists.Invalidate(ctx, task.UserID)
	}

	s.logger.Info().
		Int64("task_id", taskID).
		Int64("user_id", task.UserID).
		Msg("deleted task")
	return nil
}
