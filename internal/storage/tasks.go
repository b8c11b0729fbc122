package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mek0124/TrackMasterPro/internal/models"
)

type TaskStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskStore(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) *TaskStore {
	return &TaskStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *TaskStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{ID: id}

	const selectTaskQuery = `
SELECT user_id,
       title,
       detail,
       date,
       time,
       completed,
       priority,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		task.ID,
	).Scan(
		&task.UserID,
		&task.Title,
		&task.Detail,
		&task.Date,
		&task.Time,
		&task.Completed,
		&task.Priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to select task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("selected task")

	return task, nil
}

func (s *TaskStore) ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	const selectTasksByOwnerQuery = `
SELECT id,
       title,
       detail,
       date,
       time,
       completed,
       priority,
       created_at,
       updated_at
FROM tasks
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByOwnerQuery,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", ownerID).
			Msg("failed to select tasks by owner")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{UserID: ownerID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Detail,
			&task.Date,
			&task.Time,
			&task.Completed,
			&task.Priority,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("user_id", ownerID).
		Msg("selected tasks by owner")

	return tasks, nil
}

func (s *TaskStore) InsertTask(ctx context.Context, task *models.Task) (int64, error) {
	const insertTaskQuery = `
INSERT INTO tasks (user_id,
                   title,
                   detail,
                   date,
                   time,
                   completed,
                   priority,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	var taskID int64
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.UserID,
		task.Title,
		task.Detail,
		task.Date,
		task.Time,
		task.Completed,
		task.Priority,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return 0, err
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Msg("inserted task")

	return taskID, nil
}

func (s *TaskStore) UpdateTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    detail = $2,
    date = $3,
    time = $4,
    completed = $5,
    priority = $6,
    updated_at = $7
WHERE id = $8
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Detail,
		task.Date,
		task.Time,
		task.Completed,
		task.Priority,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("updated task")

	return nil
}

func (s *TaskStore) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		id,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")

	return nil
}
