// Package services – TaskService
//
// The background task tracker. It owns only the state record and its
// notifications; execution is delegated to a TaskRunner (the background
// execution substrate), which calls back into ReportProgress and Complete
// as it runs.
//
// State machine per (user, task type):
//
//	NONE ──launch──▶ RUNNING ──complete──▶ COMPLETE ──launch──▶ RUNNING …
//
// A second launch while RUNNING fails with ErrTaskAlreadyActive. The
// check-and-create is a single constrained INSERT (see repo.CreateTask), so
// two concurrent launches cannot both succeed.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// TaskExportPosts is the only registered task type: exporting a user's
// posts. Task types form a closed set; launches naming anything else are
// rejected before touching the store.
const TaskExportPosts = "export_posts"

// TaskRunner is the background execution substrate. Implementations pick up
// a freshly created task record and independently drive ReportProgress and
// Complete; the tracker never schedules, retries, or pools workers.
type TaskRunner interface {
	// Supports reports whether the runner knows the task type.
	Supports(name string) bool
	// Start hands off execution. It must not block the caller.
	Start(task *domain.Task)
}

// TaskService tracks one active background job per (user, task type).
type TaskService struct {
	DB            *gorm.DB
	Notifications *NotificationService
	Runner        TaskRunner
}

// NewTaskService constructs a TaskService. The Runner is attached after
// construction by the wiring layer (runner and service reference each other).
func NewTaskService(db *gorm.DB, nt *NotificationService) *TaskService {
	return &TaskService{DB: db, Notifications: nt}
}

// taskEvent is the payload shape published under the task's type name.
type taskEvent struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description,omitempty"`
	Current     int64  `json:"current"`
	Total       int64  `json:"total"`
	Complete    bool   `json:"complete,omitempty"`
}

// Launch creates the task record, publishes the initial notification
// (description, progress 0) in the same transaction, and hands execution to
// the runner. Fails with ErrTaskAlreadyActive when a non-complete task of
// the same type exists for the user, ErrUnknownTaskType for unregistered
// types, and ErrUserNotFound for unknown users; all failures leave zero
// side effects.
func (s *TaskService) Launch(ctx context.Context, userID uint, name, description string) (*domain.Task, error) {
	tr := otel.Tracer("services/TaskService")
	ctx, span := tr.Start(ctx, "Launch",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.String("task.name", name),
		),
	)
	defer span.End()

	if s.Runner == nil || !s.Runner.Supports(name) {
		return nil, ErrUnknownTaskType
	}
	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var task *domain.Task
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := repo.CreateTask(ctx, tx, userID, name, description)
		if err != nil {
			return err
		}
		task = t
		_, err = s.Notifications.PublishTx(ctx, tx, userID, name, taskEvent{
			TaskID:      t.ID,
			Description: description,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskAlreadyActive
		}
		return nil, err
	}

	s.Runner.Start(task)
	return task, nil
}

// InProgress returns the user's active task of the given type, or nil when
// none is running. Absence is a valid result, not an error.
func (s *TaskService) InProgress(ctx context.Context, userID uint, name string) (*domain.Task, error) {
	t, err := repo.GetActiveTask(ctx, s.DB, userID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ReportProgress publishes a progress notification under the task's type
// name. It never changes the completion state.
func (s *TaskService) ReportProgress(ctx context.Context, task *domain.Task, current, total int64) error {
	_, err := s.Notifications.Publish(ctx, task.UserID, task.Name, taskEvent{
		TaskID:  task.ID,
		Current: current,
		Total:   total,
	})
	return err
}

// Complete marks the task finished, stores the result payload, and
// publishes the final notification, atomically. Completing a missing or
// already-complete task fails with ErrTaskNotFound.
func (s *TaskService) Complete(ctx context.Context, task *domain.Task, result string) error {
	tr := otel.Tracer("services/TaskService")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CompleteTask(ctx, tx, task.ID, result); err != nil {
			return err
		}
		_, err := s.Notifications.PublishTx(ctx, tx, task.UserID, task.Name, taskEvent{
			TaskID:   task.ID,
			Complete: true,
		})
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return err
}
