// Package export implements the background execution substrate for the task
// tracker. The Runner holds the closed registry of task types and drives
// each launched task in its own goroutine, reporting progress and
// completion back through the TaskService. It owns no task state itself.
package export

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
	"github.com/tbourn/go-microblog-backend/internal/services"
)

// handler executes one task to completion. It must end by calling
// Tasks.Complete (or leave the task running on unrecoverable error, which
// operators can see in the log).
type handler func(ctx context.Context, task *domain.Task) error

// Runner dispatches launched tasks to their registered handler goroutines.
//
// Safe for concurrent use. Wait() blocks until every in-flight task
// finished, which the server calls during graceful shutdown; there is no
// cancellation primitive for a running task.
type Runner struct {
	DB    *gorm.DB
	Tasks *services.TaskService

	// Batch is the ledger read batch size for the export walk.
	Batch int

	handlers map[string]handler
	wg       sync.WaitGroup
}

// NewRunner constructs a Runner with the export_posts handler registered.
func NewRunner(db *gorm.DB, tasks *services.TaskService) *Runner {
	r := &Runner{DB: db, Tasks: tasks, Batch: 100}
	r.handlers = map[string]handler{
		services.TaskExportPosts: r.exportPosts,
	}
	return r
}

// Supports reports whether the task type is registered.
func (r *Runner) Supports(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Start runs the task's handler in a new goroutine and returns immediately.
func (r *Runner) Start(task *domain.Task) {
	h, ok := r.handlers[task.Name]
	if !ok {
		// Launch already validated the type; this only trips if the
		// registry changed between validation and start.
		log.Error().Str("task_id", task.ID).Str("name", task.Name).Msg("no handler for task")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		if err := h(context.Background(), task); err != nil {
			log.Error().Err(err).Str("task_id", task.ID).Str("name", task.Name).Msg("task failed")
			return
		}
		log.Info().Str("task_id", task.ID).Str("name", task.Name).
			Dur("took", time.Since(start)).Msg("task finished")
	}()
}

// Wait blocks until all in-flight tasks have finished.
func (r *Runner) Wait() { r.wg.Wait() }

// exportedPost is one entry of the export_posts result payload.
type exportedPost struct {
	Body      string    `json:"body"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// exportPosts walks the owner's ledger oldest-first, reporting progress
// after every post, and completes the task with the full export as its
// result payload.
func (r *Runner) exportPosts(ctx context.Context, task *domain.Task) error {
	total, err := repo.CountPostsByAuthor(ctx, r.DB, task.UserID)
	if err != nil {
		return err
	}

	out := make([]exportedPost, 0, total)
	var done int64
	err = repo.ForEachPostByAuthor(ctx, r.DB, task.UserID, r.Batch, func(p *domain.Post) error {
		out = append(out, exportedPost{
			Body:      p.Body,
			Language:  p.Language,
			Timestamp: p.CreatedAt,
		})
		done++
		return r.Tasks.ReportProgress(ctx, task, done, total)
	})
	if err != nil {
		return err
	}

	result, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return r.Tasks.Complete(ctx, task, string(result))
}
