package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/domain/snapshot"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
	"github.com/bahnwerk/core/internal/ports"
)

// TaskService owns the task tree. Mutations go through the copy-on-write
// store and are committed to the snapshot store afterwards; the commit is
// fire-and-forget, a mutation call returns before the write is durable.
type TaskService struct {
	store     ports.TaskStore
	snapshots ports.SnapshotStore
	logger    *logger.Logger
	metrics   *Metrics

	commitCh  chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewTaskService creates a task service and starts its snapshot committer.
func NewTaskService(store ports.TaskStore, snapshots ports.SnapshotStore, log *logger.Logger, metrics *Metrics) *TaskService {
	s := &TaskService{
		store:     store,
		snapshots: snapshots,
		logger:    log,
		metrics:   metrics,
		commitCh:  make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
	}
	go s.commitLoop()
	return s
}

// Load replaces the store content with the persisted snapshot, migrating
// older shapes forward. A missing snapshot leaves the store empty.
func (s *TaskService) Load(ctx context.Context) error {
	snap, found, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Infow("No persisted snapshot, starting empty")
		return nil
	}
	s.store.ReplaceAll(snap.State.Tasks)
	s.logger.Infow("Snapshot loaded", "tasks", len(snap.State.Tasks))
	return nil
}

// CreateTask creates a task from the request and appends it to the sequence.
func (s *TaskService) CreateTask(req ports.CreateTaskRequest) entities.Task {
	task := entities.Task{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		CreatedAt:     nowUTC(),
		Projects:      []entities.Project{},
		Notifications: []entities.Notification{},
	}
	s.store.AddTask(task)
	s.recordMutation("add_task", task.ID)
	s.commit()
	return task
}

// GetTask retrieves a task by id.
func (s *TaskService) GetTask(id string) (*entities.Task, error) {
	task := s.store.GetTask(id)
	if task == nil {
		return nil, entities.ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns the full task sequence in insertion order.
func (s *TaskService) ListTasks() []entities.Task {
	return s.store.GetAllTasks()
}

// DeleteTask removes a task; its projects and reminders go with it. Deleting
// an unknown id is a no-op.
func (s *TaskService) DeleteTask(id string) {
	s.store.DeleteTask(id)
	s.recordMutation("delete_task", id)
	s.commit()
}

// AddProject creates a project from the request and appends it to the task.
func (s *TaskService) AddProject(taskID string, req ports.ProjectRequest) (*entities.Task, error) {
	project := entities.Project{
		ID:            uuid.NewString(),
		RegID:         req.RegID,
		Status:        entities.ProjectStatus(req.Status),
		Category:      req.Category,
		Title:         req.Title,
		StartVzg:      req.StartVzg,
		EndVzg:        req.EndVzg,
		StartBst:      req.StartBst,
		EndBst:        req.EndBst,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Completed:     false,
		Notifications: []entities.Notification{},
		Comments:      []entities.Comment{},
		CreatedAt:     nowUTC(),
	}

	task := s.store.AddProject(taskID, project)
	if task == nil {
		return nil, entities.ErrTaskNotFound
	}
	s.recordMutation("add_project", taskID)
	s.commit()
	return task, nil
}

// EditProject replaces the editable fields of the project; identity,
// completion state, creation time and the comment/notification logs stay.
func (s *TaskService) EditProject(taskID, projectID string, req ports.ProjectRequest) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}

	edit := entities.Project{
		RegID:     req.RegID,
		Status:    entities.ProjectStatus(req.Status),
		Category:  req.Category,
		Title:     req.Title,
		StartVzg:  req.StartVzg,
		EndVzg:    req.EndVzg,
		StartBst:  req.StartBst,
		EndBst:    req.EndBst,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	task := s.store.EditProject(taskID, entities.Project{ID: projectID}, edit)
	s.recordMutation("edit_project", taskID)
	s.commit()
	return task, nil
}

// DeleteProject removes a project from the task.
func (s *TaskService) DeleteProject(taskID, projectID string) (*entities.Task, error) {
	task := s.store.DeleteProject(taskID, projectID)
	if task == nil {
		return nil, entities.ErrTaskNotFound
	}
	s.recordMutation("delete_project", taskID)
	s.commit()
	return task, nil
}

// MarkProjectCompleted sets the project's completed flag. Idempotent.
func (s *TaskService) MarkProjectCompleted(taskID, projectID string, value bool) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}
	task := s.store.MarkProjectCompleted(taskID, projectID, value)
	s.recordMutation("mark_project_completed", taskID)
	s.commit()
	return task, nil
}

// AddComment appends a comment to the project's log.
func (s *TaskService) AddComment(taskID, projectID string, req ports.CreateCommentRequest) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}

	comment := entities.Comment{
		ID:    uuid.NewString(),
		Label: req.Label,
		Date:  req.Date,
	}
	if comment.Date == "" {
		comment.Date = nowUTC()
	}
	task := s.store.AddComment(taskID, projectID, comment)
	s.recordMutation("add_comment", taskID)
	s.commit()
	return task, nil
}

// DeleteComment removes a comment from the project's log.
func (s *TaskService) DeleteComment(taskID, projectID, commentID string) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}
	task := s.store.DeleteComment(taskID, projectID, commentID)
	s.recordMutation("delete_comment", taskID)
	s.commit()
	return task, nil
}

// AddNotification attaches a reminder to the project.
func (s *TaskService) AddNotification(taskID, projectID string, req ports.CreateNotificationRequest) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}

	notification := entities.Notification{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Text:      req.Text,
		Date:      req.Date,
		Completed: false,
	}
	task := s.store.AddNotification(taskID, projectID, notification)
	s.recordMutation("add_notification", taskID)
	s.commit()
	return task, nil
}

// DeleteNotification removes a reminder from the project.
func (s *TaskService) DeleteNotification(taskID, projectID, notificationID string) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}
	task := s.store.DeleteNotification(taskID, projectID, notificationID)
	s.recordMutation("delete_notification", taskID)
	s.commit()
	return task, nil
}

// MarkNotificationCompleted sets the reminder's completed flag. Nothing
// cascades to the owning project.
func (s *TaskService) MarkNotificationCompleted(taskID, projectID, notificationID string, value bool) (*entities.Task, error) {
	if err := s.requireProject(taskID, projectID); err != nil {
		return nil, err
	}
	task := s.store.MarkNotificationCompleted(taskID, projectID, notificationID, value)
	s.recordMutation("mark_notification_completed", taskID)
	s.commit()
	return task, nil
}

// CommitProjects appends already-built projects (import candidates) to the
// task one by one, then re-reads the task so the caller sees the merged
// result rather than its local candidate list.
func (s *TaskService) CommitProjects(taskID string, projects []entities.Project) (*entities.Task, error) {
	if s.store.GetTask(taskID) == nil {
		return nil, entities.ErrTaskNotFound
	}
	for _, p := range projects {
		p.Normalize()
		s.store.AddProject(taskID, p)
		s.recordMutation("add_project", taskID)
	}
	s.commit()
	return s.store.GetTask(taskID), nil
}

// Flush synchronously writes the current state to the snapshot store.
func (s *TaskService) Flush(ctx context.Context) error {
	return s.persist(ctx)
}

// Close stops the committer, flushes a final snapshot and closes the
// snapshot store.
func (s *TaskService) Close() error {
	s.closeOnce.Do(func() {
		close(s.commitCh)
	})
	<-s.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.persist(ctx); err != nil {
		s.logger.Errorw("Final snapshot save failed", "error", err)
	}
	return s.snapshots.Close()
}

func (s *TaskService) requireProject(taskID, projectID string) error {
	task := s.store.GetTask(taskID)
	if task == nil {
		return entities.ErrTaskNotFound
	}
	if task.FindProject(projectID) == nil {
		return entities.ErrProjectNotFound
	}
	return nil
}

func (s *TaskService) recordMutation(op, taskID string) {
	if s.metrics != nil {
		s.metrics.Mutations.WithLabelValues(op).Inc()
	}
	s.logger.LogStoreMutation(op, taskID, nil)
}

// commit signals the committer. The channel is buffered with one slot, so
// bursts of mutations coalesce into a single save of the latest state.
func (s *TaskService) commit() {
	select {
	case s.commitCh <- struct{}{}:
	default:
	}
}

func (s *TaskService) commitLoop() {
	for range s.commitCh {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.persist(ctx); err != nil {
			s.logger.Errorw("Snapshot save failed", "error", err)
		}
		cancel()
	}
	close(s.doneCh)
}

func (s *TaskService) persist(ctx context.Context) error {
	snap := snapshot.New(s.store.GetAllTasks())
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.Snapshots.Inc()
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(entities.DateLayout)
}
