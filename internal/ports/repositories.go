package ports

import (
	"context"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/domain/snapshot"
)

// TaskStore is the single source of truth for all tasks. Every mutation is
// copy-on-write: values handed out earlier never change under the holder.
//
// No operation returns an error. Lookups yield nil for unknown ids; mutations
// against an unknown task id are silent no-ops that also yield nil. Mutations
// addressing an unknown project/comment/notification inside an existing task
// leave the task unchanged and return it as-is.
type TaskStore interface {
	AddTask(task entities.Task)
	GetTask(id string) *entities.Task
	GetAllTasks() []entities.Task
	DeleteTask(id string)

	AddProject(taskID string, project entities.Project) *entities.Task
	EditProject(taskID string, oldProject, newProject entities.Project) *entities.Task
	DeleteProject(taskID, projectID string) *entities.Task
	MarkProjectCompleted(taskID, projectID string, value bool) *entities.Task

	AddComment(taskID, projectID string, comment entities.Comment) *entities.Task
	DeleteComment(taskID, projectID, commentID string) *entities.Task

	AddNotification(taskID, projectID string, notification entities.Notification) *entities.Task
	DeleteNotification(taskID, projectID, notificationID string) *entities.Task
	MarkNotificationCompleted(taskID, projectID, notificationID string, value bool) *entities.Task

	// ReplaceAll swaps in a freshly loaded task sequence. Load path only.
	ReplaceAll(tasks []entities.Task)
}

// SnapshotStore persists the serialized task sequence as one versioned blob.
// Last full write wins; there is no merge or conflict detection.
type SnapshotStore interface {
	// Load returns the persisted snapshot, or found=false when nothing has
	// been persisted yet.
	Load(ctx context.Context) (snap snapshot.Snapshot, found bool, err error)
	Save(ctx context.Context, snap snapshot.Snapshot) error
	Close() error
}

// StationDirectory is the read-only Betriebsstellen lookup table.
type StationDirectory interface {
	All() []entities.StationRecord
	FindByShortName(kurz string) (entities.StationRecord, bool)
	FindByCode(code string) (entities.StationRecord, bool)
}
