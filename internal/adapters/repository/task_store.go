package repository

import (
	"sync"

	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/ports"
)

// MemoryTaskStore implements ports.TaskStore as an ordered in-memory task
// sequence with copy-on-write mutation. Every mutation clones the affected
// task and rebuilds the sequence, so slices and tasks handed out before the
// mutation keep their old content.
//
// The mutex makes each operation atomic under concurrent HTTP traffic; there
// is no finer-grained locking because operations are short and synchronous.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks []entities.Task
}

// NewMemoryTaskStore creates an empty task store.
func NewMemoryTaskStore() ports.TaskStore {
	return &MemoryTaskStore{tasks: []entities.Task{}}
}

func (s *MemoryTaskStore) AddTask(task entities.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Appends unconditionally; callers own id uniqueness.
	next := make([]entities.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, task.Clone())
}

func (s *MemoryTaskStore) GetTask(id string) *entities.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			t := s.tasks[i].Clone()
			return &t
		}
	}
	return nil
}

func (s *MemoryTaskStore) GetAllTasks() []entities.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

func (s *MemoryTaskStore) DeleteTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]entities.Task, 0, len(s.tasks))
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			next = append(next, s.tasks[i])
		}
	}
	s.tasks = next
}

func (s *MemoryTaskStore) AddProject(taskID string, project entities.Project) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		t.Projects = append(t.Projects, project.Clone())
	})
}

func (s *MemoryTaskStore) EditProject(taskID string, oldProject, newProject entities.Project) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		if p := t.FindProject(oldProject.ID); p != nil {
			p.ApplyEdit(newProject)
		}
	})
}

func (s *MemoryTaskStore) DeleteProject(taskID, projectID string) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		next := make([]entities.Project, 0, len(t.Projects))
		for _, p := range t.Projects {
			if p.ID != projectID {
				next = append(next, p)
			}
		}
		t.Projects = next
	})
}

func (s *MemoryTaskStore) MarkProjectCompleted(taskID, projectID string, value bool) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		if p := t.FindProject(projectID); p != nil {
			p.Completed = value
		}
	})
}

func (s *MemoryTaskStore) AddComment(taskID, projectID string, comment entities.Comment) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		if p := t.FindProject(projectID); p != nil {
			p.Comments = append(p.Comments, comment)
		}
	})
}

func (s *MemoryTaskStore) DeleteComment(taskID, projectID, commentID string) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		p := t.FindProject(projectID)
		if p == nil {
			return
		}
		next := make([]entities.Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			if c.ID != commentID {
				next = append(next, c)
			}
		}
		p.Comments = next
	})
}

func (s *MemoryTaskStore) AddNotification(taskID, projectID string, notification entities.Notification) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		if p := t.FindProject(projectID); p != nil {
			p.Notifications = append(p.Notifications, notification)
		}
	})
}

func (s *MemoryTaskStore) DeleteNotification(taskID, projectID, notificationID string) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		p := t.FindProject(projectID)
		if p == nil {
			return
		}
		next := make([]entities.Notification, 0, len(p.Notifications))
		for _, n := range p.Notifications {
			if n.ID != notificationID {
				next = append(next, n)
			}
		}
		p.Notifications = next
	})
}

func (s *MemoryTaskStore) MarkNotificationCompleted(taskID, projectID, notificationID string, value bool) *entities.Task {
	return s.updateTask(taskID, func(t *entities.Task) {
		p := t.FindProject(projectID)
		if p == nil {
			return
		}
		for i := range p.Notifications {
			if p.Notifications[i].ID == notificationID {
				p.Notifications[i].Completed = value
			}
		}
	})
}

func (s *MemoryTaskStore) ReplaceAll(tasks []entities.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]entities.Task, len(tasks))
	for i := range tasks {
		next[i] = tasks[i].Clone()
	}
	s.tasks = next
}

// updateTask clones the task with the given id, applies fn to the clone and
// swaps it into a rebuilt sequence. Returns a copy of the post-mutation task,
// or nil when no task matched (the store is then unchanged).
func (s *MemoryTaskStore) updateTask(taskID string, fn func(*entities.Task)) *entities.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != taskID {
			continue
		}
		updated := s.tasks[i].Clone()
		fn(&updated)

		next := make([]entities.Task, len(s.tasks))
		copy(next, s.tasks)
		next[i] = updated
		s.tasks = next

		out := updated.Clone()
		return &out
	}
	return nil
}
