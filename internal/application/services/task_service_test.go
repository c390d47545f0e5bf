package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahnwerk/core/internal/adapters/repository"
	"github.com/bahnwerk/core/internal/adapters/snapshotstore"
	"github.com/bahnwerk/core/internal/domain/entities"
	"github.com/bahnwerk/core/internal/infrastructure/logger"
	"github.com/bahnwerk/core/internal/ports"
)

func newTestService(t *testing.T) (*TaskService, *snapshotstore.MemoryStore) {
	t.Helper()

	snapshots := snapshotstore.NewMemoryStore()
	svc := NewTaskService(repository.NewMemoryTaskStore(), snapshots, logger.NewNop(), nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, snapshots
}

func TestCreateAndGetTask(t *testing.T) {
	svc, _ := newTestService(t)

	task := svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord", Description: "Strecke 6100"})
	require.NotEmpty(t, task.ID)
	assert.Equal(t, "Korridor Nord", task.Title)
	assert.NotNil(t, task.Projects)
	assert.NotNil(t, task.Notifications)

	_, err := time.Parse(entities.DateLayout, task.CreatedAt)
	assert.NoError(t, err)

	got, err := svc.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, *got)
}

func TestGetTask_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetTask("missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestListTasks_InsertionOrder(t *testing.T) {
	svc, _ := newTestService(t)

	first := svc.CreateTask(ports.CreateTaskRequest{Title: "Erste"})
	second := svc.CreateTask(ports.CreateTaskRequest{Title: "Zweite"})

	tasks := svc.ListTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
}

func TestProjectLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	task := svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})

	updated, err := svc.AddProject(task.ID, ports.ProjectRequest{
		RegID:     "104233",
		Status:    string(entities.ProjectStatusRegistered),
		Title:     "Weichenerneuerung",
		StartDate: "2024-03-01T08:00:00Z",
		EndDate:   "2024-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.Len(t, updated.Projects, 1)
	project := updated.Projects[0]
	assert.NotEmpty(t, project.ID)
	assert.False(t, project.Completed)
	assert.NotNil(t, project.Comments)
	assert.NotNil(t, project.Notifications)

	updated, err = svc.EditProject(task.ID, project.ID, ports.ProjectRequest{
		Title:  "Gleiserneuerung",
		Status: string(entities.ProjectStatusConfirmed),
	})
	require.NoError(t, err)
	edited := updated.FindProject(project.ID)
	require.NotNil(t, edited)
	assert.Equal(t, "Gleiserneuerung", edited.Title)
	assert.Equal(t, project.CreatedAt, edited.CreatedAt)

	updated, err = svc.MarkProjectCompleted(task.ID, project.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.FindProject(project.ID).Completed)

	updated, err = svc.DeleteProject(task.ID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Projects)
}

func TestProjectOps_NotFoundErrors(t *testing.T) {
	svc, _ := newTestService(t)
	task := svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})

	_, err := svc.AddProject("missing", ports.ProjectRequest{Title: "X"})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	_, err = svc.EditProject(task.ID, "missing", ports.ProjectRequest{Title: "X"})
	assert.ErrorIs(t, err, entities.ErrProjectNotFound)

	_, err = svc.MarkProjectCompleted("missing", "p1", true)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	_, err = svc.AddComment(task.ID, "missing", ports.CreateCommentRequest{Label: "X"})
	assert.ErrorIs(t, err, entities.ErrProjectNotFound)
}

func TestCommentAndNotificationFlow(t *testing.T) {
	svc, _ := newTestService(t)
	task := svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})
	withProject, err := svc.AddProject(task.ID, ports.ProjectRequest{Title: "Weichenerneuerung"})
	require.NoError(t, err)
	projectID := withProject.Projects[0].ID

	updated, err := svc.AddComment(task.ID, projectID, ports.CreateCommentRequest{Label: "Unterlagen angefordert"})
	require.NoError(t, err)
	comments := updated.FindProject(projectID).Comments
	require.Len(t, comments, 1)
	assert.NotEmpty(t, comments[0].ID)
	// A missing date is stamped with the current time.
	assert.NotEmpty(t, comments[0].Date)

	updated, err = svc.AddNotification(task.ID, projectID, ports.CreateNotificationRequest{
		Title: "Frist",
		Text:  "Stellungnahme fällig",
		Date:  "2024-02-01T08:00:00Z",
	})
	require.NoError(t, err)
	notifications := updated.FindProject(projectID).Notifications
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Completed)

	updated, err = svc.MarkNotificationCompleted(task.ID, projectID, notifications[0].ID, true)
	require.NoError(t, err)
	assert.True(t, updated.FindProject(projectID).Notifications[0].Completed)

	updated, err = svc.DeleteNotification(task.ID, projectID, notifications[0].ID)
	require.NoError(t, err)
	assert.Empty(t, updated.FindProject(projectID).Notifications)

	updated, err = svc.DeleteComment(task.ID, projectID, comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, updated.FindProject(projectID).Comments)
}

func TestCommitProjects_MergesIntoTask(t *testing.T) {
	svc, _ := newTestService(t)
	task := svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})
	_, err := svc.AddProject(task.ID, ports.ProjectRequest{Title: "Bestand"})
	require.NoError(t, err)

	candidates := []entities.Project{
		{ID: "imp-1", RegID: "104233", Title: "Weichenerneuerung"},
		{ID: "imp-2", RegID: "104234", Title: "Gleiserneuerung"},
	}
	merged, err := svc.CommitProjects(task.ID, candidates)
	require.NoError(t, err)
	require.Len(t, merged.Projects, 3)
	assert.Equal(t, "Bestand", merged.Projects[0].Title)
	assert.Equal(t, "imp-1", merged.Projects[1].ID)
	// Normalize runs on every candidate before it is stored.
	assert.NotNil(t, merged.Projects[1].Comments)
	assert.NotNil(t, merged.Projects[2].Notifications)

	_, err = svc.CommitProjects("missing", candidates)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestFlush_WritesSnapshot(t *testing.T) {
	svc, snapshots := newTestService(t)
	svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})

	require.NoError(t, svc.Flush(context.Background()))

	loaded, found, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.State.Tasks, 1)
	assert.Equal(t, "Korridor Nord", loaded.State.Tasks[0].Title)
}

func TestMutations_EventuallyPersisted(t *testing.T) {
	svc, snapshots := newTestService(t)
	svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})

	// The committer runs in the background; the write lands without an
	// explicit flush.
	require.Eventually(t, func() bool {
		return snapshots.Saves() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoad_RestoresAndMigrates(t *testing.T) {
	snapshots := snapshotstore.NewMemoryStore()
	snapshots.SetRaw([]byte(`{
		"version": 0,
		"state": {"tasks": [{
			"id": "t1",
			"title": "Korridor Nord",
			"appointments": [{"id": "a1", "title": "Begehung", "description": "Strecke 6100"}],
			"projects": [{"id": "p1", "regID": "104233"}]
		}]}
	}`))

	svc := NewTaskService(repository.NewMemoryTaskStore(), snapshots, logger.NewNop(), nil)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, svc.Load(context.Background()))

	task, err := svc.GetTask("t1")
	require.NoError(t, err)
	require.Len(t, task.Notifications, 1)
	assert.Equal(t, "Strecke 6100", task.Notifications[0].Text)
	assert.Equal(t, []entities.Comment{}, task.Projects[0].Comments)
}

func TestLoad_MissingSnapshotStartsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Load(context.Background()))
	assert.Empty(t, svc.ListTasks())
}

func TestClose_FlushesFinalState(t *testing.T) {
	snapshots := snapshotstore.NewMemoryStore()
	svc := NewTaskService(repository.NewMemoryTaskStore(), snapshots, logger.NewNop(), nil)

	svc.CreateTask(ports.CreateTaskRequest{Title: "Korridor Nord"})
	require.NoError(t, svc.Close())

	loaded, found, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, loaded.State.Tasks, 1)
}
