package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahnwerk/core/internal/domain/entities"
)

func seededStore(t *testing.T) (*MemoryTaskStore, entities.Task) {
	t.Helper()

	task := entities.Task{
		ID:        "t1",
		Title:     "Korridor Nord",
		CreatedAt: "2024-01-15T09:00:00Z",
		Projects: []entities.Project{
			{
				ID:        "p1",
				RegID:     "104233",
				Status:    entities.ProjectStatusRegistered,
				Title:     "Weichenerneuerung",
				StartBst:  "BL",
				EndBst:    "AH",
				StartDate: "2024-03-01T08:00:00Z",
				EndDate:   "2024-03-01T10:00:00Z",
				Comments: []entities.Comment{
					{ID: "c1", Label: "Unterlagen angefordert", Date: "2024-01-16T10:00:00Z"},
				},
				Notifications: []entities.Notification{
					{ID: "n1", Title: "Frist", Text: "Stellungnahme fällig", Date: "2024-02-01T08:00:00Z"},
				},
			},
		},
		Notifications: []entities.Notification{},
	}

	store := NewMemoryTaskStore().(*MemoryTaskStore)
	store.AddTask(task)
	return store, task
}

func TestAddAndGetTask(t *testing.T) {
	store, task := seededStore(t)

	got := store.GetTask("t1")
	require.NotNil(t, got)
	assert.Equal(t, task, *got)

	assert.Nil(t, store.GetTask("missing"))
}

func TestGetTask_ReturnsDetachedCopy(t *testing.T) {
	store, _ := seededStore(t)

	got := store.GetTask("t1")
	got.Projects[0].Comments[0].Label = "mutiert"

	again := store.GetTask("t1")
	assert.Equal(t, "Unterlagen angefordert", again.Projects[0].Comments[0].Label)
}

func TestAddTask_DetachesCallerValue(t *testing.T) {
	store := NewMemoryTaskStore()
	task := entities.Task{ID: "t1", Projects: []entities.Project{{ID: "p1"}}}
	store.AddTask(task)

	task.Projects[0].Title = "mutiert"
	assert.Empty(t, store.GetTask("t1").Projects[0].Title)
}

func TestDeleteTask(t *testing.T) {
	store, _ := seededStore(t)

	store.DeleteTask("t1")
	assert.Nil(t, store.GetTask("t1"))
	assert.Empty(t, store.GetAllTasks())

	// Deleting an unknown id leaves the store untouched.
	store.AddTask(entities.Task{ID: "t2"})
	store.DeleteTask("missing")
	assert.Len(t, store.GetAllTasks(), 1)
}

func TestGetAllTasks_PreservesOrder(t *testing.T) {
	store := NewMemoryTaskStore()
	store.AddTask(entities.Task{ID: "t1"})
	store.AddTask(entities.Task{ID: "t2"})
	store.AddTask(entities.Task{ID: "t3"})

	all := store.GetAllTasks()
	require.Len(t, all, 3)
	assert.Equal(t, "t1", all[0].ID)
	assert.Equal(t, "t3", all[2].ID)
}

func TestAddProject(t *testing.T) {
	store, _ := seededStore(t)

	updated := store.AddProject("t1", entities.Project{ID: "p2", Title: "Gleiserneuerung"})
	require.NotNil(t, updated)
	require.Len(t, updated.Projects, 2)
	assert.Equal(t, "p2", updated.Projects[1].ID)

	// Unknown task id is a silent no-op.
	assert.Nil(t, store.AddProject("missing", entities.Project{ID: "p3"}))
	assert.Len(t, store.GetTask("t1").Projects, 2)
}

func TestEditProject_PreservesOwnedState(t *testing.T) {
	store, _ := seededStore(t)

	updated := store.EditProject("t1",
		entities.Project{ID: "p1"},
		entities.Project{
			ID:        "overwritten",
			Title:     "Neuer Titel",
			Status:    entities.ProjectStatusConfirmed,
			Completed: true,
		},
	)
	require.NotNil(t, updated)

	p := updated.FindProject("p1")
	require.NotNil(t, p)
	assert.Equal(t, "Neuer Titel", p.Title)
	assert.Equal(t, entities.ProjectStatusConfirmed, p.Status)
	// Completion state and owned collections never travel through an edit.
	assert.False(t, p.Completed)
	require.Len(t, p.Comments, 1)
	require.Len(t, p.Notifications, 1)
}

func TestEditProject_UnknownProjectReturnsTaskUnchanged(t *testing.T) {
	store, task := seededStore(t)

	updated := store.EditProject("t1",
		entities.Project{ID: "missing"},
		entities.Project{Title: "Neuer Titel"},
	)
	require.NotNil(t, updated)
	assert.Equal(t, task, *updated)
}

func TestDeleteProject(t *testing.T) {
	store, _ := seededStore(t)

	updated := store.DeleteProject("t1", "p1")
	require.NotNil(t, updated)
	assert.Empty(t, updated.Projects)

	assert.Nil(t, store.DeleteProject("missing", "p1"))
}

func TestMarkProjectCompleted_Idempotent(t *testing.T) {
	store, _ := seededStore(t)

	first := store.MarkProjectCompleted("t1", "p1", true)
	second := store.MarkProjectCompleted("t1", "p1", true)
	require.NotNil(t, second)
	assert.True(t, second.FindProject("p1").Completed)
	assert.Equal(t, first, second)

	cleared := store.MarkProjectCompleted("t1", "p1", false)
	assert.False(t, cleared.FindProject("p1").Completed)
}

func TestCommentRoundTrip(t *testing.T) {
	store, _ := seededStore(t)

	added := store.AddComment("t1", "p1", entities.Comment{
		ID:    "c2",
		Label: "Rückmeldung erhalten",
		Date:  "2024-01-20T08:00:00Z",
	})
	require.NotNil(t, added)
	require.Len(t, added.FindProject("p1").Comments, 2)

	removed := store.DeleteComment("t1", "p1", "c2")
	require.NotNil(t, removed)
	comments := removed.FindProject("p1").Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].ID)
}

func TestNotificationLifecycle(t *testing.T) {
	store, _ := seededStore(t)

	added := store.AddNotification("t1", "p1", entities.Notification{
		ID:    "n2",
		Title: "Begehung",
		Date:  "2024-02-10T08:00:00Z",
	})
	require.Len(t, added.FindProject("p1").Notifications, 2)

	marked := store.MarkNotificationCompleted("t1", "p1", "n2", true)
	notifications := marked.FindProject("p1").Notifications
	assert.False(t, notifications[0].Completed)
	assert.True(t, notifications[1].Completed)

	removed := store.DeleteNotification("t1", "p1", "n2")
	require.Len(t, removed.FindProject("p1").Notifications, 1)
}

func TestProjectScopedOps_UnknownProjectIsNoOp(t *testing.T) {
	store, task := seededStore(t)

	updated := store.AddComment("t1", "missing", entities.Comment{ID: "cx"})
	require.NotNil(t, updated)
	assert.Equal(t, task, *updated)

	updated = store.MarkNotificationCompleted("t1", "missing", "n1", true)
	require.NotNil(t, updated)
	assert.Equal(t, task, *updated)
}

func TestCopyOnWrite_SnapshotsStayStable(t *testing.T) {
	store, _ := seededStore(t)

	before := store.GetAllTasks()
	store.AddComment("t1", "p1", entities.Comment{ID: "c2", Label: "Neu"})
	store.MarkProjectCompleted("t1", "p1", true)

	// The pre-mutation snapshot still shows the old state.
	require.Len(t, before, 1)
	assert.Len(t, before[0].Projects[0].Comments, 1)
	assert.False(t, before[0].Projects[0].Completed)

	after := store.GetAllTasks()
	assert.Len(t, after[0].Projects[0].Comments, 2)
	assert.True(t, after[0].Projects[0].Completed)
}

func TestReplaceAll(t *testing.T) {
	store, _ := seededStore(t)

	incoming := []entities.Task{{ID: "t9", Title: "Neubestand"}}
	store.ReplaceAll(incoming)

	incoming[0].Title = "mutiert"

	all := store.GetAllTasks()
	require.Len(t, all, 1)
	assert.Equal(t, "t9", all[0].ID)
	assert.Equal(t, "Neubestand", all[0].Title)
	assert.Nil(t, store.GetTask("t1"))
}
