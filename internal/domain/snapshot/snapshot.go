// Package snapshot defines the persisted wire shape of the task store: one
// JSON record holding the full task sequence plus a schema version tag, the
// same envelope the browser-based predecessor tool wrote to local storage.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/bahnwerk/core/internal/domain/entities"
)

// CurrentVersion is the schema version this build reads and writes. Records
// with an older (or missing) version are migrated forward on load.
const CurrentVersion = 1

// State is the payload of a snapshot.
type State struct {
	Tasks []entities.Task `json:"tasks"`
}

// Snapshot is the versioned envelope around the task sequence.
type Snapshot struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// New builds a current-version snapshot around the given task sequence.
func New(tasks []entities.Task) Snapshot {
	if tasks == nil {
		tasks = []entities.Task{}
	}
	return Snapshot{State: State{Tasks: tasks}, Version: CurrentVersion}
}

// Encode serializes the snapshot.
func Encode(s Snapshot) ([]byte, error) {
	for i := range s.State.Tasks {
		s.State.Tasks[i].Normalize()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode deserializes a persisted record, migrating older shapes forward
// first. Migration runs at most once per load and never fails on missing
// optional fields; those are filled with empty defaults.
func Decode(data []byte) (Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	if versionOf(raw) < CurrentVersion {
		raw = Migrate(raw)
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap.Version = CurrentVersion
	if snap.State.Tasks == nil {
		snap.State.Tasks = []entities.Task{}
	}
	for i := range snap.State.Tasks {
		snap.State.Tasks[i].Normalize()
	}
	return snap, nil
}

// Migrate rewrites a loosely-typed pre-version-1 record into the current
// shape. It is pure (the input map is not mutated) and idempotent: applying
// it to already-migrated data changes nothing but the version tag.
//
// Version 0 records may lack the comments list on projects and may carry
// reminders under the legacy "appointments" key (on tasks and on projects).
func Migrate(raw map[string]any) map[string]any {
	out := deepCopy(raw)

	state, ok := out["state"].(map[string]any)
	if !ok {
		state = map[string]any{}
		out["state"] = state
	}
	tasks, ok := state["tasks"].([]any)
	if !ok {
		tasks = []any{}
		state["tasks"] = tasks
	}

	for _, t := range tasks {
		task, ok := t.(map[string]any)
		if !ok {
			continue
		}
		migrateReminders(task)
		projects, ok := task["projects"].([]any)
		if !ok {
			task["projects"] = []any{}
			continue
		}
		for _, p := range projects {
			project, ok := p.(map[string]any)
			if !ok {
				continue
			}
			migrateReminders(project)
			if _, ok := project["comments"].([]any); !ok {
				project["comments"] = []any{}
			}
		}
	}

	out["version"] = CurrentVersion
	return out
}

// migrateReminders lifts a legacy "appointments" list into "notifications"
// and guarantees the notifications list exists.
func migrateReminders(owner map[string]any) {
	notifications, _ := owner["notifications"].([]any)
	if legacy, ok := owner["appointments"].([]any); ok {
		for _, a := range legacy {
			appt, ok := a.(map[string]any)
			if !ok {
				continue
			}
			n := map[string]any{
				"id":        appt["id"],
				"title":     appt["title"],
				"text":      appt["description"],
				"date":      appt["date"],
				"completed": false,
			}
			notifications = append(notifications, n)
		}
		delete(owner, "appointments")
	}
	if notifications == nil {
		notifications = []any{}
	}
	owner["notifications"] = notifications
}

func versionOf(raw map[string]any) int {
	if v, ok := raw["version"].(float64); ok {
		return int(v)
	}
	return 0
}

func deepCopy(raw map[string]any) map[string]any {
	buf, err := json.Marshal(raw)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(buf, &out); err != nil {
		return map[string]any{}
	}
	return out
}
