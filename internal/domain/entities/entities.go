package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrStationNotFound      = errors.New("station not found")
)

// ProjectStatus mirrors the status values delivered by the registration
// system's export. The set is open: unknown values are carried through
// verbatim, IsKnown only reports whether we recognize one.
type ProjectStatus string

const (
	ProjectStatusRegistered ProjectStatus = "Angemeldet"
	ProjectStatusConfirmed  ProjectStatus = "Bestätigt"
	ProjectStatusInReview   ProjectStatus = "In Prüfung"
	ProjectStatusRejected   ProjectStatus = "Abgelehnt"
)

func (ps ProjectStatus) IsKnown() bool {
	switch ps {
	case ProjectStatusRegistered, ProjectStatusConfirmed, ProjectStatusInReview, ProjectStatusRejected:
		return true
	default:
		return false
	}
}

// DateLayout is the fixed machine-readable form for project start/end dates.
// The empty string is the sentinel for an unparsed or unknown date.
const DateLayout = "2006-01-02T15:04:05Z"

// Comment is a free-text, timestamped annotation on a project. Comments are
// append-only: they are added and deleted, never edited in place.
type Comment struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

// Notification is a scheduled reminder attached to a project. Only its
// Completed flag is mutable.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Project is an individual infrastructure-change request with a geographic
// extent (VzG route numbers, Betriebsstellen codes) and a temporal extent.
type Project struct {
	ID            string         `json:"id"`
	RegID         string         `json:"regID"`
	Status        ProjectStatus  `json:"status"`
	Category      string         `json:"category"`
	Title         string         `json:"title"`
	StartVzg      string         `json:"startVzg"`
	EndVzg        string         `json:"endVzg"`
	StartBst      string         `json:"startBst"`
	EndBst        string         `json:"endBst"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	Completed     bool           `json:"completed"`
	Notifications []Notification `json:"notifications"`
	Comments      []Comment      `json:"comments"`
	CreatedAt     string         `json:"createdAt"`
}

// Task is the root aggregate: a unit of work owning projects and reminders.
// Projects are nested, not referenced; deleting a task deletes them with it.
type Task struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CreatedAt     string         `json:"createdAt"`
	Projects      []Project      `json:"projects"`
	Notifications []Notification `json:"notifications"`
}

// StationRecord is one row of the read-only Betriebsstellen reference table.
// Multiple records may share an RL100Kurz across validity windows.
type StationRecord struct {
	RL100Code string `json:"RL100Code"`
	RL100Kurz string `json:"RL100Kurz"`
	RL100Lang string `json:"RL100Lang"`
	DatumAb   string `json:"DatumAb"`
}

// Clone returns a deep copy of the project, including its comment and
// notification lists.
func (p Project) Clone() Project {
	out := p
	if p.Notifications != nil {
		out.Notifications = make([]Notification, len(p.Notifications))
		copy(out.Notifications, p.Notifications)
	}
	if p.Comments != nil {
		out.Comments = make([]Comment, len(p.Comments))
		copy(out.Comments, p.Comments)
	}
	return out
}

// Clone returns a deep copy of the task and everything nested inside it.
func (t Task) Clone() Task {
	out := t
	if t.Projects != nil {
		out.Projects = make([]Project, len(t.Projects))
		for i, p := range t.Projects {
			out.Projects[i] = p.Clone()
		}
	}
	if t.Notifications != nil {
		out.Notifications = make([]Notification, len(t.Notifications))
		copy(out.Notifications, t.Notifications)
	}
	return out
}

// Normalize fills nil collections with empty ones so a task always serializes
// with explicit lists.
func (t *Task) Normalize() {
	if t.Projects == nil {
		t.Projects = []Project{}
	}
	if t.Notifications == nil {
		t.Notifications = []Notification{}
	}
	for i := range t.Projects {
		t.Projects[i].Normalize()
	}
}

// Normalize fills nil collections with empty ones.
func (p *Project) Normalize() {
	if p.Notifications == nil {
		p.Notifications = []Notification{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// ApplyEdit copies the editable fields of src onto p. Identity, completion
// state, creation time and the comment/notification logs are never touched by
// an edit.
func (p *Project) ApplyEdit(src Project) {
	p.RegID = src.RegID
	p.Status = src.Status
	p.Category = src.Category
	p.Title = src.Title
	p.StartVzg = src.StartVzg
	p.EndVzg = src.EndVzg
	p.StartBst = src.StartBst
	p.EndBst = src.EndBst
	p.StartDate = src.StartDate
	p.EndDate = src.EndDate
}

// HasTimespan reports whether both dates were resolved during import.
func (p *Project) HasTimespan() bool {
	return p.StartDate != "" && p.EndDate != ""
}

// StartsBefore compares two projects by parsed start date; projects without a
// parsed start sort last.
func (p *Project) StartsBefore(other *Project) bool {
	pt, perr := time.Parse(DateLayout, p.StartDate)
	ot, oerr := time.Parse(DateLayout, other.StartDate)
	if perr != nil {
		return false
	}
	if oerr != nil {
		return true
	}
	return pt.Before(ot)
}

// FindProject returns the project with the given id, or nil.
func (t *Task) FindProject(projectID string) *Project {
	for i := range t.Projects {
		if t.Projects[i].ID == projectID {
			return &t.Projects[i]
		}
	}
	return nil
}

// OpenNotifications returns the reminders of the task's projects that are not
// completed yet.
func (t *Task) OpenNotifications() []Notification {
	var open []Notification
	for _, p := range t.Projects {
		for _, n := range p.Notifications {
			if !n.Completed {
				open = append(open, n)
			}
		}
	}
	return open
}
