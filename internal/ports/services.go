package ports

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ProjectRequest is the payload for creating or editing a project. Dates are
// ISO-8601 UTC strings; empty means unknown. Station codes may be empty but,
// when set, should name a record of the reference table.
type ProjectRequest struct {
	RegID     string `json:"regID"`
	Status    string `json:"status"`
	Category  string `json:"category"`
	Title     string `json:"title" validate:"required"`
	StartVzg  string `json:"startVzg"`
	EndVzg    string `json:"endVzg"`
	StartBst  string `json:"startBst"`
	EndBst    string `json:"endBst"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z"`
}

// CreateCommentRequest is the payload for appending a comment to a project.
type CreateCommentRequest struct {
	Label string `json:"label" validate:"required"`
	Date  string `json:"date"`
}

// CreateNotificationRequest is the payload for attaching a reminder to a
// project.
type CreateNotificationRequest struct {
	Title string `json:"title" validate:"required"`
	Text  string `json:"text"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02T15:04:05Z"`
}

// SetCompletedRequest toggles a completion flag.
type SetCompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}
