package http

import (
	"github.com/bahnwerk/core/internal/domain/entities"
)

// MessageResponse is a simple message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ImportCommitRequest carries the candidates the user selected for import.
type ImportCommitRequest struct {
	Projects []entities.Project `json:"projects" validate:"required,min=1,dive"`
}
