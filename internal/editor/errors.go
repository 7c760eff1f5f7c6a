package editor

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agentflow/internal/runner"
	"github.com/JaimeStill/agentflow/pkg/client"
)

// Domain errors for editor operations.
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrDuplicateNode     = errors.New("node id already exists")
	ErrInvalidNode       = errors.New("invalid node")
	ErrInvalidConnection = errors.New("invalid connection")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrInvalidDrop       = errors.New("drop payload does not name a node type")
	ErrRunInProgress     = errors.New("a run is already in progress")
	ErrEngineUnavailable = errors.New("execution engine unavailable")
)

// MapHTTPStatus maps editor domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, ErrNodeNotFound),
		errors.Is(err, ErrEdgeNotFound),
		errors.Is(err, ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateNode),
		errors.Is(err, ErrRunInProgress),
		errors.Is(err, runner.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidNode),
		errors.Is(err, ErrInvalidConnection),
		errors.Is(err, ErrInvalidDrop):
		return http.StatusBadRequest
	case errors.Is(err, runner.ErrInvalidWorkflow):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr), errors.Is(err, ErrEngineUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
