package store

import "errors"

// Connection validation errors reported by ValidateConnection.
var (
	ErrMissingEndpoint = errors.New("connection endpoint not found")
	ErrSelfLoop        = errors.New("connection source and target are the same node")
	ErrDuplicateEdge   = errors.New("connection already exists")
)
