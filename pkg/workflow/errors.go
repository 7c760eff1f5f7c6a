package workflow

import "errors"

// Schema errors.
var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrInvalidNode     = errors.New("invalid node")
	ErrInvalidData     = errors.New("invalid node data")
	ErrInvalidPatch    = errors.New("invalid node data patch")
)
