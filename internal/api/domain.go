package api

import (
	"github.com/JaimeStill/agentflow/internal/editor"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Editor editor.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	editorSystem := editor.New(
		runtime.Store,
		runtime.Runner,
		runtime.Engine,
		runtime.Palette,
		runtime.Templates,
		runtime.Lifecycle,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Editor: editorSystem,
	}
}
