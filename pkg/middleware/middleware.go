package middleware

import (
	"net/http"
	"slices"
)

// System manages an ordered stack of HTTP middleware. The first middleware
// added is the outermost.
type System interface {
	Use(mws ...func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

// Use appends middleware in order. Nil entries are skipped.
func (s *stack) Use(mws ...func(http.Handler) http.Handler) {
	for _, mw := range mws {
		if mw != nil {
			s.layers = append(s.layers, mw)
		}
	}
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(s.layers) {
		handler = mw(handler)
	}
	return handler
}
