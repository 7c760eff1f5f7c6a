package workflow

// Edge is a directed connection between two nodes, optionally naming the
// handles (ports) used on either end.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
	Selected     bool    `json:"selected,omitempty"`
}

// Clone returns a copy of the edge with its own handle pointers.
func (e Edge) Clone() Edge {
	c := e
	c.SourceHandle = clonePtr(e.SourceHandle)
	c.TargetHandle = clonePtr(e.TargetHandle)
	return c
}

// Touches reports whether nodeID is either endpoint of the edge.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Connection is a proposed edge produced by a connect gesture.
type Connection struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// Edge builds an edge with the given id from the connection.
func (c Connection) Edge(id string) Edge {
	return Edge{
		ID:           id,
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: clonePtr(c.SourceHandle),
		TargetHandle: clonePtr(c.TargetHandle),
	}
}

// SameAs reports whether the connection joins the same endpoints and handles as e.
func (c Connection) SameAs(e Edge) bool {
	return c.Source == e.Source &&
		c.Target == e.Target &&
		handleEqual(c.SourceHandle, e.SourceHandle) &&
		handleEqual(c.TargetHandle, e.TargetHandle)
}

// Handle returns a pointer to name, or nil when name is empty.
func Handle(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

func handleEqual(a, b *string) bool {
	if a == nil || b == nil {
		return (a == nil || *a == "") && (b == nil || *b == "")
	}
	return *a == *b
}
