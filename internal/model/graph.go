package model

// GraphEdge represents one stored relationship as a graph edge. Both
// halves of a pair appear as separate edges.
type GraphEdge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Type   RelationType `json:"type"`
	Note   string       `json:"note,omitempty"`
}

// RelatedTicket is one side of a relationship as seen from a ticket.
type RelatedTicket struct {
	ID   string `json:"id"`
	Note string `json:"note,omitempty"`
}

// Relationships groups a ticket's edges by direction and type. Outgoing
// holds active-voice edges, Incoming holds the passive-voice halves.
type Relationships struct {
	Outgoing map[RelationType][]RelatedTicket `json:"outgoing"`
	Incoming map[RelationType][]RelatedTicket `json:"incoming"`
}

// Dependencies is the dependency-centric view of a single ticket.
// RequiredFor is the reverse half of DependsOn.
type Dependencies struct {
	DependsOn   []string `json:"depends_on"`
	RequiredFor []string `json:"required_for"`
	BlockedBy   []string `json:"blocked_by"`
	Blocks      []string `json:"blocks"`
}

// Pair is an ordered (from, to) ticket pair.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SprintDependencies lists the blocking and dependency pairs among the
// tickets of a sprint. RequiredFor pairs read "From is required for To".
type SprintDependencies struct {
	Blocking     []Pair `json:"blocking"`
	Dependencies []Pair `json:"dependencies"`
	RequiredFor  []Pair `json:"required_for"`
}

// GraphStats holds aggregate ticket counts by status.
type GraphStats struct {
	Total        int                `json:"total"`
	ByStatus     map[Status]int     `json:"by_status"`
	ByType       map[TicketType]int `json:"by_type"`
	Edges        int                `json:"edges"`
	BlockedCount int                `json:"blocked"`
}
