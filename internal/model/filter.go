package model

// TicketFilter holds criteria for querying tickets. Zero-value fields
// mean "no filter" for that dimension; all set fields must match.
type TicketFilter struct {
	Type      []TicketType `json:"type,omitempty"`
	Status    []Status     `json:"status,omitempty"`
	Component Component    `json:"component,omitempty"`
	SprintID  string       `json:"sprint_id,omitempty"`
	Assignee  string       `json:"assignee,omitempty"`
	EpicLink  string       `json:"epic_link,omitempty"`
	ParentID  string       `json:"parent_ticket,omitempty"`
}

// Matches reports whether t satisfies every set criterion.
func (f TicketFilter) Matches(t *Ticket) bool {
	if len(f.Type) > 0 && !containsType(f.Type, t.Type) {
		return false
	}
	if len(f.Status) > 0 && !containsStatus(f.Status, t.Status) {
		return false
	}
	if f.Component != "" && !t.HasComponent(f.Component) {
		return false
	}
	if f.SprintID != "" && t.SprintID != f.SprintID {
		return false
	}
	if f.Assignee != "" && t.AssigneeID != f.Assignee {
		return false
	}
	if f.EpicLink != "" && t.EpicLink != f.EpicLink {
		return false
	}
	if f.ParentID != "" && t.ParentID != f.ParentID {
		return false
	}
	return true
}

func containsType(types []TicketType, t TicketType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsStatus(statuses []Status, s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
