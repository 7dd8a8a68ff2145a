package model

// Member is an actor that can report or be assigned tickets.
type Member struct {
	ID     string `json:"id" toml:"id"`
	Name   string `json:"name" toml:"name"`
	Email  string `json:"email,omitempty" toml:"email"`
	Role   string `json:"role,omitempty" toml:"role"`
	TeamID string `json:"team_id,omitempty" toml:"-"`
}

// Team owns sprints and works on a set of components.
type Team struct {
	ID         string      `json:"id" toml:"id"`
	Name       string      `json:"name" toml:"name"`
	Components []Component `json:"components" toml:"components"`
	TechStack  []string    `json:"tech_stack,omitempty" toml:"tech_stack"`
	Members    []Member    `json:"members" toml:"members"`
}

// PrimaryComponent returns the first component of the team, or Frontend
// when the team declares none.
func (t *Team) PrimaryComponent() Component {
	if len(t.Components) == 0 {
		return ComponentFrontend
	}
	return t.Components[0]
}
