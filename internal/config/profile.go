package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// ErrUnknownInitiative is returned when a caller names an initiative the
// profile does not declare.
var ErrUnknownInitiative = errors.New("unknown initiative")

// Profile describes the synthetic company a run generates data for.
type Profile struct {
	Company            string                            `toml:"company"`
	ProjectPrefix      string                            `toml:"project_prefix"`
	SprintDurationDays int                               `toml:"sprint_duration_days"`
	StoryPointScale    []int                             `toml:"story_point_scale"`
	BugFrequency       float64                           `toml:"bug_frequency"`
	Probabilities      Probabilities                     `toml:"probabilities"`
	Initiatives        []Initiative                      `toml:"initiatives"`
	StoryTemplates     map[model.Component]StoryTemplate `toml:"story_templates"`
	Personas           []string                          `toml:"personas"`
	Teams              []model.Team                      `toml:"teams"`
}

// Probabilities are the per-ticket odds the relationship and blocking
// policies sample against. All values lie in [0, 1].
type Probabilities struct {
	Dependency  float64 `toml:"dependency"`
	Blocking    float64 `toml:"blocking"`
	Clone       float64 `toml:"clone"`
	Duplicate   float64 `toml:"duplicate"`
	Implements  float64 `toml:"implements"`
	BlockSample float64 `toml:"block_sample"` // share of stories+tasks offered to the blocker
}

type Initiative struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Objectives  []string `toml:"objectives"`
}

// StoryTemplate seeds story titles for one component.
type StoryTemplate struct {
	Features     []string `toml:"features"`
	Improvements []string `toml:"improvements"`
}

// LoadProfile reads a TOML profile from path. Fields the file omits keep
// the values of DefaultProfile.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	p, err := DecodeProfile(f)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// DecodeProfile decodes and validates a TOML profile. Keys the document
// does not define take their DefaultProfile values; lists and tables are
// replaced wholesale, never merged.
func DecodeProfile(r io.Reader) (*Profile, error) {
	p := &Profile{}
	md, err := toml.NewDecoder(r).Decode(p)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	p.fillDefaults(md, DefaultProfile())
	p.assignTeamIDs()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode writes the profile as TOML.
func (p *Profile) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(p)
}

// Validate reports every configuration problem at once.
func (p *Profile) Validate() error {
	ve := &model.ValidationError{}
	if p.ProjectPrefix == "" {
		ve.Add("project_prefix", "is required")
	}
	if p.SprintDurationDays < 1 {
		ve.Add("sprint_duration_days", "must be at least 1, got %d", p.SprintDurationDays)
	}
	if len(p.StoryPointScale) == 0 {
		ve.Add("story_point_scale", "must not be empty")
	}
	for _, sp := range p.StoryPointScale {
		if sp < 1 {
			ve.Add("story_point_scale", "values must be positive, got %d", sp)
			break
		}
	}
	if p.BugFrequency < 0 {
		ve.Add("bug_frequency", "must not be negative, got %g", p.BugFrequency)
	}
	for _, pr := range []struct {
		name string
		v    float64
	}{
		{"probabilities.dependency", p.Probabilities.Dependency},
		{"probabilities.blocking", p.Probabilities.Blocking},
		{"probabilities.clone", p.Probabilities.Clone},
		{"probabilities.duplicate", p.Probabilities.Duplicate},
		{"probabilities.implements", p.Probabilities.Implements},
		{"probabilities.block_sample", p.Probabilities.BlockSample},
	} {
		if pr.v < 0 || pr.v > 1 {
			ve.Add(pr.name, "must be within [0, 1], got %g", pr.v)
		}
	}
	if len(p.Teams) == 0 {
		ve.Add("teams", "at least one team is required")
	}
	seen := map[string]bool{}
	for i, t := range p.Teams {
		field := fmt.Sprintf("teams[%d]", i)
		if t.ID == "" {
			ve.Add(field+".id", "is required")
		} else if seen[t.ID] {
			ve.Add(field+".id", "duplicate team id %q", t.ID)
		}
		seen[t.ID] = true
		if len(t.Members) == 0 {
			ve.Add(field+".members", "team %q has no members", t.ID)
		}
		for _, c := range t.Components {
			if !c.IsValid() {
				ve.Add(field+".components", "invalid component %q", c)
			}
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Initiative returns the named initiative.
func (p *Profile) Initiative(name string) (*Initiative, error) {
	for i := range p.Initiatives {
		if p.Initiatives[i].Name == name {
			return &p.Initiatives[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownInitiative)
}

// Team returns the team with the given ID.
func (p *Profile) Team(id string) (*model.Team, bool) {
	for i := range p.Teams {
		if p.Teams[i].ID == id {
			return &p.Teams[i], true
		}
	}
	return nil, false
}

// Members returns every member across all teams.
func (p *Profile) Members() []model.Member {
	var out []model.Member
	for _, t := range p.Teams {
		out = append(out, t.Members...)
	}
	return out
}

func (p *Profile) fillDefaults(md toml.MetaData, d *Profile) {
	if !md.IsDefined("company") {
		p.Company = d.Company
	}
	if !md.IsDefined("project_prefix") {
		p.ProjectPrefix = d.ProjectPrefix
	}
	if !md.IsDefined("sprint_duration_days") {
		p.SprintDurationDays = d.SprintDurationDays
	}
	if !md.IsDefined("story_point_scale") {
		p.StoryPointScale = d.StoryPointScale
	}
	if !md.IsDefined("bug_frequency") {
		p.BugFrequency = d.BugFrequency
	}
	prob, def := &p.Probabilities, d.Probabilities
	for _, f := range []struct {
		key string
		dst *float64
		def float64
	}{
		{"dependency", &prob.Dependency, def.Dependency},
		{"blocking", &prob.Blocking, def.Blocking},
		{"clone", &prob.Clone, def.Clone},
		{"duplicate", &prob.Duplicate, def.Duplicate},
		{"implements", &prob.Implements, def.Implements},
		{"block_sample", &prob.BlockSample, def.BlockSample},
	} {
		if !md.IsDefined("probabilities", f.key) {
			*f.dst = f.def
		}
	}
	if !md.IsDefined("initiatives") {
		p.Initiatives = d.Initiatives
	}
	if !md.IsDefined("story_templates") {
		p.StoryTemplates = d.StoryTemplates
	}
	if !md.IsDefined("personas") {
		p.Personas = d.Personas
	}
	if !md.IsDefined("teams") {
		p.Teams = d.Teams
	}
}

func (p *Profile) assignTeamIDs() {
	for i := range p.Teams {
		for j := range p.Teams[i].Members {
			p.Teams[i].Members[j].TeamID = p.Teams[i].ID
		}
	}
}
