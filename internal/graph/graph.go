// Package graph maintains the typed, bidirectional relationship graph
// between tickets. Link is the only way edges are created; no operation
// removes one. Every edge is stored as a pair: the forward half on the
// source ticket and the inverse half on the target.
package graph

import (
	"fmt"
	"sort"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// Link adds target to source's rel list and source to target's inverse
// list. A non-empty note is recorded on the source keyed by
// (rel, target.ID). Unknown relation types are rejected.
func Link(source, target *model.Ticket, rel model.RelationType, note string) error {
	inverse, ok := rel.Inverse()
	if !ok {
		return fmt.Errorf("link %s -> %s: unknown relation type %q", source.ID, target.ID, rel)
	}

	if source.Links == nil {
		source.Links = model.Links{}
	}
	if target.Links == nil {
		target.Links = model.Links{}
	}
	source.Links[rel] = append(source.Links[rel], target.ID)
	target.Links[inverse] = append(target.Links[inverse], source.ID)

	if note != "" {
		if source.RelationshipNotes == nil {
			source.RelationshipNotes = map[model.RelationType]map[string]string{}
		}
		if source.RelationshipNotes[rel] == nil {
			source.RelationshipNotes[rel] = map[string]string{}
		}
		source.RelationshipNotes[rel][target.ID] = note
	}
	return nil
}

// Asymmetry describes one edge whose paired half is missing.
type Asymmetry struct {
	Source string
	Target string
	Type   model.RelationType
}

func (a Asymmetry) String() string {
	return fmt.Sprintf("%s -%s-> %s has no inverse", a.Source, a.Type, a.Target)
}

// CheckSymmetry walks every edge of every ticket and reports edges whose
// inverse half is absent, including edges pointing at unknown tickets.
func CheckSymmetry(tickets map[string]*model.Ticket) []Asymmetry {
	var out []Asymmetry
	for _, id := range sortedIDs(tickets) {
		t := tickets[id]
		for rel, targets := range t.Links {
			inverse, ok := rel.Inverse()
			for _, targetID := range targets {
				target, found := tickets[targetID]
				if !ok || !found || !target.Links.Has(inverse, t.ID) {
					out = append(out, Asymmetry{Source: t.ID, Target: targetID, Type: rel})
				}
			}
		}
	}
	return out
}

// Edges flattens the graph into an edge list ordered by source ID and
// relation type. Notes are attached to the forward halves they were
// recorded on.
func Edges(tickets map[string]*model.Ticket) []*model.GraphEdge {
	var out []*model.GraphEdge
	for _, id := range sortedIDs(tickets) {
		t := tickets[id]
		for _, rel := range model.RelationTypes {
			for _, targetID := range t.Links[rel] {
				note, _ := t.Note(rel, targetID)
				out = append(out, &model.GraphEdge{Source: t.ID, Target: targetID, Type: rel, Note: note})
			}
		}
	}
	return out
}

// DependsOnReachable reports whether to is reachable from from by
// following depends_on edges. The generator does not use this as a
// guard; it exists to audit multi-hop cycles.
func DependsOnReachable(tickets map[string]*model.Ticket, from, to string) bool {
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := tickets[id]
		if !ok {
			continue
		}
		for _, next := range t.Links[model.RelDependsOn] {
			if next == to {
				return true
			}
			stack = append(stack, next)
		}
	}
	return false
}

func sortedIDs(tickets map[string]*model.Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for id := range tickets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
