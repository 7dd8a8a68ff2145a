package model

// RelationType is the label of a directed edge between two tickets.
// Every type has exactly one inverse; edges are always stored in pairs.
type RelationType string

const (
	RelBlocks        RelationType = "blocks"
	RelBlockedBy     RelationType = "blocked_by"
	RelDependsOn     RelationType = "depends_on"
	RelRequiredFor   RelationType = "required_for"
	RelClones        RelationType = "clones"
	RelClonedBy      RelationType = "cloned_by"
	RelDuplicates    RelationType = "duplicates"
	RelDuplicatedBy  RelationType = "duplicated_by"
	RelImplements    RelationType = "implements"
	RelImplementedBy RelationType = "implemented_by"
)

// inverses is the fixed inverse table. It is symmetric.
var inverses = map[RelationType]RelationType{
	RelBlocks:        RelBlockedBy,
	RelBlockedBy:     RelBlocks,
	RelDependsOn:     RelRequiredFor,
	RelRequiredFor:   RelDependsOn,
	RelClones:        RelClonedBy,
	RelClonedBy:      RelClones,
	RelDuplicates:    RelDuplicatedBy,
	RelDuplicatedBy:  RelDuplicates,
	RelImplements:    RelImplementedBy,
	RelImplementedBy: RelImplements,
}

// RelationTypes lists every relation type, forward types first.
var RelationTypes = []RelationType{
	RelBlocks, RelDependsOn, RelClones, RelDuplicates, RelImplements,
	RelBlockedBy, RelRequiredFor, RelClonedBy, RelDuplicatedBy, RelImplementedBy,
}

// String returns the string representation of the relation type.
func (r RelationType) String() string {
	return string(r)
}

// IsValid checks whether the relation type is in the inverse table.
func (r RelationType) IsValid() bool {
	_, ok := inverses[r]
	return ok
}

// Inverse returns the relation type of the paired edge. The second
// result is false for unknown types.
func (r RelationType) Inverse() (RelationType, bool) {
	inv, ok := inverses[r]
	return inv, ok
}

// IsForward reports whether r is an active-voice relation.
func (r RelationType) IsForward() bool {
	switch r {
	case RelBlocks, RelDependsOn, RelClones, RelDuplicates, RelImplements:
		return true
	}
	return false
}

// Links holds a ticket's adjacency lists keyed by relation type.
type Links map[RelationType][]string

// Has reports whether id appears in the list for rel.
func (l Links) Has(rel RelationType, id string) bool {
	for _, v := range l[rel] {
		if v == id {
			return true
		}
	}
	return false
}

// Count returns the total number of edge endpoints across all types.
func (l Links) Count() int {
	n := 0
	for _, ids := range l {
		n += len(ids)
	}
	return n
}
