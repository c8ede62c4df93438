package domain

import "slices"

// ValueType distinguishes linked resources from plain text values
type ValueType int

const (
	ValueLiteral ValueType = iota
	ValueResource
)

func (t ValueType) String() string {
	if t == ValueResource {
		return "resource"
	}
	return "literal"
}

// Value is one typed property value of a concept
type Value struct {
	Term       string    // Property term, e.g. "skos:broader"
	Type       ValueType // Literal or resource link
	ResourceID int64     // Target concept for resource values
	Literal    string    // Text for literal values
}

// Concept is a generic resource read from the host store.
// Values keep the order in which the host returned them.
type Concept struct {
	ID      int64
	Title   string
	Classes []string // e.g. "skos:Concept", "skos:ConceptScheme"
	Values  []Value
}

// HasClass reports whether the concept is tagged with the given class term
func (c *Concept) HasClass(term string) bool {
	return term != "" && slices.Contains(c.Classes, term)
}

// Literal returns the first literal value stored under term
func (c *Concept) Literal(term string) (string, bool) {
	for _, v := range c.Values {
		if v.Term == term && v.Type == ValueLiteral {
			return v.Literal, true
		}
	}
	return "", false
}

// Record returns the lightweight id/title form of the concept
func (c *Concept) Record(level int) ConceptRecord {
	return ConceptRecord{ID: c.ID, Title: c.Title, Level: level}
}

// ConceptRecord is a lightweight result row (id + title) for list-style callers
type ConceptRecord struct {
	ID    int64
	Title string
	Level int
}

// ConceptData holds the fields used to create a new concept
type ConceptData struct {
	Title   string
	Classes []string
	Values  []Value
}

// Link is one directed resource value: Source --Term--> Target
type Link struct {
	Source int64
	Term   string
	Target int64
}

// Patch is a partial update. Literals replace every literal value under the
// same term; an empty string removes the term.
type Patch struct {
	Title    *string
	Literals map[string]string
}

// Filter selects concepts in ResourceStore.Search. Empty fields match everything.
type Filter struct {
	Class   string // Concepts tagged with this class term
	HasTerm string // Concepts carrying at least one resource value with this term
}

// Records converts concepts to lightweight records at the given level
func Records(concepts []*Concept, level int) []ConceptRecord {
	out := make([]ConceptRecord, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, c.Record(level))
	}
	return out
}

// IDs returns the ids of concepts in order
func IDs(concepts []*Concept) []int64 {
	out := make([]int64, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, c.ID)
	}
	return out
}

// Clone returns a deep copy of the concept
func (c *Concept) Clone() *Concept {
	out := *c
	out.Classes = slices.Clone(c.Classes)
	out.Values = slices.Clone(c.Values)
	return &out
}
