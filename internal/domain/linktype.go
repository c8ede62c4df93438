package domain

// LinkType is the closed set of relations the engine understands.
// How a host labels each relation is configured separately (see config.Terms).
type LinkType int

const (
	LinkBroader LinkType = iota
	LinkNarrower
	LinkRelated
	LinkTopConceptOf
	LinkHasTopConcept
	LinkInScheme
	LinkMember
	LinkMemberList
)

// AllLinkTypes lists every LinkType in declaration order
var AllLinkTypes = []LinkType{
	LinkBroader,
	LinkNarrower,
	LinkRelated,
	LinkTopConceptOf,
	LinkHasTopConcept,
	LinkInScheme,
	LinkMember,
	LinkMemberList,
}

func (t LinkType) String() string {
	switch t {
	case LinkBroader:
		return "broader"
	case LinkNarrower:
		return "narrower"
	case LinkRelated:
		return "related"
	case LinkTopConceptOf:
		return "topConceptOf"
	case LinkHasTopConcept:
		return "hasTopConcept"
	case LinkInScheme:
		return "inScheme"
	case LinkMember:
		return "member"
	case LinkMemberList:
		return "memberList"
	default:
		return "unknown"
	}
}

// Class identifies the kind of resource a concept is tagged as
type Class int

const (
	ClassUnknown Class = iota
	ClassScheme
	ClassConcept
	ClassCollection
	ClassOrderedCollection
)

func (c Class) String() string {
	switch c {
	case ClassScheme:
		return "ConceptScheme"
	case ClassConcept:
		return "Concept"
	case ClassCollection:
		return "Collection"
	case ClassOrderedCollection:
		return "OrderedCollection"
	default:
		return "Unknown"
	}
}
