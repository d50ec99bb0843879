package lore

// Link is a relation between two entities. Links are stored directed
// (each entity keeps its own outgoing list) but are semantically
// undirected: after the backlink pass, a link from A to B implies a
// link from B back to A. The target name and category are denormalized
// onto the link so consumers can render it without a second lookup.
type Link struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Citation ties an entity to the evidence it was extracted from: the
// source document it came out of and the verbatim snippet that
// justifies the entity's existence or description.
type Citation struct {
	SourceID string `json:"sourceId"`
	Snippet  string `json:"snippet"`
}

// Entity is a node in the knowledge graph representing one narrative
// concept. The identifier is minted by the extraction service as
// "category-name-in-kebab-case" and is immutable once assigned.
//
// Entity covers all categories; the category-specific fields are only
// populated for members of the matching category and omitted from JSON
// otherwise. ChronologicalOrder is only meaningful for the sequence
// category and is zero until assigned.
type Entity struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Links       []Link     `json:"links"`
	Citations   []Citation `json:"citations"`

	FirstAppearanceContext string   `json:"first_appearance_context,omitempty"`
	Abilities              string   `json:"abilities,omitempty"`
	Significance           string   `json:"significance,omitempty"`
	Participants           []string `json:"participants,omitempty"`
	Outcome                string   `json:"outcome,omitempty"`
	ChronologicalOrder     int      `json:"chronological_order,omitempty"`
}

// HasLink reports whether the entity already links to the given target.
func (e *Entity) HasLink(targetID string) bool {
	for _, l := range e.Links {
		if l.ID == targetID {
			return true
		}
	}
	return false
}

// AddLink appends a link unless a link to the same target is already
// present. Link lists never contain duplicate target identifiers.
func (e *Entity) AddLink(l Link) {
	if e.HasLink(l.ID) {
		return
	}
	e.Links = append(e.Links, l)
}

// AddCitation appends a citation unless one with the same snippet text
// is already present. Citations are unioned, never replaced.
func (e *Entity) AddCitation(c Citation) {
	for _, existing := range e.Citations {
		if existing.Snippet == c.Snippet {
			return
		}
	}
	e.Citations = append(e.Citations, c)
}
