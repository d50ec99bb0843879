package lore

// Graph is the full knowledge graph for one owner: a collection of
// entities per category. The JSON shape always contains every category
// key, each mapped to a (possibly empty) list, never absent.
//
// A graph is mutated only by the merge engine, the backlink pass, and
// the order assignment during an ingestion run; everything else reads
// it as a snapshot.
type Graph struct {
	Characters []Entity `json:"characters"`
	PlotPoints []Entity `json:"plot_points"`
	MagicItems []Entity `json:"magic_items"`
	Monsters   []Entity `json:"monsters"`
	Battles    []Entity `json:"battles"`
	Locations  []Entity `json:"locations"`
}

// NewGraph returns an empty graph with every category present.
func NewGraph() *Graph {
	g := &Graph{}
	g.Normalize()
	return g
}

// Normalize replaces nil category collections with empty ones so the
// serialized form always carries all category keys as lists.
func (g *Graph) Normalize() {
	for _, c := range Categories {
		b := g.Bucket(c)
		if *b == nil {
			*b = []Entity{}
		}
	}
}

// Bucket returns a pointer to the entity collection of the given
// category. Unknown categories map to no collection and return nil.
func (g *Graph) Bucket(c Category) *[]Entity {
	switch c {
	case CategoryCharacters:
		return &g.Characters
	case CategoryPlotPoints:
		return &g.PlotPoints
	case CategoryMagicItems:
		return &g.MagicItems
	case CategoryMonsters:
		return &g.Monsters
	case CategoryBattles:
		return &g.Battles
	case CategoryLocations:
		return &g.Locations
	}
	return nil
}

// EntityRef locates one entity inside a graph by category and index.
// Indices stay valid as long as no entity is inserted into the bucket,
// which holds for the backlink and order passes.
type EntityRef struct {
	Category Category
	Index    int
}

// Lookup builds an identifier index over the whole graph. The merge
// engine and the backlink pass use it for O(1) upserts and symmetry
// checks.
func (g *Graph) Lookup() map[string]EntityRef {
	refs := make(map[string]EntityRef)
	for _, c := range Categories {
		bucket := *g.Bucket(c)
		for i := range bucket {
			refs[bucket[i].ID] = EntityRef{Category: c, Index: i}
		}
	}
	return refs
}

// Entity resolves a reference produced by Lookup.
func (g *Graph) Entity(ref EntityRef) *Entity {
	bucket := g.Bucket(ref.Category)
	if bucket == nil || ref.Index < 0 || ref.Index >= len(*bucket) {
		return nil
	}
	return &(*bucket)[ref.Index]
}

// Len returns the total number of entities across all categories.
func (g *Graph) Len() int {
	n := 0
	for _, c := range Categories {
		n += len(*g.Bucket(c))
	}
	return n
}
