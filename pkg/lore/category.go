package lore

// Category is the closed classification that partitions entities in the
// knowledge graph. Every entity belongs to exactly one category, and an
// entity identifier is unique across the whole graph, not just within
// its category.
type Category string

const (
	CategoryCharacters Category = "characters"
	CategoryPlotPoints Category = "plot_points"
	CategoryMagicItems Category = "magic_items"
	CategoryMonsters   Category = "monsters"
	CategoryBattles    Category = "battles"
	CategoryLocations  Category = "locations"
)

// Categories lists all categories in their canonical order. Iteration
// over a graph always follows this order so that passes over the graph
// are deterministic.
var Categories = []Category{
	CategoryCharacters,
	CategoryPlotPoints,
	CategoryMagicItems,
	CategoryMonsters,
	CategoryBattles,
	CategoryLocations,
}

// SequenceCategory is the one category whose members carry a
// chronological order. Orders are assigned once, strictly increasing,
// and never reassigned.
const SequenceCategory = CategoryPlotPoints

// CategoryFromID derives the category encoded in an entity identifier.
// Identifiers are minted as "<category>-<name-in-kebab-case>", so the
// category is the longest known prefix followed by a dash.
func CategoryFromID(id string) (Category, bool) {
	for _, c := range Categories {
		prefix := string(c) + "-"
		if len(id) > len(prefix) && id[:len(prefix)] == prefix {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCharacters, CategoryPlotPoints, CategoryMagicItems,
		CategoryMonsters, CategoryBattles, CategoryLocations:
		return true
	}
	return false
}
