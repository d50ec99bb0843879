package graph

import "github.com/fablemap/fablemap/pkg/lore"

// Merge folds one extraction result into the running graph. Entities are
// matched by identifier across the whole graph, not per category: an
// incoming entity whose ID already exists is merged into the existing
// entity wherever it lives, so an identifier never appears in two
// buckets.
//
// For an existing entity the scalar descriptive fields take the incoming
// values, links are unioned by target identifier and citations by
// snippet. An already assigned chronological order is never overwritten.
// Entities with unknown identifiers are appended to their bucket in the
// order the result lists them.
func Merge(graph *lore.Graph, incoming *lore.Graph) {
	refs := graph.Lookup()

	for _, c := range lore.Categories {
		for _, in := range *incoming.Bucket(c) {
			ref, ok := refs[in.ID]
			if !ok {
				bucket := graph.Bucket(c)
				*bucket = append(*bucket, dedupe(in))
				refs[in.ID] = lore.EntityRef{Category: c, Index: len(*bucket) - 1}
				continue
			}

			existing := graph.Entity(ref)
			mergeInto(existing, &in)
		}
	}
}

// dedupe rebuilds a fresh entity's link and citation lists through the
// unioning helpers, so an extraction result that lists the same target
// or snippet twice never puts duplicates into the graph.
func dedupe(in lore.Entity) lore.Entity {
	links := in.Links
	citations := in.Citations
	in.Links = nil
	in.Citations = nil
	for _, l := range links {
		in.AddLink(l)
	}
	for _, c := range citations {
		in.AddCitation(c)
	}
	return in
}

func mergeInto(existing, in *lore.Entity) {
	existing.Name = in.Name
	existing.Description = in.Description
	if in.FirstAppearanceContext != "" {
		existing.FirstAppearanceContext = in.FirstAppearanceContext
	}
	if in.Abilities != "" {
		existing.Abilities = in.Abilities
	}
	if in.Significance != "" {
		existing.Significance = in.Significance
	}
	if len(in.Participants) > 0 {
		existing.Participants = in.Participants
	}
	if in.Outcome != "" {
		existing.Outcome = in.Outcome
	}
	if existing.ChronologicalOrder == 0 {
		existing.ChronologicalOrder = in.ChronologicalOrder
	}

	for _, l := range in.Links {
		existing.AddLink(l)
	}
	for _, c := range in.Citations {
		existing.AddCitation(c)
	}
}
