package graph

import "github.com/fablemap/fablemap/pkg/lore"

// BuildBacklinks makes every link in the graph symmetric: for each link
// from A to B whose target exists, B gets a link back to A unless one is
// already there. Links to identifiers not present in the graph are left
// untouched. The pass also backfills the name and category on forward
// links from the target entity, since the extraction service only
// returns id and name.
//
// Running the pass twice is a no-op: a symmetric graph stays unchanged.
func BuildBacklinks(g *lore.Graph) {
	refs := g.Lookup()

	for _, c := range lore.Categories {
		bucket := *g.Bucket(c)
		for i := range bucket {
			entity := &bucket[i]
			for li := range entity.Links {
				link := &entity.Links[li]
				ref, ok := refs[link.ID]
				if !ok {
					continue
				}

				target := g.Entity(ref)
				link.Name = target.Name
				link.Category = ref.Category

				if !target.HasLink(entity.ID) {
					target.AddLink(lore.Link{
						ID:       entity.ID,
						Name:     entity.Name,
						Category: c,
					})
				}
			}
		}
	}
}
