package graph

import "github.com/fablemap/fablemap/pkg/lore"

// AssignChronology gives every plot point without a chronological order
// the next free position after the current maximum, in the order the
// plot points appear in the graph. Orders start at 1; zero means
// unassigned. Already assigned orders are never changed, so positions
// from earlier runs stay stable and newly discovered plot points always
// sort after them.
func AssignChronology(g *lore.Graph) {
	bucket := *g.Bucket(lore.SequenceCategory)

	maxOrder := 0
	for i := range bucket {
		if bucket[i].ChronologicalOrder > maxOrder {
			maxOrder = bucket[i].ChronologicalOrder
		}
	}

	next := maxOrder + 1
	for i := range bucket {
		if bucket[i].ChronologicalOrder == 0 {
			bucket[i].ChronologicalOrder = next
			next++
		}
	}
}
