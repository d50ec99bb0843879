package graph

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/fablemap/fablemap/pkg/lore"
)

func backlinkFixture() *lore.Graph {
	g := lore.NewGraph()
	g.Characters = []lore.Entity{
		{
			ID:          "characters-erin",
			Name:        "Erin",
			Description: "An innkeeper",
			Links:       []lore.Link{{ID: "locations-liscor", Name: "Liscor"}},
		},
	}
	g.Locations = []lore.Entity{
		{ID: "locations-liscor", Name: "Liscor", Description: "A city"},
	}
	return g
}

func TestBuildBacklinksSymmetrizes(t *testing.T) {
	g := backlinkFixture()

	BuildBacklinks(g)

	liscor := g.Locations[0]
	if len(liscor.Links) != 1 {
		t.Fatalf("target links = %+v, want one backlink", liscor.Links)
	}
	want := lore.Link{ID: "characters-erin", Name: "Erin", Category: lore.CategoryCharacters}
	if liscor.Links[0] != want {
		t.Errorf("backlink = %+v, want %+v", liscor.Links[0], want)
	}
}

func TestBuildBacklinksBackfillsForwardLinks(t *testing.T) {
	g := backlinkFixture()

	BuildBacklinks(g)

	forward := g.Characters[0].Links[0]
	if forward.Category != lore.CategoryLocations {
		t.Errorf("forward link category = %q, want %q", forward.Category, lore.CategoryLocations)
	}
}

func TestBuildBacklinksIsIdempotent(t *testing.T) {
	once := backlinkFixture()
	BuildBacklinks(once)

	twice := backlinkFixture()
	BuildBacklinks(twice)
	BuildBacklinks(twice)

	// Compare serialized forms so unexported details never matter.
	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("second pass changed the graph:\nonce:  %s\ntwice: %s", a, b)
	}
}

func TestBuildBacklinksLeavesDanglingLinks(t *testing.T) {
	g := lore.NewGraph()
	g.Characters = []lore.Entity{
		{
			ID:          "characters-erin",
			Name:        "Erin",
			Description: "An innkeeper",
			Links:       []lore.Link{{ID: "characters-unknown", Name: "A stranger"}},
		},
	}

	BuildBacklinks(g)

	links := g.Characters[0].Links
	if len(links) != 1 || links[0].ID != "characters-unknown" {
		t.Errorf("links = %+v, want the dangling link kept as-is", links)
	}
}

func TestBuildBacklinksSelfLink(t *testing.T) {
	g := lore.NewGraph()
	g.Characters = []lore.Entity{
		{
			ID:          "characters-erin",
			Name:        "Erin",
			Description: "An innkeeper",
			Links:       []lore.Link{{ID: "characters-erin", Name: "Erin"}},
		},
	}

	BuildBacklinks(g)

	if got := len(g.Characters[0].Links); got != 1 {
		t.Errorf("self-linked entity has %d links, want 1", got)
	}
}
