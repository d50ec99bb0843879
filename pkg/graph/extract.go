package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/fablemap/fablemap/pkg/ai"
	"github.com/fablemap/fablemap/pkg/lore"
)

type extractLink struct {
	ID   string `json:"id" validate:"required" jsonschema_description:"The unique ID of the related entity, existing or newly created in this response"`
	Name string `json:"name" validate:"required" jsonschema_description:"The name of the related entity"`
}

type extractCharacter struct {
	ID                     string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format characters-name-in-kebab-case"`
	Name                   string        `json:"name" validate:"required" jsonschema_description:"The character's name"`
	Description            string        `json:"description" validate:"required" jsonschema_description:"Comprehensive description of the character, their motivations and relationships"`
	FirstAppearanceContext string        `json:"first_appearance_context" jsonschema_description:"The context in which the character first appears in the text"`
	Links                  []extractLink `json:"links" validate:"dive" jsonschema_description:"Relationships to other entities mentioned in the text"`
	SourceQuote            string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractPlotPoint struct {
	ID          string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format plot_points-name-in-kebab-case"`
	Name        string        `json:"name" validate:"required" jsonschema_description:"A short name for the plot point"`
	Description string        `json:"description" validate:"required" jsonschema_description:"Description of the plot point, its cause and effect"`
	Links       []extractLink `json:"links" validate:"dive" jsonschema_description:"Entities involved in or affected by the plot point"`
	SourceQuote string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractMagicItem struct {
	ID          string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format magic_items-name-in-kebab-case"`
	Name        string        `json:"name" validate:"required" jsonschema_description:"The item's name"`
	Description string        `json:"description" validate:"required" jsonschema_description:"Description of the item and its known properties"`
	Abilities   string        `json:"abilities" jsonschema_description:"The item's abilities or powers, if described"`
	Links       []extractLink `json:"links" validate:"dive" jsonschema_description:"Entities connected to the item, such as its wielder or origin"`
	SourceQuote string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractMonster struct {
	ID          string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format monsters-name-in-kebab-case"`
	Name        string        `json:"name" validate:"required" jsonschema_description:"The monster's or creature's name"`
	Description string        `json:"description" validate:"required" jsonschema_description:"Description of the monster, its nature and behavior"`
	Abilities   string        `json:"abilities" jsonschema_description:"The monster's abilities, if described"`
	Links       []extractLink `json:"links" validate:"dive" jsonschema_description:"Entities connected to the monster"`
	SourceQuote string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractBattle struct {
	ID           string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format battles-name-in-kebab-case"`
	Name         string        `json:"name" validate:"required" jsonschema_description:"The battle's name"`
	Description  string        `json:"description" validate:"required" jsonschema_description:"Description of the battle and how it unfolded"`
	Participants []string      `json:"participants" jsonschema_description:"IDs of the entities that took part in the battle"`
	Outcome      string        `json:"outcome" jsonschema_description:"The outcome of the battle"`
	Links        []extractLink `json:"links" validate:"dive" jsonschema_description:"Entities connected to the battle"`
	SourceQuote  string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractLocation struct {
	ID           string        `json:"id" validate:"required" jsonschema_description:"Unique stable ID in the format locations-name-in-kebab-case"`
	Name         string        `json:"name" validate:"required" jsonschema_description:"The location's name"`
	Description  string        `json:"description" validate:"required" jsonschema_description:"Description of the location and its significance"`
	Significance string        `json:"significance" jsonschema_description:"The location's significance to the story"`
	Links        []extractLink `json:"links" validate:"dive" jsonschema_description:"Entities connected to the location"`
	SourceQuote  string        `json:"source_quote" validate:"required" jsonschema_description:"A direct quote from the text justifying this entity"`
}

type extractResponse struct {
	Characters []extractCharacter `json:"characters" validate:"dive" jsonschema_description:"Characters identified in the text"`
	PlotPoints []extractPlotPoint `json:"plot_points" validate:"dive" jsonschema_description:"Major plot points identified in the text"`
	MagicItems []extractMagicItem `json:"magic_items" validate:"dive" jsonschema_description:"Magic items identified in the text"`
	Monsters   []extractMonster   `json:"monsters" validate:"dive" jsonschema_description:"Monsters and creatures identified in the text"`
	Battles    []extractBattle    `json:"battles" validate:"dive" jsonschema_description:"Battles identified in the text"`
	Locations  []extractLocation  `json:"locations" validate:"dive" jsonschema_description:"Significant locations identified in the text"`
}

var extractValidate = validator.New()

// systemPrompt renders the extraction prompt with the entities already
// known to the graph, so the service reuses existing IDs instead of
// minting fresh ones for entities it has seen before.
func systemPrompt(g *lore.Graph) string {
	return fmt.Sprintf(
		ai.ExtractPromptLore,
		knownEntities(g.Characters),
		knownEntities(g.Locations),
		knownEntities(g.MagicItems),
		knownEntities(g.Battles),
		knownEntities(g.Monsters),
		knownEntities(g.PlotPoints),
	)
}

func knownEntities(entities []lore.Entity) string {
	if len(entities) == 0 {
		return "None"
	}

	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		parts = append(parts, fmt.Sprintf("id: %q, name: %q", e.ID, e.Name))
	}
	return strings.Join(parts, "; ")
}

// extractFromUnit sends one unit of text to the extraction service and
// converts the structured response into a partial graph. Every returned
// entity carries exactly one citation pointing at sourceID with the
// service's source quote as snippet. Responses that fail validation are
// returned as errors so the caller can retry the unit.
func extractFromUnit(
	ctx context.Context,
	client ai.Client,
	prompt string,
	unit string,
	sourceID string,
) (*lore.Graph, error) {
	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_lore_entities",
		"Extract characters, plot points, magic items, monsters, battles and locations from a provided text.",
		unit,
		&res,
		ai.WithSystemPrompts(prompt),
	)
	if err != nil {
		return nil, err
	}

	if err := extractValidate.Struct(&res); err != nil {
		return nil, fmt.Errorf("extraction response failed validation: %w", err)
	}

	incoming := lore.NewGraph()
	for _, c := range res.Characters {
		incoming.Characters = append(incoming.Characters, lore.Entity{
			ID:                     c.ID,
			Name:                   c.Name,
			Description:            c.Description,
			FirstAppearanceContext: c.FirstAppearanceContext,
			Links:                  convertLinks(c.Links),
			Citations:              []lore.Citation{{SourceID: sourceID, Snippet: c.SourceQuote}},
		})
	}
	for _, p := range res.PlotPoints {
		incoming.PlotPoints = append(incoming.PlotPoints, lore.Entity{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Links:       convertLinks(p.Links),
			Citations:   []lore.Citation{{SourceID: sourceID, Snippet: p.SourceQuote}},
		})
	}
	for _, m := range res.MagicItems {
		incoming.MagicItems = append(incoming.MagicItems, lore.Entity{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Abilities:   m.Abilities,
			Links:       convertLinks(m.Links),
			Citations:   []lore.Citation{{SourceID: sourceID, Snippet: m.SourceQuote}},
		})
	}
	for _, m := range res.Monsters {
		incoming.Monsters = append(incoming.Monsters, lore.Entity{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Abilities:   m.Abilities,
			Links:       convertLinks(m.Links),
			Citations:   []lore.Citation{{SourceID: sourceID, Snippet: m.SourceQuote}},
		})
	}
	for _, b := range res.Battles {
		incoming.Battles = append(incoming.Battles, lore.Entity{
			ID:           b.ID,
			Name:         b.Name,
			Description:  b.Description,
			Participants: b.Participants,
			Outcome:      b.Outcome,
			Links:        convertLinks(b.Links),
			Citations:    []lore.Citation{{SourceID: sourceID, Snippet: b.SourceQuote}},
		})
	}
	for _, l := range res.Locations {
		incoming.Locations = append(incoming.Locations, lore.Entity{
			ID:           l.ID,
			Name:         l.Name,
			Description:  l.Description,
			Significance: l.Significance,
			Links:        convertLinks(l.Links),
			Citations:    []lore.Citation{{SourceID: sourceID, Snippet: l.SourceQuote}},
		})
	}
	return incoming, nil
}

// convertLinks maps service links onto graph links. The service only
// returns id and name; the category is recovered from the ID format and
// backfilled again during the backlink pass for links whose target ends
// up in a different bucket.
func convertLinks(links []extractLink) []lore.Link {
	out := make([]lore.Link, 0, len(links))
	for _, l := range links {
		c, _ := lore.CategoryFromID(l.ID)
		out = append(out, lore.Link{ID: l.ID, Name: l.Name, Category: c})
	}
	return out
}
