package graph

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fablemap/fablemap/pkg/ai"
	"github.com/fablemap/fablemap/pkg/loader"
	"github.com/fablemap/fablemap/pkg/lore"
)

type fakeAIClient struct {
	mu      sync.Mutex
	prompts []string
	respond func(systemPrompt, unit string) (*extractResponse, error)
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	options := ai.GenerateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	system := strings.Join(options.SystemPrompts, "\n")

	f.mu.Lock()
	f.prompts = append(f.prompts, system)
	f.mu.Unlock()

	res, err := f.respond(system, prompt)
	if err != nil {
		return err
	}
	*out.(*extractResponse) = *res
	return nil
}

func (f *fakeAIClient) ResetMetrics()               {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type fakeStore struct {
	mu       sync.Mutex
	graph    *lore.Graph
	saves    int
	statuses map[string][]lore.SourceStatus
	failSave bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: make(map[string][]lore.SourceStatus)}
}

func (s *fakeStore) LoadGraph(ctx context.Context, ownerID string) (*lore.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return lore.NewGraph(), nil
	}
	return s.graph, nil
}

func (s *fakeStore) SaveGraph(ctx context.Context, ownerID string, g *lore.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("connection reset")
	}
	s.saves++
	s.graph = g
	return nil
}

func (s *fakeStore) UpdateSourceRecordStatus(ctx context.Context, ownerID, recordID string, status lore.SourceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[recordID] = append(s.statuses[recordID], status)
	return nil
}

type textLoader struct {
	err error
}

func (l textLoader) GetFileText(ctx context.Context, doc loader.Document) ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []byte(doc.Key), nil
}

func testDocument(id, text string) loader.Document {
	return loader.Document{ID: id, Name: id + ".txt", Key: text, Loader: textLoader{}}
}

func characterResponse(id, name, quote string) *extractResponse {
	return &extractResponse{
		Characters: []extractCharacter{
			{ID: id, Name: name, Description: "Seen in the text", SourceQuote: quote},
		},
	}
}

func testEngine(client ai.Client, chunkSize, concurrency int) *Engine {
	return NewEngine(NewEngineParams{
		Client:         client,
		ChunkSize:      chunkSize,
		Concurrency:    concurrency,
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	})
}

func TestRunSingleDocument(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			res := characterResponse("characters-erin", "Erin", "quote from "+unit)
			res.Characters[0].Links = []extractLink{{ID: "locations-liscor", Name: "Liscor"}}
			res.Locations = []extractLocation{
				{ID: "locations-liscor", Name: "Liscor", Description: "A city", SourceQuote: "the city of Liscor"},
			}
			res.PlotPoints = []extractPlotPoint{
				{ID: "plot_points-arrival", Name: "Arrival", Description: "Erin arrives", SourceQuote: "she arrived"},
			}
			return res, nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 4, 5)

	var messages []string
	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "aaaabbbb")},
		func(m string) { messages = append(messages, m) },
	)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Status != RunCompleted {
		t.Errorf("status = %q, want %q", report.Status, RunCompleted)
	}

	g := store.graph
	if len(g.Characters) != 1 || len(g.Locations) != 1 || len(g.PlotPoints) != 1 {
		t.Fatalf("graph = %+v, want one character, location and plot point", g)
	}

	// Two units, one entity: citations from both units unioned.
	if got := len(g.Characters[0].Citations); got != 2 {
		t.Errorf("citations = %+v, want 2", g.Characters[0].Citations)
	}
	for _, c := range g.Characters[0].Citations {
		if c.SourceID != "src-1" {
			t.Errorf("citation source = %q, want src-1", c.SourceID)
		}
	}

	// Backlink pass ran: Liscor links back to Erin.
	if !g.Locations[0].HasLink("characters-erin") {
		t.Errorf("location links = %+v, want backlink to characters-erin", g.Locations[0].Links)
	}

	// Chronology pass ran.
	if got := g.PlotPoints[0].ChronologicalOrder; got != 1 {
		t.Errorf("plot point order = %d, want 1", got)
	}

	wantStatuses := []lore.SourceStatus{lore.SourceStatusProcessing, lore.SourceStatusCompleted}
	if got := store.statuses["src-1"]; len(got) != 2 || got[0] != wantStatuses[0] || got[1] != wantStatuses[1] {
		t.Errorf("statuses = %v, want %v", got, wantStatuses)
	}

	// Incremental save after the document plus the final save.
	if store.saves != 2 {
		t.Errorf("saves = %d, want 2", store.saves)
	}

	joined := strings.Join(messages, "\n")
	for _, want := range []string{"Reading src-1.txt", "in 2 units", "wave 1 of 1", "Analysis complete"} {
		if !strings.Contains(joined, want) {
			t.Errorf("progress messages missing %q:\n%s", want, joined)
		}
	}
}

func TestRunFailedUnitKeepsSiblings(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			if strings.Contains(unit, "b") {
				return nil, errors.New("model overloaded")
			}
			id := "characters-" + unit
			return characterResponse(id, strings.ToUpper(unit), "quote "+unit), nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 4, 5)

	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "aaaabbbbcccc")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Status != RunPartial {
		t.Errorf("status = %q, want %q", report.Status, RunPartial)
	}
	if report.FailedUnits != 1 {
		t.Errorf("failed units = %d, want 1", report.FailedUnits)
	}
	if len(report.PartialDocuments) != 1 || report.PartialDocuments[0] != "src-1" {
		t.Errorf("partial documents = %v, want [src-1]", report.PartialDocuments)
	}
	if len(report.FailedDocuments) != 0 {
		t.Errorf("failed documents = %v, want none", report.FailedDocuments)
	}

	// The failed middle unit must not take its siblings down.
	ids := make([]string, 0, 2)
	for _, e := range store.graph.Characters {
		ids = append(ids, e.ID)
	}
	if len(ids) != 2 || ids[0] != "characters-aaaa" || ids[1] != "characters-cccc" {
		t.Errorf("characters = %v, want contributions from units 1 and 3", ids)
	}

	statuses := store.statuses["src-1"]
	if statuses[len(statuses)-1] != lore.SourceStatusCompleted {
		t.Errorf("final status = %q, want completed despite partial failures", statuses[len(statuses)-1])
	}
}

func TestRunAllUnitsFailedMarksDocumentFailed(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return nil, errors.New("model overloaded")
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 4, 5)

	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "aaaabbbb")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Status != RunPartial {
		t.Errorf("status = %q, want %q", report.Status, RunPartial)
	}
	if len(report.FailedDocuments) != 1 || report.FailedDocuments[0] != "src-1" {
		t.Errorf("failed documents = %v, want [src-1]", report.FailedDocuments)
	}

	statuses := store.statuses["src-1"]
	if statuses[len(statuses)-1] != lore.SourceStatusFailed {
		t.Errorf("final status = %q, want failed", statuses[len(statuses)-1])
	}
}

func TestRunUnreadableDocumentContinues(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return characterResponse("characters-erin", "Erin", "a quote"), nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 100, 5)

	broken := loader.Document{ID: "src-1", Name: "broken.epub", Key: "x", Loader: textLoader{err: errors.New("no readable text found")}}
	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{broken, testDocument("src-2", "some text")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Status != RunPartial {
		t.Errorf("status = %q, want %q", report.Status, RunPartial)
	}
	if len(report.FailedDocuments) != 1 || report.FailedDocuments[0] != "src-1" {
		t.Errorf("failed documents = %v, want [src-1]", report.FailedDocuments)
	}
	if len(store.graph.Characters) != 1 {
		t.Errorf("characters = %+v, want the second document processed", store.graph.Characters)
	}

	statuses := store.statuses["src-2"]
	if statuses[len(statuses)-1] != lore.SourceStatusCompleted {
		t.Errorf("second document status = %q, want completed", statuses[len(statuses)-1])
	}
}

func TestRunUnionsCitationsAcrossDocuments(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return characterResponse("characters-erin", "Erin", "quote from "+unit), nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 100, 5)

	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "volume one"), testDocument("src-2", "volume two")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Status != RunCompleted {
		t.Errorf("status = %q, want %q", report.Status, RunCompleted)
	}

	if len(store.graph.Characters) != 1 {
		t.Fatalf("characters = %+v, want the entity deduplicated across documents", store.graph.Characters)
	}
	citations := store.graph.Characters[0].Citations
	if len(citations) != 2 {
		t.Fatalf("citations = %+v, want one per document", citations)
	}
	sources := map[string]bool{}
	for _, c := range citations {
		sources[c.SourceID] = true
	}
	if !sources["src-1"] || !sources["src-2"] {
		t.Errorf("citation sources = %+v, want both documents", sources)
	}
}

func TestRunLaterWavesSeeEarlierEntities(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return characterResponse("characters-erin", "Erin", "quote from "+unit), nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 4, 1)

	_, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "aaaabbbb")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(client.prompts) != 2 {
		t.Fatalf("got %d extraction calls, want 2", len(client.prompts))
	}
	if strings.Contains(client.prompts[0], "characters-erin") {
		t.Error("first wave prompt already lists the entity it is about to discover")
	}
	if !strings.Contains(client.prompts[1], "characters-erin") {
		t.Error("second wave prompt does not list the entity found by the first wave")
	}
}

func TestRunSaveFailureAbortsRun(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return characterResponse("characters-erin", "Erin", "a quote"), nil
		},
	}
	store := newFakeStore()
	store.failSave = true
	engine := testEngine(client, 100, 5)

	report, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "some text")}, nil)
	if err == nil {
		t.Fatal("Run() error = nil, want persistence failure")
	}
	if report.Status != RunFailed {
		t.Errorf("status = %q, want %q", report.Status, RunFailed)
	}
}

func TestRunGraphSerializesAllCategories(t *testing.T) {
	client := &fakeAIClient{
		respond: func(system, unit string) (*extractResponse, error) {
			return characterResponse("characters-erin", "Erin", "a quote"), nil
		},
	}
	store := newFakeStore()
	engine := testEngine(client, 100, 5)

	if _, err := engine.Run(context.Background(), store, "owner-1",
		[]loader.Document{testDocument("src-1", "some text")}, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw, err := json.Marshal(store.graph)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, c := range lore.Categories {
		v, ok := decoded[string(c)]
		if !ok {
			t.Errorf("serialized graph missing category %q", c)
			continue
		}
		if _, isList := v.([]any); !isList {
			t.Errorf("category %q serialized as %T, want list", c, v)
		}
	}
}
