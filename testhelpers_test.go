package caravan

import (
	"context"
	"strconv"
	"sync"
)

// fakeProvider scripts chat responses in order. When fn is set it takes
// precedence and receives every request.
type fakeProvider struct {
	mu        sync.Mutex
	name      string
	responses []ChatResponse
	errs      []error
	fn        func(req ChatRequest) (ChatResponse, error)
	requests  []ChatRequest
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) Chat(_ context.Context, req ChatRequest) (ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if f.fn != nil {
		return f.fn(req)
	}
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return ChatResponse{}, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	if len(f.responses) > 0 {
		return f.responses[len(f.responses)-1], nil
	}
	return ChatResponse{}, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) request(i int) ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func fakeModel(id ModelID, p *fakeProvider) Model {
	return Model{ID: id, Provider: p}
}

// fakeSurface records every surface interaction in memory. editEmbedErr,
// when set, makes every EditEmbed call fail.
type fakeSurface struct {
	mu           sync.Mutex
	edits        []string
	threads      []string
	messages     []string
	embeds       []Embed
	editEmbedErr error
	nextID       int
}

func (f *fakeSurface) id() string {
	f.nextID++
	return "msg-" + strconv.Itoa(f.nextID)
}

func (f *fakeSurface) EditOriginal(_ context.Context, _, content string) (SurfaceMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, content)
	return SurfaceMessage{ID: f.id(), ChannelID: "chan-1"}, nil
}

func (f *fakeSurface) CreateThread(_ context.Context, _, _, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads = append(f.threads, name)
	return "thread-1", nil
}

func (f *fakeSurface) SendMessage(_ context.Context, _, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	return f.id(), nil
}

func (f *fakeSurface) SendEmbed(_ context.Context, _ string, embed Embed) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return f.id(), nil
}

func (f *fakeSurface) EditEmbed(_ context.Context, _, _ string, embed Embed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editEmbedErr != nil {
		return f.editEmbedErr
	}
	f.embeds = append(f.embeds, embed)
	return nil
}

func (f *fakeSurface) AppInfo(context.Context) (AppInfo, error) {
	return AppInfo{ID: "app-1", Name: "caravan"}, nil
}

// fakeStore records persisted documents.
type fakeStore struct {
	mu       sync.Mutex
	plans    []PlanRecord
	mappings []PlanMapping
}

func (f *fakeStore) PutPlan(_ context.Context, record PlanRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans = append(f.plans, record)
	return nil
}

func (f *fakeStore) PutMapping(_ context.Context, mapping PlanMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings = append(f.mappings, mapping)
	return nil
}

// testPack is a minimal prompt pack exercising every placeholder.
func testPack() LanguagePack {
	agents := make(map[Agent]AgentPrompts, len(Agents))
	for _, a := range Agents {
		agents[a] = AgentPrompts{
			System: "You are the " + string(a) + " specialist.",
			User:   "Task: $INSTRUCTION\nContext: $CONTEXT\n$AGENT",
		}
	}
	return LanguagePack{
		Orchestrator:        "orchestrate the trip",
		Naming:              "name the thread",
		Synthesis:           "combine: $RESULTS",
		Agent:               "Consolidate these: $RESULTS $AGENT_TRANSPORT",
		TransportAgent:      "transit retry $RETRY_COUNT $MAXIMUM_RETRY_REACHED",
		TransportMaximumTry: "LAST TRY",
		Agents:              agents,
	}
}

// fakeMaps resolves every place to fixed coordinates and every trip to a
// fixed duration.
type fakeMaps struct {
	mu       sync.Mutex
	geocodes []string
	trips    int
}

func (f *fakeMaps) Geocode(_ context.Context, place string, _ Language) (LatLng, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodes = append(f.geocodes, place)
	return LatLng{Lat: 35.0, Lng: 139.0}, nil
}

func (f *fakeMaps) Duration(_ context.Context, _, _ LatLng, mode TravelMode, _ Language) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips++
	if mode == TravelModeDriving {
		return "25 mins", nil
	}
	return "40 mins", nil
}
