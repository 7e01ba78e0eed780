package cairn_test

import (
	"context"
	"testing"

	"github.com/cairnlabs/cairn"
	"github.com/cairnlabs/cairn/pkg/adapters/memory"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

func TestEngine_Integration(t *testing.T) {
	docs := memory.NewDocStore()
	engine, err := cairn.New(cairn.WithDocumentStore(docs))
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	s := engine.Start("test")
	if s.ID != "test" {
		t.Errorf("Expected session id 'test', got %q", s.ID)
	}
	if s.Phase != domain.PhaseDiscovery {
		t.Errorf("Expected discovery phase, got %q", s.Phase)
	}
	if len(s.Sections) != 8 {
		t.Errorf("Expected 8 baseline sections, got %d", len(s.Sections))
	}

	ctx := context.Background()
	s, err = engine.HandleMessage(ctx, s, "We help rural clinics keep vaccines cold.")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if len(s.Turns) < 2 {
		t.Fatalf("Expected user and responder turns, got %d", len(s.Turns))
	}
	if s.Turns[0].Role != domain.RoleUser {
		t.Errorf("First turn should be the user message, got %s", s.Turns[0].Role)
	}
	last := s.Turns[len(s.Turns)-1]
	if last.Role != domain.RoleResponder {
		t.Errorf("Last turn should be a responder reply, got %s", last.Role)
	}
	if last.Agent == "" {
		t.Error("Responder turn should name its agent")
	}
	if s.ActiveAgent == "" {
		t.Error("ActiveAgent should be set after a turn")
	}
}

func TestEngine_ConversationMakesProgress(t *testing.T) {
	engine, err := cairn.New()
	if err != nil {
		t.Fatal(err)
	}

	s := engine.Start("progress")
	messages := []string{
		"We exist to make rural logistics dependable for smallholder farms.",
		"Our market is the northeast corridor, focused on refrigerated goods.",
		"We win because our dealer network gives us last-mile coverage.",
		"We need cold-chain certification and route planning capability.",
	}

	ctx := context.Background()
	for _, msg := range messages {
		s, err = engine.HandleMessage(ctx, s, msg)
		if err != nil {
			t.Fatalf("HandleMessage(%q) failed: %v", msg, err)
		}
	}

	if s.Completeness() == 0 {
		t.Error("Expected some sections done after four substantive messages")
	}
	if len(s.Turns) < 8 {
		t.Errorf("Expected a reply per message, got %d turns", len(s.Turns))
	}
}

func TestNew_ResponderOverride(t *testing.T) {
	engine, err := cairn.New(cairn.WithResponder(stubResponder{id: "custom"}))
	if err != nil {
		t.Fatal(err)
	}

	ids := engine.Responders()
	found := false
	for _, id := range ids {
		if id == "custom" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected override responder in %v", ids)
	}
	if len(ids) != 6 {
		t.Errorf("Expected the default five plus the override, got %v", ids)
	}
}

func TestNew_EmptyResponderSetRejected(t *testing.T) {
	if _, err := cairn.New(cairn.WithResponders(map[string]ports.Responder{})); err == nil {
		t.Fatal("Expected an error for an empty responder set")
	}
}

func TestStart_MintsUUIDWhenEmpty(t *testing.T) {
	engine, err := cairn.New()
	if err != nil {
		t.Fatal(err)
	}

	s := engine.Start("")
	if s.ID == "" {
		t.Fatal("Expected a generated session id")
	}
	other := engine.Start("")
	if other.ID == s.ID {
		t.Error("Generated ids must be unique")
	}
}

func TestInspect_DescribesGraph(t *testing.T) {
	engine, err := cairn.New()
	if err != nil {
		t.Fatal(err)
	}

	nodes := engine.Inspect()
	if len(nodes) != 6 {
		t.Fatalf("Expected 6 graph nodes, got %d", len(nodes))
	}
	if nodes[0].Name != domain.NodeProgressUpdate {
		t.Errorf("Expected the graph to begin at %q, got %q", domain.NodeProgressUpdate, nodes[0].Name)
	}
}

type stubResponder struct {
	id string
}

func (r stubResponder) ID() string {
	return r.id
}

func (r stubResponder) Process(ctx context.Context, s domain.Session, latestUserText string) (domain.Session, error) {
	s.AppendTurn(domain.RoleResponder, "stub reply", r.id)
	return s, nil
}
