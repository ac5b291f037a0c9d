package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/prodask/internal/domain"
	"github.com/kailas-cloud/prodask/internal/domain/query/evidence"
)

type mockCompleter struct {
	out    string
	err    error
	system string
	user   string
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.system = system
	m.user = user
	return m.out, m.err
}

func payload() evidence.Payload {
	return evidence.Payload{Snippets: []evidence.Snippet{
		{DocumentID: "d1", Source: domain.SourceSpec, Text: "The UltraBook has 16GB RAM."},
		{DocumentID: "d2", Source: domain.SourceReview, Text: "Great battery life."},
	}}
}

func TestGenerate_PromptCarriesEvidenceAndHistory(t *testing.T) {
	c := &mockCompleter{out: " It has 16GB RAM. "}
	svc := New(c, 3)

	history := domain.History{{UserQuery: "Tell me about the UltraBook", Answer: "Sure."}}
	answer, err := svc.Generate(context.Background(), "How much RAM?", payload(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "It has 16GB RAM." {
		t.Errorf("answer must be trimmed, got %q", answer)
	}
	if c.user != "How much RAM?" {
		t.Errorf("user message = %q, want the query", c.user)
	}
	for _, want := range []string{
		"The UltraBook has 16GB RAM.",
		"Great battery life.",
		"User: Tell me about the UltraBook",
	} {
		if !strings.Contains(c.system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if !strings.Contains(c.system, "---") {
		t.Error("snippets must be separated in the prompt")
	}
}

func TestGenerate_ErrorWrapsSentinel(t *testing.T) {
	c := &mockCompleter{err: errors.New("llm down")}
	svc := New(c, 3)

	_, err := svc.Generate(context.Background(), "q", payload(), nil)
	if !errors.Is(err, domain.ErrGenerationService) {
		t.Fatalf("expected ErrGenerationService, got %v", err)
	}
}
