package ai

import (
	"context"
	"strings"
	"testing"
)

func TestContextPrompt(t *testing.T) {
	got := ContextPrompt("total 0\n", "what does this mean?")

	if !strings.HasPrefix(got, "Previous output:\ntotal 0\n") {
		t.Errorf("Expected previous output first, got %q", got)
	}
	if !strings.HasSuffix(got, "New prompt:\nwhat does this mean?") {
		t.Errorf("Expected new prompt last, got %q", got)
	}
}

func TestProvider_Query(t *testing.T) {
	var p Provider = &mockProvider{text: "COMMAND: ls\nEXPLANATION: list\nSAFE: yes"}

	reply, err := p.Query(context.Background(), Request{Prompt: "list files", Model: "test/model"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if reply.Model != "test/model" {
		t.Errorf("Expected model echoed back, got %q", reply.Model)
	}

	parsed := ParseResponse(reply.Text)
	if parsed.RunnableCommand() != "ls" {
		t.Errorf("Expected command 'ls', got %q", parsed.RunnableCommand())
	}
}

// mockProvider is a canned Provider.
type mockProvider struct {
	text string
}

func (m *mockProvider) Query(ctx context.Context, req Request) (*Reply, error) {
	return &Reply{Text: m.text, Model: req.Model}, nil
}
