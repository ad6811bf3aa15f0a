package structure

import (
	"context"
	"errors"
	"testing"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/state"
)

type scriptedLLM struct {
	replies []string
	calls   int
}

func (s *scriptedLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("connection refused")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, "", opts...)
}

func testState() *state.ConstructorState {
	st := state.NewConstructorState("sess-1", "creator-1")
	st.Info = state.CourseInfo{Title: "Go Basics", Description: "Learn Go", Difficulty: "beginner"}
	st.Chunks = []state.ContentChunk{
		{ID: "c1", Text: "Goroutines are lightweight threads.", SourceFile: "f1"},
		{ID: "c2", Text: "Channels move values between goroutines.", SourceFile: "f1"},
	}
	return st
}

func TestPipelineInvoke(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		"```json\n[{\"title\": \"Goroutines\", \"description\": \"Concurrency basics\", \"concepts\": [\"go keyword\"]}, {\"title\": \"Channels\", \"description\": \"Communication\", \"concepts\": [\"make\"]}]\n```",
		"```json\n[{\"title\": \"Concurrency\", \"description\": \"Unit one\", \"topic_titles\": [\"Goroutines\", \"Channels\"]}]\n```",
		"```json\n{\"Goroutines\": [], \"Channels\": [\"Goroutines\"]}\n```",
		"```json\n[\"Add an exercises section\"]\n```",
	}}

	p := NewPipeline(provider, nil, nil)
	update, err := p.Invoke(context.Background(), testState())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	cs := update.Structure
	if cs == nil {
		t.Fatal("no structure in update")
	}
	if len(cs.Units) != 1 || len(cs.Topics) != 2 {
		t.Fatalf("units = %d, topics = %d", len(cs.Units), len(cs.Topics))
	}
	for _, topic := range cs.Topics {
		if topic.ID == "" {
			t.Error("topic without id")
		}
		if topic.UnitID != cs.Units[0].ID {
			t.Errorf("topic %s not assigned to unit", topic.Title)
		}
	}
	if len(update.Errors) != 0 {
		t.Errorf("errors = %v", update.Errors)
	}
	if cs.QualityScore != 1.0 {
		t.Errorf("quality = %v, want 1.0 for a clean structure", cs.QualityScore)
	}
	if update.Progress != 0.75 {
		t.Errorf("progress = %v, want 0.75", update.Progress)
	}
}

func TestPipelineCycleBecomesError(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		"```json\n[{\"title\": \"A\", \"description\": \"a\", \"concepts\": []}, {\"title\": \"B\", \"description\": \"b\", \"concepts\": []}]\n```",
		"```json\n[{\"title\": \"Unit\", \"description\": \"u\", \"topic_titles\": [\"A\", \"B\"]}]\n```",
		"```json\n{\"A\": [\"B\"], \"B\": [\"A\"]}\n```",
		"```json\n[]\n```",
	}}

	p := NewPipeline(provider, nil, nil)
	update, err := p.Invoke(context.Background(), testState())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(update.Errors) == 0 {
		t.Fatal("cycle did not surface as an error")
	}
	if update.Structure.QualityScore >= 1.0 {
		t.Errorf("quality = %v, want penalty applied", update.Structure.QualityScore)
	}
}

func TestPipelineUnitFallback(t *testing.T) {
	// Topic detection succeeds; every later call fails. Grouping must
	// degrade to a single unit, prerequisites to an empty map.
	provider := &scriptedLLM{replies: []string{
		"```json\n[{\"title\": \"Only Topic\", \"description\": \"d\", \"concepts\": []}]\n```",
	}}

	p := NewPipeline(provider, nil, nil)
	update, err := p.Invoke(context.Background(), testState())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(update.Structure.Units) != 1 {
		t.Fatalf("units = %d, want fallback single unit", len(update.Structure.Units))
	}
	if len(update.Errors) < 2 {
		t.Errorf("errors = %v, want grouping and prerequisite failures recorded", update.Errors)
	}
}

func TestPipelineNoChunks(t *testing.T) {
	p := NewPipeline(&scriptedLLM{}, nil, nil)
	st := state.NewConstructorState("sess-1", "creator-1")

	if _, err := p.Invoke(context.Background(), st); err == nil {
		t.Fatal("expected error without chunks")
	}
}

func TestPipelineTopicDetectionFailure(t *testing.T) {
	p := NewPipeline(&scriptedLLM{replies: []string{"no json here", "still no json"}}, nil, nil)

	if _, err := p.Invoke(context.Background(), testState()); err == nil {
		t.Fatal("expected error when topic detection yields no JSON")
	}
}
