package llmprocess

import (
	"context"
	"testing"

	"github.com/race-explorer/racegraph/process"
)

func twoChoiceChooser(step int, history []Message) []Candidate {
	if step >= 2 {
		return nil
	}
	return []Candidate{
		{Name: "acquire-a", Value: "acquire-a"},
		{Name: "acquire-b", Value: "acquire-b", Terminal: step == 1},
	}
}

func TestProcessYieldsChosenCandidate(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "acquire-a"}}}
	p := New(mock, "you are exploring a lock race", twoChoiceChooser)

	r, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Kind != process.Yielded {
		t.Fatalf("Kind = %v, want Yielded", r.Kind)
	}
	v, ok := r.Value.(process.Value)
	if !ok || v.V != "acquire-a" {
		t.Fatalf("Value = %+v, want process.Value{V: acquire-a}", r.Value)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestProcessTerminalCandidateReturns(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{
		{Text: "acquire-a"},
		{Text: "acquire-b"},
	}}
	p := New(mock, "", twoChoiceChooser)

	if _, err := p.Step(context.Background()); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	r2, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if r2.Kind != process.Returned || r2.Value != "acquire-b" {
		t.Fatalf("Step 2 = %+v, want Returned(acquire-b)", r2)
	}
}

func TestProcessUnrecognizedReplyRaises(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "do something else entirely"}}}
	p := New(mock, "", twoChoiceChooser)

	r, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Kind != process.Raised {
		t.Fatalf("Kind = %v, want Raised", r.Kind)
	}
}

func TestProcessModelErrorRaises(t *testing.T) {
	wantErr := "rate limited"
	mock := &MockChatModel{Err: &mockErr{wantErr}}
	p := New(mock, "", twoChoiceChooser)

	r, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Kind != process.Raised {
		t.Fatalf("Kind = %v, want Raised", r.Kind)
	}
}

func TestProcessEmptyChoiceSetReturnsNil(t *testing.T) {
	mock := &MockChatModel{}
	p := New(mock, "", func(step int, history []Message) []Candidate { return nil })

	r, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Kind != process.Returned || r.Value != nil {
		t.Fatalf("Step = %+v, want Returned(nil)", r)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("CallCount = %d, want 0 (model should not be consulted)", mock.CallCount())
	}
}

func TestProcessCancelShortCircuits(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "acquire-a"}}}
	p := New(mock, "", twoChoiceChooser)
	p.Cancel()

	r, err := p.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.Kind != process.Cancelled {
		t.Fatalf("Kind = %v, want Cancelled", r.Kind)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("CallCount = %d, want 0", mock.CallCount())
	}
}

type mockErr struct{ msg string }

func (e *mockErr) Error() string { return e.msg }
