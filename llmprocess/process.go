package llmprocess

import (
	"context"
	"fmt"
	"strings"

	"github.com/race-explorer/racegraph/process"
)

// Candidate is one action an LLM-advised process can choose to take.
type Candidate struct {
	// Name is shown to the model as the option's identifier; the model is
	// asked to answer with exactly one Name.
	Name string
	// Value is the payload carried by process.Value when Name is chosen
	// and Terminal is false.
	Value any
	// Terminal marks a Candidate that ends the process: Step returns
	// Returned with Value as the process's return value instead of
	// Yielded.
	Terminal bool
}

// Chooser supplies the menu of Candidates available at a given step. It is
// called fresh on every Step so a scenario can narrow its options as the
// conversation advances (e.g. dropping a lock-acquire option once the lock
// is already held).
type Chooser func(step int, history []Message) []Candidate

// Process is a process.Process whose next-label decision is delegated to a
// ChatModel: at each Step it presents the live Chooser's Candidates as a
// multiple-choice prompt and asks the model to pick one by Name.
//
// This is the canonical non-deterministic, external-I/O step provider: unlike
// providers.InProc/Worker, which run caller-supplied Go code, Process's
// outcome depends on what the backing LLM returns, and a model choosing an
// unrecognized option is treated as a Raised step rather than retried.
type Process struct {
	model        ChatModel
	systemPrompt string
	choose       Chooser

	history   []Message
	step      int
	cancelled bool
	done      bool
}

// New returns a Process that asks model to choose among choose's candidates
// at every step, with systemPrompt framing the task once at the start of the
// conversation.
func New(model ChatModel, systemPrompt string, choose Chooser) *Process {
	return &Process{model: model, systemPrompt: systemPrompt, choose: choose}
}

// Step implements process.Process.
func (p *Process) Step(ctx context.Context) (process.StepResult, error) {
	if p.cancelled || p.done {
		return process.StepResult{Kind: process.Cancelled}, nil
	}

	candidates := p.choose(p.step, p.history)
	if len(candidates) == 0 {
		p.done = true
		return process.StepResult{Kind: process.Returned, Value: nil}, nil
	}

	messages := make([]Message, 0, len(p.history)+2)
	if p.systemPrompt != "" && len(p.history) == 0 {
		messages = append(messages, Message{Role: RoleSystem, Content: p.systemPrompt})
	}
	messages = append(messages, p.history...)
	messages = append(messages, Message{Role: RoleUser, Content: renderPrompt(candidates)})

	out, err := p.model.Chat(ctx, messages, nil)
	if err != nil {
		p.done = true
		return process.StepResult{Kind: process.Raised, Value: err}, nil
	}

	chosen, ok := match(candidates, out.Text)
	if !ok {
		p.done = true
		return process.StepResult{Kind: process.Raised, Value: fmt.Errorf("llmprocess: model chose unrecognized candidate %q", out.Text)}, nil
	}

	p.history = append(messages, Message{Role: RoleAssistant, Content: out.Text})
	p.step++

	if chosen.Terminal {
		p.done = true
		return process.StepResult{Kind: process.Returned, Value: chosen.Value}, nil
	}
	return process.StepResult{Kind: process.Yielded, Value: process.Value{V: chosen.Value}}, nil
}

// Cancel implements process.Process. Idempotent; the next Step resolves to
// Cancelled regardless of whether it was already in flight.
func (p *Process) Cancel() {
	p.cancelled = true
}

func renderPrompt(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Choose exactly one of the following options by replying with its name alone:\n")
	for _, c := range candidates {
		b.WriteString("- ")
		b.WriteString(c.Name)
		b.WriteString("\n")
	}
	return b.String()
}

// match accepts an exact reply first, falling back to substring containment
// so a model that answers in a full sentence ("I'll pick acquire-a.") still
// resolves, provided exactly naming the candidate is unambiguous.
func match(candidates []Candidate, text string) (Candidate, bool) {
	trimmed := strings.TrimSpace(text)
	for _, c := range candidates {
		if c.Name == trimmed {
			return c, true
		}
	}
	var found []Candidate
	for _, c := range candidates {
		if strings.Contains(trimmed, c.Name) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Candidate{}, false
}
