package llmprocess

import (
	"context"
	"errors"
	"testing"
)

func TestMockChatModelReplaysResponsesThenRepeatsLast(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "first"}, {Text: "second"}}}
	ctx := context.Background()

	for i, want := range []string{"first", "second", "second"} {
		out, err := mock.Chat(ctx, nil, nil)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if out.Text != want {
			t.Fatalf("call %d = %q, want %q", i, out.Text, want)
		}
	}
	if mock.CallCount() != 3 {
		t.Fatalf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestMockChatModelReturnsConfiguredError(t *testing.T) {
	wantErr := errors.New("boom")
	mock := &MockChatModel{Err: wantErr}
	_, err := mock.Chat(context.Background(), nil, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1 (call recorded even on error)", mock.CallCount())
	}
}

func TestMockChatModelRecordsMessagesAndTools(t *testing.T) {
	mock := &MockChatModel{}
	messages := []Message{{Role: RoleUser, Content: "hi"}}
	tools := []ToolSpec{{Name: "noop"}}

	if _, err := mock.Chat(context.Background(), messages, tools); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("Calls = %v, want 1 entry", mock.Calls)
	}
	if mock.Calls[0].Messages[0].Content != "hi" || mock.Calls[0].Tools[0].Name != "noop" {
		t.Fatalf("Calls[0] = %+v, did not record inputs", mock.Calls[0])
	}
}
