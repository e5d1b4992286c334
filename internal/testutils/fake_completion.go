package testutils

import (
	"context"
	"sync"
)

// CompletionCall records the arguments of one Complete call.
type CompletionCall struct {
	RequestText  string
	SystemPrompt string
}

// FakeCompletionClient is a scripted decktypes.CompletionClient.
//
// Replies are consumed in order; once exhausted, Reply is returned. When Err is
// set every call fails with it. If Gate is non-nil each call blocks until a
// value is received from Gate or the context ends.
type FakeCompletionClient struct {
	Reply   string
	Replies []string
	Err     error
	Gate    chan struct{}

	// Started, when non-nil, receives a value as each call begins.
	Started chan struct{}

	mu    sync.Mutex
	calls []CompletionCall
}

// NewFakeCompletionClient returns a fake that always answers reply.
func NewFakeCompletionClient(reply string) *FakeCompletionClient {
	return &FakeCompletionClient{Reply: reply}
}

// ProviderName returns "fake".
func (f *FakeCompletionClient) ProviderName() string {
	return "fake"
}

// Complete records the call and returns the scripted result.
func (f *FakeCompletionClient) Complete(ctx context.Context, requestText, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, CompletionCall{RequestText: requestText, SystemPrompt: systemPrompt})
	reply := f.Reply
	if len(f.Replies) > 0 {
		reply = f.Replies[0]
		f.Replies = f.Replies[1:]
	}
	err := f.Err
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- struct{}{}
	}

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err != nil {
		return "", err
	}
	return reply, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeCompletionClient) Calls() []CompletionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CompletionCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of Complete calls so far.
func (f *FakeCompletionClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
