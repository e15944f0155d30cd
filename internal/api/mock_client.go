package api

import (
	"context"
	"iter"
	"sync"

	"github.com/diogo/finassist/internal/models"
)

// FragmentSeq returns a sequence yielding texts in order. When err is non-nil
// it is yielded after the first failAfter fragments and the sequence stops.
func FragmentSeq(texts []string, failAfter int, err error) iter.Seq2[models.Fragment, error] {
	return func(yield func(models.Fragment, error) bool) {
		for i, t := range texts {
			if err != nil && i == failAfter {
				yield(models.Fragment{}, err)
				return
			}
			if !yield(models.Fragment{Text: t}, nil) {
				return
			}
		}
		if err != nil && failAfter >= len(texts) {
			yield(models.Fragment{}, err)
		}
	}
}

// MockChatSession is a scripted ChatSessionInterface for testing
type MockChatSession struct {
	Fragments []string
	Err       error
	FailAfter int
	// Gate, when set, is received from before the first fragment is yielded
	Gate chan struct{}

	mu      sync.Mutex
	Prompts []string
}

var _ ChatSessionInterface = (*MockChatSession)(nil)

func (m *MockChatSession) SendMessageStream(ctx context.Context, prompt string) iter.Seq2[models.Fragment, error] {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	seq := FragmentSeq(m.Fragments, m.FailAfter, m.Err)
	if m.Gate == nil {
		return seq
	}
	return func(yield func(models.Fragment, error) bool) {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			yield(models.Fragment{}, ctx.Err())
			return
		}
		seq(yield)
	}
}

// Calls returns how many turns were sent
func (m *MockChatSession) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	Session    *MockChatSession
	StartErr   error
	Summary    *models.GroundedSummary
	SummaryErr error
	Fragments  []string
	StreamErr  error
	FailAfter  int
	Model      string

	// Call counters/recorders
	mu                    sync.Mutex
	StartCalls            int
	SummaryCalls          int
	StreamCalls           int
	LastQuery             string
	LastPrompt            string
	LastSystemInstruction string
}

var _ ClientInterface = (*MockClient)(nil)

func (m *MockClient) StartConversation(systemInstruction string) (ChatSessionInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
	m.LastSystemInstruction = systemInstruction
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	if m.Session == nil {
		m.Session = &MockChatSession{}
	}
	return m.Session, nil
}

func (m *MockClient) FetchGroundedSummary(ctx context.Context, query string) (*models.GroundedSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCalls++
	m.LastQuery = query
	return m.Summary, m.SummaryErr
}

func (m *MockClient) StreamContent(ctx context.Context, systemInstruction, prompt string) iter.Seq2[models.Fragment, error] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StreamCalls++
	m.LastSystemInstruction = systemInstruction
	m.LastPrompt = prompt
	return FragmentSeq(m.Fragments, m.FailAfter, m.StreamErr)
}

func (m *MockClient) ModelName() string {
	if m.Model == "" {
		return models.DefaultModel.Name
	}
	return m.Model
}

// Counts returns the call counters under the lock
func (m *MockClient) Counts() (start, summary, stream int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.SummaryCalls, m.StreamCalls
}
