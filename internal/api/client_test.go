package api

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"google.golang.org/genai"

	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeGenerator records calls and replays scripted responses
type fakeGenerator struct {
	mu sync.Mutex

	chunks    []*genai.GenerateContentResponse
	streamErr error
	errAfter  int
	block     bool

	resp *genai.GenerateContentResponse
	err  error

	streamCalls   int
	generateCalls int
	lastModel     string
	lastContents  []*genai.Content
	lastConfig    *genai.GenerateContentConfig
}

func (f *fakeGenerator) record(model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) {
	f.lastModel = model
	f.lastContents = contents
	f.lastConfig = cfg
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	f.record(model, contents, cfg)
	return f.resp, f.err
}

func (f *fakeGenerator) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.mu.Lock()
	f.streamCalls++
	f.record(model, contents, cfg)
	chunks, streamErr, errAfter, block := f.chunks, f.streamErr, f.errAfter, f.block
	f.mu.Unlock()

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		if block {
			<-ctx.Done()
			yield(nil, ctx.Err())
			return
		}
		for i, c := range chunks {
			if streamErr != nil && i == errAfter {
				yield(nil, streamErr)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if streamErr != nil && errAfter >= len(chunks) {
			yield(nil, streamErr)
		}
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func chunksOf(texts ...string) []*genai.GenerateContentResponse {
	out := make([]*genai.GenerateContentResponse, len(texts))
	for i, t := range texts {
		out[i] = textResponse(t)
	}
	return out
}

func newTestClient(t *testing.T, gen *fakeGenerator, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{withGenerator(gen), WithLogger(zap.NewNop())}, opts...)
	c, err := NewClient(context.Background(), "test-key", opts...)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func collect(t *testing.T, seq iter.Seq2[models.Fragment, error]) ([]string, error) {
	t.Helper()
	var got []string
	for f, err := range seq {
		if err != nil {
			return got, err
		}
		got = append(got, f.Text)
	}
	return got, nil
}

func TestNewClient_NotConfigured(t *testing.T) {
	for _, key := range []string{"", "   "} {
		gen := &fakeGenerator{}
		c, err := NewClient(context.Background(), key, withGenerator(gen))
		if c != nil {
			t.Errorf("NewClient(%q) returned a client", key)
		}
		if !apierrors.IsNotConfigured(err) {
			t.Errorf("NewClient(%q) error = %v, want NotConfigured", key, err)
		}
		if gen.streamCalls+gen.generateCalls != 0 {
			t.Error("no call may be issued without a credential")
		}
	}
}

func TestStartChat_NilClient(t *testing.T) {
	var c *Client
	s, err := c.StartChat("system")
	if s != nil {
		t.Error("expected nil session")
	}
	if !apierrors.IsNotConfigured(err) {
		t.Errorf("StartChat() error = %v, want NotConfigured", err)
	}

	if _, err := c.StartConversation("system"); !apierrors.IsNotConfigured(err) {
		t.Errorf("StartConversation() error = %v, want NotConfigured", err)
	}
}

func TestClientOptions(t *testing.T) {
	gen := &fakeGenerator{}

	c := newTestClient(t, gen)
	if c.model != models.DefaultModel {
		t.Errorf("default model = %s", c.ModelName())
	}

	c = newTestClient(t, gen, WithModel(models.Model25Pro), WithTimeout(time.Second))
	if c.ModelName() != "gemini-2.5-pro" {
		t.Errorf("ModelName() = %s", c.ModelName())
	}
	if c.timeout != time.Second {
		t.Errorf("timeout = %v", c.timeout)
	}

	c = newTestClient(t, gen, WithModel(models.ModelUnspecified))
	if c.model != models.DefaultModel {
		t.Error("an unspecified model must not replace the default")
	}
}

func TestChatSession_SendMessageStream(t *testing.T) {
	gen := &fakeGenerator{chunks: chunksOf("Mutual ", "", "funds ", "pool money.")}
	c := newTestClient(t, gen)

	s, err := c.StartChat("be helpful")
	if err != nil {
		t.Fatalf("StartChat() error: %v", err)
	}

	got, err := collect(t, s.SendMessageStream(context.Background(), "What are mutual funds?"))
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}

	want := []string{"Mutual ", "funds ", "pool money."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	if gen.streamCalls != 1 {
		t.Errorf("streamCalls = %d, want 1", gen.streamCalls)
	}
	if gen.lastModel != models.DefaultModel.Name {
		t.Errorf("model = %s", gen.lastModel)
	}
	if gen.lastConfig.SystemInstruction == nil || gen.lastConfig.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Error("system instruction not sent")
	}
	if s.Turns() != 1 {
		t.Errorf("Turns() = %d, want 1", s.Turns())
	}

	// Second turn carries the first one as history
	gen.chunks = chunksOf("ETFs trade on exchanges.")
	if _, err := collect(t, s.SendMessageStream(context.Background(), "And ETFs?")); err != nil {
		t.Fatalf("second stream error: %v", err)
	}
	if len(gen.lastContents) != 3 {
		t.Fatalf("contents = %d, want 3", len(gen.lastContents))
	}
	if gen.lastContents[1].Role != genai.RoleModel || gen.lastContents[1].Parts[0].Text != "Mutual funds pool money." {
		t.Errorf("history reply = %+v", gen.lastContents[1].Parts[0])
	}
	if s.Turns() != 2 {
		t.Errorf("Turns() = %d, want 2", s.Turns())
	}
}

func TestChatSession_StreamFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	gen := &fakeGenerator{chunks: chunksOf("a", "b", "c"), streamErr: cause, errAfter: 2}
	c := newTestClient(t, gen)
	s, _ := c.StartChat("")

	got, err := collect(t, s.SendMessageStream(context.Background(), "hi"))

	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("fragments before failure (-want +got):\n%s", diff)
	}
	if !apierrors.IsRequestFailed(err) {
		t.Fatalf("error = %v, want RequestFailed", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not preserved")
	}
	var rf *apierrors.RequestFailedError
	if errors.As(err, &rf) && rf.Op != OpChatStream {
		t.Errorf("Op = %s", rf.Op)
	}
	if s.Turns() != 0 {
		t.Error("failed turn must not enter history")
	}
	if gen.lastConfig.SystemInstruction != nil {
		t.Error("empty system instruction should not be sent")
	}
}

func TestStream_SinglePass(t *testing.T) {
	gen := &fakeGenerator{chunks: chunksOf("one")}
	c := newTestClient(t, gen)
	s, _ := c.StartChat("")

	seq := s.SendMessageStream(context.Background(), "hi")
	if _, err := collect(t, seq); err != nil {
		t.Fatalf("first pass error: %v", err)
	}

	got, err := collect(t, seq)
	if len(got) != 0 {
		t.Errorf("second pass yielded %v", got)
	}
	if !apierrors.IsRequestFailed(err) || !errors.Is(err, errStreamConsumed) {
		t.Errorf("second pass error = %v", err)
	}
	if gen.streamCalls != 1 {
		t.Errorf("streamCalls = %d, want 1", gen.streamCalls)
	}
}

func TestStream_NoContent(t *testing.T) {
	gen := &fakeGenerator{chunks: chunksOf("", "")}
	c := newTestClient(t, gen)

	_, err := collect(t, c.StreamContent(context.Background(), "", "hi"))
	if !errors.Is(err, errNoContent) || !apierrors.IsRequestFailed(err) {
		t.Errorf("error = %v, want RequestFailed(no content)", err)
	}
}

func TestStream_ConsumerStopsEarly(t *testing.T) {
	gen := &fakeGenerator{chunks: chunksOf("a", "b", "c")}
	c := newTestClient(t, gen)
	s, _ := c.StartChat("")

	for f, err := range s.SendMessageStream(context.Background(), "hi") {
		if err != nil || f.Text != "a" {
			t.Fatalf("unexpected first fragment %q, %v", f.Text, err)
		}
		break
	}

	if s.Turns() != 0 {
		t.Error("abandoned turn must not enter history")
	}
}

func TestStream_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	c := newTestClient(t, gen, WithTimeout(20*time.Millisecond))

	_, err := collect(t, c.StreamContent(context.Background(), "", "hi"))
	if !apierrors.IsRequestFailed(err) {
		t.Fatalf("error = %v, want RequestFailed", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded cause", err)
	}
}

func TestStreamContent(t *testing.T) {
	gen := &fakeGenerator{chunks: chunksOf("## Asset", " Allocation")}
	c := newTestClient(t, gen)

	got, err := collect(t, c.StreamContent(context.Background(), "system", "portfolio please"))
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if diff := cmp.Diff([]string{"## Asset", " Allocation"}, got); diff != "" {
		t.Errorf("fragments (-want +got):\n%s", diff)
	}
	if len(gen.lastContents) != 1 || gen.lastContents[0].Parts[0].Text != "portfolio please" {
		t.Error("prompt not sent as the only content")
	}
	if gen.lastConfig.SystemInstruction.Parts[0].Text != "system" {
		t.Error("system instruction not sent")
	}
}

func TestFetchGroundedSummary(t *testing.T) {
	resp := textResponse("Markets rallied.")
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A"}},
			nil,
			{},
			{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A again"}},
			{Web: &genai.GroundingChunkWeb{URI: "", Title: "No URI"}},
		},
	}
	gen := &fakeGenerator{resp: resp}
	c := newTestClient(t, gen)

	got, err := c.FetchGroundedSummary(context.Background(), "news please")
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	want := &models.GroundedSummary{
		Text: "Markets rallied.",
		Sources: []models.WebSource{
			{URI: "https://a.example", Title: "A"},
			{URI: "https://a.example", Title: "A again"},
			{URI: "", Title: "No URI"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if gen.generateCalls != 1 {
		t.Errorf("generateCalls = %d, want 1", gen.generateCalls)
	}
	if len(gen.lastConfig.Tools) != 1 || gen.lastConfig.Tools[0].GoogleSearch == nil {
		t.Error("google search grounding not enabled")
	}
}

func TestFetchGroundedSummary_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport error", &fakeGenerator{err: errors.New("503")}},
		{"no candidates", &fakeGenerator{resp: &genai.GenerateContentResponse{}}},
		{"empty text", &fakeGenerator{resp: textResponse("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.gen)
			got, err := c.FetchGroundedSummary(context.Background(), "q")
			if got != nil {
				t.Error("expected nil summary")
			}
			if !apierrors.IsRequestFailed(err) {
				t.Errorf("error = %v, want RequestFailed", err)
			}
		})
	}
}

func TestResponseText_SkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Answer"},
				nil,
				{Text: "."},
			}},
		}},
	}
	if got := responseText(resp); got != "Answer." {
		t.Errorf("responseText() = %q", got)
	}
	if responseText(nil) != "" {
		t.Error("nil response should have no text")
	}
}
