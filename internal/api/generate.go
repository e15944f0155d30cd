package api

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
)

// Operation names carried by RequestFailedError
const (
	OpChatStream    = "chat.stream"
	OpContentStream = "content.stream"
	OpNewsSummary   = "news.summary"
)

var (
	errNoContent      = errors.New("no content in response")
	errStreamConsumed = errors.New("stream already consumed")
)

// FetchGroundedSummary sends query once with Google Search grounding enabled
// and returns the answer with its raw citations.
func (c *Client) FetchGroundedSummary(ctx context.Context, query string) (*models.GroundedSummary, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	log := c.requestLogger(OpNewsSummary)
	start := time.Now()
	log.Debug("request started")

	contents := []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)}
	cfg := generateConfig("", &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})

	resp, err := c.gen.GenerateContent(ctx, c.model.Name, contents, cfg)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return nil, apierrors.NewRequestFailedError(OpNewsSummary, err)
	}

	text := responseText(resp)
	if text == "" {
		log.Error("request failed", zap.Error(errNoContent))
		return nil, apierrors.NewRequestFailedError(OpNewsSummary, errNoContent)
	}

	summary := &models.GroundedSummary{
		Text:    text,
		Sources: groundingSources(resp),
	}

	log.Debug("request completed",
		zap.Int("sources", len(summary.Sources)),
		zap.Duration("elapsed", time.Since(start)))

	return summary, nil
}

// StreamContent issues a one-off streaming call with no conversation history
func (c *Client) StreamContent(ctx context.Context, systemInstruction, prompt string) iter.Seq2[models.Fragment, error] {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.streamContents(ctx, OpContentStream, contents, generateConfig(systemInstruction), nil)
}

// streamContents is the single streaming path. The returned sequence may be
// ranged over once; onDone receives the full reply after a clean finish.
func (c *Client) streamContents(ctx context.Context, op string, contents []*genai.Content,
	cfg *genai.GenerateContentConfig, onDone func(reply string)) iter.Seq2[models.Fragment, error] {
	var consumed atomic.Bool

	return func(yield func(models.Fragment, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(models.Fragment{}, apierrors.NewRequestFailedError(op, errStreamConsumed))
			return
		}

		ctx, cancel := c.withTimeout(ctx)
		defer cancel()

		log := c.requestLogger(op)
		start := time.Now()
		log.Debug("stream started", zap.Int("contents", len(contents)))

		var reply strings.Builder
		fragments := 0

		for resp, err := range c.gen.GenerateContentStream(ctx, c.model.Name, contents, cfg) {
			if err != nil {
				log.Error("stream failed", zap.Int("fragments", fragments), zap.Error(err))
				yield(models.Fragment{}, apierrors.NewRequestFailedError(op, err))
				return
			}

			text := responseText(resp)
			if text == "" {
				continue
			}
			reply.WriteString(text)
			fragments++

			if !yield(models.Fragment{Text: text}, nil) {
				log.Debug("stream abandoned by consumer", zap.Int("fragments", fragments))
				return
			}
		}

		if fragments == 0 {
			log.Error("stream failed", zap.Error(errNoContent))
			yield(models.Fragment{}, apierrors.NewRequestFailedError(op, errNoContent))
			return
		}

		log.Debug("stream completed",
			zap.Int("fragments", fragments),
			zap.Duration("elapsed", time.Since(start)))

		if onDone != nil {
			onDone(reply.String())
		}
	}
}

func (c *Client) requestLogger(op string) *zap.Logger {
	return c.logger.With(
		zap.String("op", op),
		zap.String("request_id", uuid.NewString()),
		zap.String("model", c.model.Name),
	)
}

// responseText concatenates the non-thought text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// groundingSources extracts web citations from the first candidate. The list
// is returned as-is; cleaning is left to the sources package.
func groundingSources(resp *genai.GenerateContentResponse) []models.WebSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var out []models.WebSource
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, models.WebSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return out
}
