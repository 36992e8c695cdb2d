// Package chat implements the ask pipeline: classify the query, retrieve
// context when the classifier routes to documents, and generate the reply.
package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/domain"
	domdoc "github.com/calyptra/mona/internal/domain/document"
	domintent "github.com/calyptra/mona/internal/domain/intent"
	"github.com/calyptra/mona/internal/metrics"
)

// Answer is the outcome of one ask round trip.
type Answer struct {
	Reply      string
	Intent     domintent.Intent
	Confidence float64
	// Fallback is set when the classifier failed and the query was routed
	// to retrieval defensively.
	Fallback  bool
	Retrieved []domdoc.Scored
	Model     string
	Usage     Usage
}

// Usage aggregates token consumption across embedding and generation.
type Usage struct {
	EmbeddingTokens  int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Service orchestrates classification, retrieval and generation.
type Service struct {
	classifier Classifier
	embed      Embedder
	retr       Retriever
	gen        Generator
	topK       int
	logger     *zap.Logger
}

// New creates a chat service. topK bounds how many chunks feed the prompt.
func New(classifier Classifier, embed Embedder, retr Retriever, gen Generator, topK int, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		embed:      embed,
		retr:       retr,
		gen:        gen,
		topK:       topK,
		logger:     logger,
	}
}

// Ask answers a query. sourceID narrows retrieval to one source when
// non-empty. Classifier failures never fail the request: the query falls
// back to the retrieval path, which degrades gracefully for small talk.
func (s *Service) Ask(ctx context.Context, query, sourceID string) (Answer, error) {
	answer := Answer{}

	result, err := s.classifier.Classify(query)
	switch {
	case err == nil:
		answer.Intent = result.Classification
		answer.Confidence = result.Confidence
	case errors.Is(err, domain.ErrInvalidInput):
		return Answer{}, err
	default:
		metrics.ClassifierFallbacksTotal.Inc()
		s.logger.Warn("Classifier failed, falling back to retrieval",
			zap.Error(err))
		answer.Intent = domintent.DocumentRetrieval
		answer.Fallback = true
	}

	var prompt string
	if answer.Intent == domintent.DocumentRetrieval {
		prompt, err = s.buildRetrievalPrompt(ctx, query, sourceID, &answer)
		if err != nil {
			return Answer{}, err
		}
	} else {
		prompt = buildDirectPrompt(query)
	}

	gen, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate reply: %w", err)
	}

	answer.Reply = gen.Reply
	answer.Model = gen.Model
	answer.Usage.PromptTokens = gen.PromptTokens
	answer.Usage.CompletionTokens = gen.CompletionTokens
	answer.Usage.TotalTokens += gen.TotalTokens
	return answer, nil
}

func (s *Service) buildRetrievalPrompt(ctx context.Context, query, sourceID string, answer *Answer) (string, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("vectorize query: %w", err)
	}
	answer.Usage.EmbeddingTokens = emb.TotalTokens
	answer.Usage.TotalTokens += emb.TotalTokens

	hits, err := s.retr.SearchChunks(ctx, emb.Embedding, s.topK, sourceID)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}
	answer.Retrieved = hits

	if len(hits) == 0 {
		s.logger.Debug("No chunks retrieved for query", zap.String("source_id", sourceID))
	}
	return buildRAGPrompt(query, hits), nil
}
