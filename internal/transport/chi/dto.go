package chi

import (
	"time"

	domdoc "github.com/calyptra/mona/internal/domain/document"
	chatuc "github.com/calyptra/mona/internal/usecase/chat"
)

// Error codes returned to clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeDocumentNotFound    = "document_not_found"
	codeNotFound            = "not_found"
	codeEmbeddingProvider   = "embedding_provider_error"
	codeLLMProvider         = "llm_provider_error"
	codeClassificationError = "classification_error"
	codeInternalError       = "internal_error"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type chatRequest struct {
	Query    string `json:"query"`
	SourceID string `json:"source_id,omitempty"`
}

type classifyRequest struct {
	Query string `json:"query"`
}

type ingestRequest struct {
	SourceID string            `json:"source_id"`
	Name     string            `json:"name,omitempty"`
	Text     string            `json:"text"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type updateMetaRequest struct {
	Meta map[string]string `json:"meta"`
}

type usageResponse struct {
	EmbeddingTokens  int `json:"embedding_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type retrievedChunk struct {
	SourceID string            `json:"source_id"`
	SplitID  int               `json:"split_id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type chatResponse struct {
	Reply          string           `json:"reply"`
	Classification string           `json:"classification"`
	Confidence     float64          `json:"confidence"`
	Fallback       bool             `json:"fallback,omitempty"`
	Model          string           `json:"model,omitempty"`
	Sources        []retrievedChunk `json:"sources"`
	Usage          usageResponse    `json:"usage"`
}

func chatResponseFromAnswer(a chatuc.Answer) chatResponse {
	resp := chatResponse{
		Reply:          a.Reply,
		Classification: string(a.Intent),
		Confidence:     a.Confidence,
		Fallback:       a.Fallback,
		Model:          a.Model,
		Sources:        make([]retrievedChunk, 0, len(a.Retrieved)),
		Usage: usageResponse{
			EmbeddingTokens:  a.Usage.EmbeddingTokens,
			PromptTokens:     a.Usage.PromptTokens,
			CompletionTokens: a.Usage.CompletionTokens,
			TotalTokens:      a.Usage.TotalTokens,
		},
	}
	for _, hit := range a.Retrieved {
		resp.Sources = append(resp.Sources, retrievedChunk{
			SourceID: hit.Document.SourceID(),
			SplitID:  hit.Document.SplitID(),
			Content:  hit.Document.Content(),
			Score:    hit.Score,
			Meta:     hit.Document.Meta(),
		})
	}
	return resp
}

type sourceResponse struct {
	SourceID   string            `json:"source_id"`
	Name       string            `json:"name,omitempty"`
	ChunkCount int               `json:"chunk_count"`
	Meta       map[string]string `json:"meta,omitempty"`
	IngestedAt time.Time         `json:"ingested_at"`
}

func sourceToResponse(src domdoc.Source) sourceResponse {
	return sourceResponse{
		SourceID:   src.SourceID,
		Name:       src.Name,
		ChunkCount: src.ChunkCount,
		Meta:       src.Meta,
		IngestedAt: src.IngestedAt,
	}
}

type sourceListResponse struct {
	Items []sourceResponse `json:"items"`
	Total int64            `json:"total"`
}

type chunkResponse struct {
	ID       string            `json:"id"`
	SourceID string            `json:"source_id"`
	SplitID  int               `json:"split_id"`
	Content  string            `json:"content"`
	Meta     map[string]string `json:"meta,omitempty"`
}

func chunkToResponse(d domdoc.Document) chunkResponse {
	return chunkResponse{
		ID:       d.ID(),
		SourceID: d.SourceID(),
		SplitID:  d.SplitID(),
		Content:  d.Content(),
		Meta:     d.Meta(),
	}
}

type deleteResponse struct {
	SourceID      string `json:"source_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

type infoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Rules   int    `json:"classifier_rules"`
}
