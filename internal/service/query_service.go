package service

import (
	"context"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/vectorindex"
)

type IQueryService interface {
	// Search embeds the query and returns the raw nearest chunks without
	// generation. Useful for debugging retrieval quality.
	Search(ctx context.Context, chatbotId uuid.UUID, query string, k int) (*dto.QueryResponse, error)
}

type queryService struct {
	chatbotService    IChatBotService
	embeddingProvider embedding.Provider
	index             vectorindex.Index
}

func NewQueryService(
	chatbotService IChatBotService,
	embeddingProvider embedding.Provider,
	index vectorindex.Index,
) IQueryService {
	return &queryService{
		chatbotService:    chatbotService,
		embeddingProvider: embeddingProvider,
		index:             index,
	}
}

func (s *queryService) Search(ctx context.Context, chatbotId uuid.UUID, query string, k int) (*dto.QueryResponse, error) {
	if query == "" {
		return nil, apperr.Invalid("query must not be empty")
	}
	if k <= 0 {
		k = constant.SearchTopK
	}

	if _, err := s.chatbotService.VerifyActive(ctx, chatbotId); err != nil {
		return nil, err
	}

	vector, err := s.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	collection := vectorindex.CollectionName(chatbotId.String())
	results, err := s.index.Search(ctx, collection, vector, k)
	if err != nil {
		return nil, err
	}

	items := make([]dto.QueryResultItem, len(results))
	for i, result := range results {
		items[i] = dto.QueryResultItem{
			Text:       result.Payload.Text,
			Score:      result.Score,
			ChunkIndex: result.Payload.ChunkIndex,
			FilePath:   result.Payload.FilePath,
			ChunkCount: result.Payload.ChunkCount,
		}
	}

	return &dto.QueryResponse{
		Query:   query,
		Results: items,
	}, nil
}
