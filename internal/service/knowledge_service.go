package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/chunker"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/extractor"
	"rag-chatbot-be/pkg/vectorindex"
)

type IKnowledgeService interface {
	// Ingest runs the document pipeline: extract, chunk, embed, index. An
	// empty document succeeds with a zero chunk count.
	Ingest(ctx context.Context, chatbotId uuid.UUID, fileName string, data []byte) (*dto.UploadKnowledgeResponse, error)
}

type knowledgeService struct {
	chatbotService    IChatBotService
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	publisherService  IPublisherService
	timeouts          StageTimeouts
	logger            logger.ILogger
}

func NewKnowledgeService(
	chatbotService IChatBotService,
	embeddingProvider embedding.Provider,
	index vectorindex.Index,
	publisherService IPublisherService,
	timeouts StageTimeouts,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		chatbotService:    chatbotService,
		embeddingProvider: embeddingProvider,
		index:             index,
		publisherService:  publisherService,
		timeouts:          timeouts,
		logger:            log,
	}
}

func (s *knowledgeService) Ingest(ctx context.Context, chatbotId uuid.UUID, fileName string, data []byte) (*dto.UploadKnowledgeResponse, error) {
	if _, err := s.chatbotService.VerifyActive(ctx, chatbotId); err != nil {
		return nil, err
	}

	text, err := extractor.Extract(fileName, data)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Chunk(text, constant.ChunkWindowSize, constant.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	response := &dto.UploadKnowledgeResponse{
		ChatbotId:  chatbotId,
		FilePath:   fileName,
		ChunkCount: len(chunks),
	}

	if len(chunks) == 0 {
		s.logger.Info("knowledge", "document produced no chunks", map[string]interface{}{
			"chatbot_id": chatbotId.String(),
			"file_path":  fileName,
		})
		s.publishIngested(ctx, response)
		return response, nil
	}

	providerCtx, cancelEmbed := stageContext(ctx, s.timeouts.Provider)
	vectors, err := s.embeddingProvider.EmbedBatch(providerCtx, chunks)
	cancelEmbed()
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, apperr.Newf(apperr.KindProvider,
			"embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	indexCtx, cancelIndex := stageContext(ctx, s.timeouts.Index)
	defer cancelIndex()

	collection := vectorindex.CollectionName(chatbotId.String())
	if err := s.index.EnsureCollection(indexCtx, collection, s.embeddingProvider.Dimension()); err != nil {
		return nil, err
	}

	items := make([]vectorindex.Item, len(chunks))
	for i, chunk := range chunks {
		items[i] = vectorindex.Item{
			ID:     uuid.New().String(),
			Vector: vectors[i],
			Payload: vectorindex.Payload{
				Text:       chunk,
				ChunkIndex: i,
				FilePath:   fileName,
				ChunkCount: len(chunks),
			},
		}
	}

	report, err := s.index.Upsert(indexCtx, collection, items)
	if err != nil {
		return nil, err
	}
	if len(report.FailedIDs) > 0 {
		return nil, apperr.Newf(apperr.KindIndex,
			"indexed %d of %d chunks", report.Inserted, len(items))
	}

	s.logger.Info("knowledge", "document ingested", map[string]interface{}{
		"chatbot_id":  chatbotId.String(),
		"file_path":   fileName,
		"chunk_count": len(chunks),
	})

	s.publishIngested(ctx, response)
	return response, nil
}

// publishIngested is best-effort: the document is already indexed, a lost
// stats event must not fail the upload.
func (s *knowledgeService) publishIngested(ctx context.Context, res *dto.UploadKnowledgeResponse) {
	event := dto.KnowledgeIngestedEvent{
		ChatbotId:  res.ChatbotId,
		FilePath:   res.FilePath,
		ChunkCount: res.ChunkCount,
		IngestedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("knowledge", "failed to encode ingested event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("knowledge", "failed to publish ingested event", map[string]interface{}{
			"chatbot_id": res.ChatbotId.String(),
			"error":      err.Error(),
		})
	}
}
